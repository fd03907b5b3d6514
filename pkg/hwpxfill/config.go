package hwpxfill

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// Config contains all configuration options for the slot-fill engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error)
	LogLevel string
	// ContentRoot is the container area whose XML parts are scanned and filled
	ContentRoot string
	// BinaryRoot is the container area holding binary assets (images)
	BinaryRoot string
	// ImagePrefix marks a slot name as an image slot
	ImagePrefix string
	// PlaceholderType is the marker type tag targeted by the strip pass
	PlaceholderType string
	// StripPlaceholders removes placeholder marker pairs after injection
	StripPlaceholders bool
	// AllowedMediaTypes is the allow-list for submitted image payloads
	AllowedMediaTypes []string
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	// Initialize global config from environment on first use
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		ContentRoot:       "Contents/",
		BinaryRoot:        "BinData/",
		ImagePrefix:       "IMG_",
		PlaceholderType:   "CLICK_HERE",
		StripPlaceholders: false,
		AllowedMediaTypes: []string{"image/png", "image/jpeg", "image/bmp"},
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// HWPXFILL_LOG_LEVEL
	if val := os.Getenv("HWPXFILL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// HWPXFILL_CONTENT_ROOT
	if val := os.Getenv("HWPXFILL_CONTENT_ROOT"); val != "" {
		config.ContentRoot = val
	}

	// HWPXFILL_IMAGE_PREFIX
	if val := os.Getenv("HWPXFILL_IMAGE_PREFIX"); val != "" {
		config.ImagePrefix = val
	}

	// HWPXFILL_PLACEHOLDER_TYPE
	if val := os.Getenv("HWPXFILL_PLACEHOLDER_TYPE"); val != "" {
		config.PlaceholderType = val
	}

	// HWPXFILL_STRIP_PLACEHOLDERS
	if val := os.Getenv("HWPXFILL_STRIP_PLACEHOLDERS"); val != "" {
		config.StripPlaceholders = parseBool(val)
	}

	return config
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	// Create a copy of the overrides
	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.ContentRoot == "" {
		config.ContentRoot = defaults.ContentRoot
	}

	if config.BinaryRoot == "" {
		config.BinaryRoot = defaults.BinaryRoot
	}

	if config.ImagePrefix == "" {
		config.ImagePrefix = defaults.ImagePrefix
	}

	if config.PlaceholderType == "" {
		config.PlaceholderType = defaults.PlaceholderType
	}

	if len(config.AllowedMediaTypes) == 0 {
		config.AllowedMediaTypes = defaults.AllowedMediaTypes
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.ContentRoot == "" {
		return errors.New("content root cannot be empty")
	}

	if c.BinaryRoot == "" {
		return errors.New("binary root cannot be empty")
	}

	if c.ImagePrefix == "" {
		return errors.New("image prefix cannot be empty")
	}

	if len(c.AllowedMediaTypes) == 0 {
		return errors.New("allowed media types cannot be empty")
	}

	return nil
}

// isContentPart reports whether a part is an XML part in the content area
func (c *Config) isContentPart(name string) bool {
	return strings.HasPrefix(name, c.ContentRoot) && strings.HasSuffix(strings.ToLower(name), ".xml")
}

// isBinaryAsset reports whether a part lives in the binary-asset area
func (c *Config) isBinaryAsset(name string) bool {
	return strings.HasPrefix(name, c.BinaryRoot)
}

// isImageSlot reports whether a slot name designates an image slot
func (c *Config) isImageSlot(name string) bool {
	return strings.HasPrefix(name, c.ImagePrefix)
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
