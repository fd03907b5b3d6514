// Package hwpxfill fills named slots in HWPX document containers.
// A slot is a press-field placeholder delimited by paired begin/end
// markers inside the container's XML parts; the engine discovers every
// slot, injects submitted text into the marker-delimited range, swaps the
// binary image assets behind image slots, and rewrites the container with
// a minimal diff: any part not actually changed stays byte-identical.
//
// Basic Usage:
//
//	// Prepare a template from a file
//	tmpl, err := hwpxfill.PrepareFile("template.hwpx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tmpl.Close()
//
//	// Fill with values
//	photo, _ := os.ReadFile("photo.png")
//	values := hwpxfill.SlotValues{
//	    "NAME":      hwpxfill.Text("Alice"),
//	    "IMG_PHOTO": hwpxfill.Image("image/png", photo),
//	}
//
//	output, err := tmpl.Fill(values)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save the result
//	result, err := os.Create("final.hwpx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer result.Close()
//
//	_, err = io.Copy(result, output)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Slot names with the configured image prefix (default "IMG_") are image
// slots; everything else is a text slot. Names unknown to the template
// are ignored and unfilled slots are left exactly as found.
package hwpxfill

import (
	"fmt"
	"io"
	"os"
)

// Engine provides the main API for working with templates.
// Use New() to create a new engine instance.
type Engine struct {
	config *Config
}

// New creates a new engine with the global configuration.
func New() *Engine {
	return &Engine{
		config: GetGlobalConfig(),
	}
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	return &Engine{
		config: NewConfigWithDefaults(config),
	}
}

// PrepareFile loads a template container from a file path and builds its
// slot directory.
func (e *Engine) PrepareFile(path string) (*PreparedTemplate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewContainerError("open", path, err)
	}
	defer file.Close()

	return e.Prepare(file)
}

// Prepare loads a template container from an io.Reader and builds its
// slot directory.
func (e *Engine) Prepare(r io.Reader) (*PreparedTemplate, error) {
	return prepare(r, e.config)
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
	}
}

// WithImagePrefix returns an option that sets the slot-name prefix
// marking image slots.
func WithImagePrefix(prefix string) Option {
	return func(e *Engine) {
		e.config.ImagePrefix = prefix
	}
}

// WithStripPlaceholders returns an option that enables or disables the
// post-injection marker strip pass.
func WithStripPlaceholders(strip bool) Option {
	return func(e *Engine) {
		e.config.StripPlaceholders = strip
	}
}

// WithContentRoot returns an option that sets the container area whose
// XML parts are scanned and filled.
func WithContentRoot(root string) Option {
	return func(e *Engine) {
		e.config.ContentRoot = root
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) (*Engine, error) {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	return engine, nil
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// PrepareFile loads a template container from a file path using the
// default engine.
func PrepareFile(path string) (*PreparedTemplate, error) {
	return DefaultEngine.PrepareFile(path)
}

// Prepare loads a template container from an io.Reader using the default
// engine.
func Prepare(r io.Reader) (*PreparedTemplate, error) {
	return DefaultEngine.Prepare(r)
}
