package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/hwpx-go/hwpxfill/pkg/hwpxfill"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fillFlags holds all flags for the fill command.
type fillFlags struct {
	output     string
	sets       []string
	images     []string
	valuesPath string
	strip      bool
}

var fillFlagVals fillFlags

var fillCmd = &cobra.Command{
	Use:   "fill <template.hwpx>",
	Short: "Fill a template's slots and write the output container",
	Example: `  # Inline text values
  hwpxfill fill form.hwpx -o out.hwpx --set NAME=Alice --set DATE=2024-06-01

  # Replace an image slot from a file
  hwpxfill fill form.hwpx -o out.hwpx --image IMG_PHOTO=photo.png

  # Values from a YAML file, stripping markers afterwards
  hwpxfill fill form.hwpx -o out.hwpx --values values.yaml --strip`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	f := &fillFlagVals

	fillCmd.Flags().StringVarP(&f.output, "output", "o", "", "Output container path [required]")
	fillCmd.Flags().StringArrayVar(&f.sets, "set", nil, "Text value as NAME=value (repeatable)")
	fillCmd.Flags().StringArrayVar(&f.images, "image", nil, "Image payload as NAME=file (repeatable)")
	fillCmd.Flags().StringVar(&f.valuesPath, "values", "", "YAML file mapping slot names to values")
	fillCmd.Flags().BoolVar(&f.strip, "strip", false, "Remove placeholder markers after injection")

	_ = fillCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	f := &fillFlagVals

	values := make(hwpxfill.SlotValues)
	if f.valuesPath != "" {
		fromFile, err := loadValuesFile(f.valuesPath)
		if err != nil {
			return err
		}
		for name, val := range fromFile {
			values[name] = val
		}
	}
	for _, pair := range f.sets {
		name, text, err := splitPair(pair, "--set")
		if err != nil {
			return err
		}
		values[name] = hwpxfill.Text(text)
	}
	for _, pair := range f.images {
		name, path, err := splitPair(pair, "--image")
		if err != nil {
			return err
		}
		val, err := imageValueFromFile(path)
		if err != nil {
			return fmt.Errorf("reading image for %s: %w", name, err)
		}
		values[name] = val
	}

	config := hwpxfill.GetGlobalConfig()
	config.StripPlaceholders = f.strip || config.StripPlaceholders
	tmpl, err := hwpxfill.NewWithConfig(config).PrepareFile(args[0])
	if err != nil {
		return err
	}
	defer tmpl.Close()

	out, report, err := tmpl.FillWithReport(values)
	if err != nil {
		return err
	}

	dst, err := os.Create(f.output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if _, err := io.Copy(dst, out); err != nil {
		dst.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

// valuesEntry is one entry of the --values YAML file: either a plain
// string for a text slot, or a mapping with media-type and file for an
// image slot.
type valuesEntry struct {
	text      string
	mediaType string
	file      string
}

func (v *valuesEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&v.text)
	}
	var img struct {
		MediaType string `yaml:"media-type"`
		File      string `yaml:"file"`
	}
	if err := node.Decode(&img); err != nil {
		return err
	}
	if img.File == "" {
		return fmt.Errorf("line %d: image entry needs a file", node.Line)
	}
	v.mediaType = img.MediaType
	v.file = img.File
	return nil
}

func loadValuesFile(path string) (hwpxfill.SlotValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading values file: %w", err)
	}

	var entries map[string]valuesEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing values file: %w", err)
	}

	values := make(hwpxfill.SlotValues, len(entries))
	for name, entry := range entries {
		if entry.file == "" {
			values[name] = hwpxfill.Text(entry.text)
			continue
		}
		payload, err := os.ReadFile(entry.file)
		if err != nil {
			return nil, fmt.Errorf("reading image for %s: %w", name, err)
		}
		mediaType := entry.mediaType
		if mediaType == "" {
			mediaType = mediaTypeForFile(entry.file)
		}
		values[name] = hwpxfill.Image(mediaType, payload)
	}
	return values, nil
}

func imageValueFromFile(path string) (hwpxfill.Value, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return hwpxfill.Value{}, err
	}
	return hwpxfill.Image(mediaTypeForFile(path), payload), nil
}

// mediaTypeForFile guesses a media type from the file extension
func mediaTypeForFile(path string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
}

func splitPair(pair, flag string) (string, string, error) {
	name, value, ok := strings.Cut(pair, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("%s expects NAME=value, got %q", flag, pair)
	}
	return name, value, nil
}

func printReport(w io.Writer, report *hwpxfill.Report) {
	for _, part := range report.Changed {
		fmt.Fprintf(w, "rewrote %s\n", part)
	}
	for slot, asset := range report.Replaced {
		fmt.Fprintf(w, "replaced %s -> %s\n", slot, asset)
	}
	for _, err := range report.Unresolved {
		fmt.Fprintf(w, "unresolved: %v\n", err)
	}
	for _, err := range report.Rejected {
		fmt.Fprintf(w, "rejected: %v\n", err)
	}
	for part, err := range report.PartErrors {
		fmt.Fprintf(w, "left unchanged %s: %v\n", part, err)
	}
}
