package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hwpx-go/hwpxfill/pkg/hwpxfill"
	"github.com/spf13/cobra"
)

// slotMap is the JSON shape of the printed slot directory: one entry per
// slot name, occurrences in document order
type slotMap struct {
	Slots map[string]slotEntry `json:"slots"`
}

type slotEntry struct {
	Kind        string                `json:"kind"`
	Occurrences []hwpxfill.Occurrence `json:"occurrences"`
}

var scanCmd = &cobra.Command{
	Use:   "scan <template.hwpx>",
	Short: "Print the slot directory of a template as JSON",
	Example: `  # List every slot with its occurrences
  hwpxfill scan form.hwpx

  # Save the slot map for later inspection
  hwpxfill scan form.hwpx > slot_map.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	tmpl, err := hwpxfill.New().PrepareFile(args[0])
	if err != nil {
		return err
	}
	defer tmpl.Close()

	dir := tmpl.Slots()
	out := slotMap{Slots: make(map[string]slotEntry, dir.Len())}
	for _, name := range dir.Names() {
		out.Slots[name] = slotEntry{
			Kind:        dir.Kind(name).String(),
			Occurrences: dir.Occurrences(name),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding slot map: %w", err)
	}
	return nil
}
