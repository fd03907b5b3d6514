package main

import (
	"fmt"
	"os"

	"github.com/hwpx-go/hwpxfill/pkg/hwpxfill"
	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	logLevel    string
	imagePrefix string

	// Version is injected during build
	Version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hwpxfill",
	Short: "hwpxfill fills named slots in HWPX document containers",
	Long: `hwpxfill discovers press-field slots in an HWPX template, injects
submitted text and image values, and writes a new container in which
every untouched part stays byte-identical to the source.

Configuration can also be provided via HWPXFILL_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config := hwpxfill.ConfigFromEnvironment()
		if logLevel != "" {
			config.LogLevel = logLevel
		}
		if imagePrefix != "" {
			config.ImagePrefix = imagePrefix
		}
		hwpxfill.SetGlobalConfig(config)
	},
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&imagePrefix, "image-prefix", "", "Slot-name prefix marking image slots (default IMG_)")
}
