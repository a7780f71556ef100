package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information - set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Terminal window manager - tiled and floating panes in one terminal",
	Long: `Loom hosts multiple shell panes inside a single terminal, tmux style.

Panes tile automatically and can be floated, dragged, snapped to an
edge, minimized, or maximized. A lone Esc held past the double-press
window opens manager mode; Esc Esc sends a literal Esc to the pane.

Quick Start:
  loom                      # start with a single shell pane
  loom run --preset dev     # start from ~/.config/loom/presets/dev.yaml
  loom version              # print build information`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/loom/config.toml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
