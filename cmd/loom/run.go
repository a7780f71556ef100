package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loomterm/loom/internal/config"
	"github.com/loomterm/loom/internal/events"
	"github.com/loomterm/loom/internal/logging"
	"github.com/loomterm/loom/internal/wm"
)

var (
	presetName string
	shellCmd   string
	logLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the window manager",
	Long: `Start the window manager in the current terminal.

Without a preset a single pane runs the configured shell. A preset
names panes, commands, and layout contracts:

  # ~/.config/loom/presets/dev.yaml
  name: dev
  panes:
    - command: nvim
    - command: sh
      args: ["-c", "make watch"]
      floating: true`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&presetName, "preset", "", "layout preset name")
	runCmd.Flags().StringVar(&shellCmd, "command", "", "pane command (overrides config shell)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, or error")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("loom needs a terminal; stdout is not a tty")
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("loom needs a terminal; stdin is not a tty")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if shellCmd != "" {
		cfg.Shell = shellCmd
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logging.Open(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		// The UI works without a log file.
		log = logging.Nop()
	}
	defer log.Close()

	preset, err := resolvePreset(cfg)
	if err != nil {
		return err
	}

	bus := events.NewBus(256)
	m := wm.New(context.Background(), cfg, bus, log)
	defer m.Shutdown()

	if err := m.Bootstrap(preset); err != nil {
		return fmt.Errorf("starting panes: %w", err)
	}

	// Seed the size for terminals that never deliver a resize.
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}

	log.Infof("loom %s starting", version)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// resolvePreset picks the preset by flag, then config, then a single
// shell pane.
func resolvePreset(cfg *config.Config) (*config.Preset, error) {
	name := presetName
	if name == "" {
		name = cfg.Preset
	}
	if name == "" {
		return config.DefaultPreset(cfg.ShellCommand()), nil
	}
	preset, err := config.LoadPreset(config.PresetPath(name))
	if err != nil {
		return nil, fmt.Errorf("loading preset %q: %w", name, err)
	}
	return preset, nil
}
