package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preset describes the panes opened at startup.
type Preset struct {
	Name  string       `yaml:"name"`
	Panes []PresetPane `yaml:"panes"`
}

// PresetPane is one pane in a layout preset.
type PresetPane struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
	Title   string   `yaml:"title"`

	// Contract is "window" (the manager sizes the pane) or "app" (the
	// pane requests its own rectangle). Empty means window.
	Contract string `yaml:"contract"`

	Floating bool `yaml:"floating"`
}

// DefaultPreset returns a single managed shell pane.
func DefaultPreset(shell string) *Preset {
	return &Preset{
		Name:  "default",
		Panes: []PresetPane{{Command: shell}},
	}
}

// PresetPath resolves a preset name to its file under the config dir.
func PresetPath(name string) string {
	return filepath.Join(Dir(), "presets", name+".yaml")
}

// LoadPreset reads and validates a preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	if len(p.Panes) == 0 {
		return nil, fmt.Errorf("preset %s has no panes", path)
	}
	for i, pane := range p.Panes {
		if pane.Command == "" {
			return nil, fmt.Errorf("preset %s: pane %d has no command", path, i)
		}
		switch pane.Contract {
		case "", "window", "app":
		default:
			return nil, fmt.Errorf("preset %s: pane %d has unknown contract %q", path, i, pane.Contract)
		}
	}
	return &p, nil
}
