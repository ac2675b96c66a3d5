package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultMaxSetsPerEntry reproduces the historical descriptor pool
// heuristic: two sets per pool-size entry.
const DefaultMaxSetsPerEntry uint32 = 2

type LogSettings struct {
	Level string `toml:"level"`
}

type DescriptorPoolSettings struct {
	// MaxSetsPerEntry multiplies the number of pool-size entries to get
	// the pool's maxSets. Zero means DefaultMaxSetsPerEntry.
	MaxSetsPerEntry uint32 `toml:"max_sets_per_entry"`
}

// Settings are the process-wide knobs of the pipeline layer.
type Settings struct {
	Log            LogSettings            `toml:"log"`
	DescriptorPool DescriptorPoolSettings `toml:"descriptor_pool"`
}

func DefaultSettings() Settings {
	return Settings{
		Log:            LogSettings{Level: "info"},
		DescriptorPool: DescriptorPoolSettings{MaxSetsPerEntry: DefaultMaxSetsPerEntry},
	}
}

// ParseSettings decodes TOML settings, filling anything left out with
// the defaults.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
	if s.DescriptorPool.MaxSetsPerEntry == 0 {
		s.DescriptorPool.MaxSetsPerEntry = DefaultMaxSetsPerEntry
	}
	return s, nil
}

func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings %s: %w", path, err)
	}
	return ParseSettings(data)
}

// Apply pushes the settings into the shared logger.
func (s Settings) Apply() {
	SetLogLevel(s.Log.Level)
}
