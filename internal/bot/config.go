package bot

import (
	"time"

	"jordanella.com/spinner-go/internal/config"
)

// Config is the per-account workflow configuration
type Config struct {
	// Features
	CompleteTasks  bool
	UpgradeSpinner bool

	// Boxes may be reopened BoxInterval after their recorded open time
	BoxInterval time.Duration

	// How long an ad view runs before it is completed
	AdWatchTime time.Duration

	// Limits, 0 means unbounded
	MaxRegenerations int
	MaxUpgrades      int

	// Zone used when printing next-claim and repair times
	Location *time.Location
}

// ConfigFrom derives the workflow config from the loaded settings
func ConfigFrom(settings *config.Config) (*Config, error) {
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CompleteTasks:    settings.CompleteTasks,
		UpgradeSpinner:   settings.UpgradeSpinner,
		BoxInterval:      settings.BoxInterval,
		AdWatchTime:      settings.AdWatchTime,
		MaxRegenerations: settings.MaxRegenerations,
		MaxUpgrades:      settings.MaxUpgrades,
		Location:         loc,
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.BoxInterval <= 0 {
		c.BoxInterval = 7 * time.Hour
	}
	if c.AdWatchTime <= 0 {
		c.AdWatchTime = 15 * time.Second
	}
	if c.Location == nil {
		c.Location = time.Local
	}
}
