package config

import (
	"fmt"
	"time"
)

// Config holds the bot settings read from Settings.ini
type Config struct {
	// Files
	DataFile    string // one credential blob per line
	ProfileFile string // API profile YAML; empty uses the built-in profile
	LogDir      string // event log directory; empty disables the event log

	// Features
	CompleteTasks  bool
	UpgradeSpinner bool
	PromptOnStart  bool // ask the two yes/no questions instead of using the values above

	// Scheduling
	CycleInterval time.Duration // wait after a full pass over all accounts
	AccountDelay  time.Duration // wait between accounts
	BoxInterval   time.Duration // a box may be reopened this long after its open_time

	// Pacing (milliseconds in the ini file)
	SpinDelayMin        time.Duration
	SpinDelayMax        time.Duration
	TaskDelayMin        time.Duration
	TaskDelayMax        time.Duration
	RequirementDelayMin time.Duration
	RequirementDelayMax time.Duration
	AdWatchTime         time.Duration // wait between starting and completing an ad view

	// Limits
	MaxRegenerations int // 0 means unbounded
	MaxUpgrades      int // 0 means unbounded

	// HTTP
	RequestTimeout time.Duration // 0 leaves the transport default

	// Display
	TimeZone string // IANA zone for next-claim and repair times; empty is local time
	LogLevel string
	NoColor  bool
}

// NewDefaultConfig creates a config with default values
func NewDefaultConfig() *Config {
	return &Config{
		DataFile:            "data.txt",
		LogDir:              "logs",
		PromptOnStart:       true,
		CycleInterval:       7 * time.Hour,
		AccountDelay:        time.Second,
		BoxInterval:         7 * time.Hour,
		SpinDelayMin:        3000 * time.Millisecond,
		SpinDelayMax:        7000 * time.Millisecond,
		TaskDelayMin:        3000 * time.Millisecond,
		TaskDelayMax:        7000 * time.Millisecond,
		RequirementDelayMin: 2000 * time.Millisecond,
		RequirementDelayMax: 5000 * time.Millisecond,
		AdWatchTime:         15 * time.Second,
		MaxRegenerations:    20,
		MaxUpgrades:         10,
		LogLevel:            "INFO",
	}
}

// Validate checks ranges that would otherwise fail deep inside a cycle
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("dataFile must be set")
	}
	pairs := []struct {
		name     string
		min, max time.Duration
	}{
		{"spinDelay", c.SpinDelayMin, c.SpinDelayMax},
		{"taskDelay", c.TaskDelayMin, c.TaskDelayMax},
		{"requirementDelay", c.RequirementDelayMin, c.RequirementDelayMax},
	}
	for _, p := range pairs {
		if p.min < 0 || p.max < p.min {
			return fmt.Errorf("%s: invalid range [%v, %v]", p.name, p.min, p.max)
		}
	}
	if c.CycleInterval < 0 || c.AccountDelay < 0 || c.BoxInterval < 0 || c.RequestTimeout < 0 || c.AdWatchTime < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.MaxRegenerations < 0 || c.MaxUpgrades < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone, falling back to local time when unset
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timeZone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
