package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

const sectionName = "UserSettings"

// LoadFromINI loads configuration from a Settings.ini file. Missing keys keep their defaults.
func LoadFromINI(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section(sectionName)
	def := NewDefaultConfig()

	config := &Config{}

	// Files
	config.DataFile = section.Key("dataFile").MustString(def.DataFile)
	config.ProfileFile = section.Key("profileFile").MustString(def.ProfileFile)
	config.LogDir = section.Key("logDir").MustString(def.LogDir)

	// Features
	config.CompleteTasks = section.Key("completeTasks").MustBool(def.CompleteTasks)
	config.UpgradeSpinner = section.Key("upgradeSpinner").MustBool(def.UpgradeSpinner)
	config.PromptOnStart = section.Key("promptOnStart").MustBool(def.PromptOnStart)

	// Scheduling
	if config.CycleInterval, err = durationKey(section, "cycleInterval", def.CycleInterval); err != nil {
		return nil, err
	}
	if config.AccountDelay, err = durationKey(section, "accountDelay", def.AccountDelay); err != nil {
		return nil, err
	}
	if config.BoxInterval, err = durationKey(section, "boxInterval", def.BoxInterval); err != nil {
		return nil, err
	}

	// Pacing
	config.SpinDelayMin = millisKey(section, "spinDelayMin", def.SpinDelayMin)
	config.SpinDelayMax = millisKey(section, "spinDelayMax", def.SpinDelayMax)
	config.TaskDelayMin = millisKey(section, "taskDelayMin", def.TaskDelayMin)
	config.TaskDelayMax = millisKey(section, "taskDelayMax", def.TaskDelayMax)
	config.RequirementDelayMin = millisKey(section, "requirementDelayMin", def.RequirementDelayMin)
	config.RequirementDelayMax = millisKey(section, "requirementDelayMax", def.RequirementDelayMax)
	if config.AdWatchTime, err = durationKey(section, "adWatchTime", def.AdWatchTime); err != nil {
		return nil, err
	}

	// Limits
	config.MaxRegenerations = section.Key("maxRegenerations").MustInt(def.MaxRegenerations)
	config.MaxUpgrades = section.Key("maxUpgrades").MustInt(def.MaxUpgrades)

	// HTTP
	if config.RequestTimeout, err = durationKey(section, "requestTimeout", def.RequestTimeout); err != nil {
		return nil, err
	}

	// Display
	config.TimeZone = section.Key("timeZone").MustString(def.TimeZone)
	config.LogLevel = section.Key("logLevel").MustString(def.LogLevel)
	config.NoColor = section.Key("noColor").MustBool(def.NoColor)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return config, nil
}

// durationKey reads a Go duration string such as "7h" or "1s"
func durationKey(section *ini.Section, name string, def time.Duration) (time.Duration, error) {
	if !section.HasKey(name) {
		return def, nil
	}
	raw := section.Key(name).String()
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return d, nil
}

// millisKey reads an integer number of milliseconds
func millisKey(section *ini.Section, name string, def time.Duration) time.Duration {
	ms := section.Key(name).MustInt(int(def / time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// SaveToINI saves configuration to an INI file
func SaveToINI(config *Config, path string) error {
	cfg := ini.Empty()
	section := cfg.Section(sectionName)

	// Files
	section.Key("dataFile").SetValue(config.DataFile)
	section.Key("profileFile").SetValue(config.ProfileFile)
	section.Key("logDir").SetValue(config.LogDir)

	// Features
	section.Key("completeTasks").SetValue(strconv.FormatBool(config.CompleteTasks))
	section.Key("upgradeSpinner").SetValue(strconv.FormatBool(config.UpgradeSpinner))
	section.Key("promptOnStart").SetValue(strconv.FormatBool(config.PromptOnStart))

	// Scheduling
	section.Key("cycleInterval").SetValue(config.CycleInterval.String())
	section.Key("accountDelay").SetValue(config.AccountDelay.String())
	section.Key("boxInterval").SetValue(config.BoxInterval.String())

	// Pacing
	section.Key("spinDelayMin").SetValue(millis(config.SpinDelayMin))
	section.Key("spinDelayMax").SetValue(millis(config.SpinDelayMax))
	section.Key("taskDelayMin").SetValue(millis(config.TaskDelayMin))
	section.Key("taskDelayMax").SetValue(millis(config.TaskDelayMax))
	section.Key("requirementDelayMin").SetValue(millis(config.RequirementDelayMin))
	section.Key("requirementDelayMax").SetValue(millis(config.RequirementDelayMax))
	section.Key("adWatchTime").SetValue(config.AdWatchTime.String())

	// Limits
	section.Key("maxRegenerations").SetValue(strconv.Itoa(config.MaxRegenerations))
	section.Key("maxUpgrades").SetValue(strconv.Itoa(config.MaxUpgrades))

	// HTTP
	section.Key("requestTimeout").SetValue(config.RequestTimeout.String())

	// Display
	section.Key("timeZone").SetValue(config.TimeZone)
	section.Key("logLevel").SetValue(config.LogLevel)
	section.Key("noColor").SetValue(strconv.FormatBool(config.NoColor))

	return cfg.SaveTo(path)
}

func millis(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Millisecond), 10)
}
