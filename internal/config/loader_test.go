package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Settings.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}
	return path
}

func TestLoadFromINIDefaults(t *testing.T) {
	path := writeSettings(t, "[UserSettings]\n")

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI failed: %v", err)
	}

	def := NewDefaultConfig()
	if cfg.DataFile != "data.txt" || cfg.CycleInterval != 7*time.Hour || cfg.AccountDelay != time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SpinDelayMin != def.SpinDelayMin || cfg.SpinDelayMax != def.SpinDelayMax {
		t.Errorf("spin delay = [%v, %v], want [%v, %v]", cfg.SpinDelayMin, cfg.SpinDelayMax, def.SpinDelayMin, def.SpinDelayMax)
	}
	if cfg.RequirementDelayMin != 2*time.Second || cfg.RequirementDelayMax != 5*time.Second {
		t.Errorf("requirement delay = [%v, %v]", cfg.RequirementDelayMin, cfg.RequirementDelayMax)
	}
	if !cfg.PromptOnStart {
		t.Error("expected prompts on by default")
	}
	if cfg.MaxRegenerations != 20 || cfg.MaxUpgrades != 10 {
		t.Errorf("limits = %d/%d, want 20/10", cfg.MaxRegenerations, cfg.MaxUpgrades)
	}
	if cfg.AdWatchTime != 15*time.Second {
		t.Errorf("AdWatchTime = %v, want 15s", cfg.AdWatchTime)
	}
}

func TestLoadFromINIOverrides(t *testing.T) {
	path := writeSettings(t, `[UserSettings]
dataFile = accounts.txt
completeTasks = true
upgradeSpinner = true
promptOnStart = false
cycleInterval = 30m
accountDelay = 2s
spinDelayMin = 100
spinDelayMax = 200
adWatchTime = 20s
maxRegenerations = 0
requestTimeout = 15s
timeZone = Asia/Ho_Chi_Minh
logLevel = debug
`)

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI failed: %v", err)
	}

	if cfg.DataFile != "accounts.txt" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if !cfg.CompleteTasks || !cfg.UpgradeSpinner || cfg.PromptOnStart {
		t.Errorf("feature flags not applied: %+v", cfg)
	}
	if cfg.CycleInterval != 30*time.Minute || cfg.AccountDelay != 2*time.Second {
		t.Errorf("scheduling = %v/%v", cfg.CycleInterval, cfg.AccountDelay)
	}
	if cfg.SpinDelayMin != 100*time.Millisecond || cfg.SpinDelayMax != 200*time.Millisecond {
		t.Errorf("spin delay = [%v, %v]", cfg.SpinDelayMin, cfg.SpinDelayMax)
	}
	if cfg.MaxRegenerations != 0 {
		t.Errorf("MaxRegenerations = %d, want 0", cfg.MaxRegenerations)
	}
	if cfg.AdWatchTime != 20*time.Second {
		t.Errorf("AdWatchTime = %v, want 20s", cfg.AdWatchTime)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Ho_Chi_Minh" {
		t.Errorf("Location = %v, %v", loc, err)
	}
}

func TestLoadFromINIRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad duration", "[UserSettings]\ncycleInterval = seven hours\n", "cycleInterval"},
		{"inverted range", "[UserSettings]\nspinDelayMin = 5000\nspinDelayMax = 1000\n", "spinDelay"},
		{"unknown zone", "[UserSettings]\ntimeZone = Mars/Olympus\n", "timeZone"},
		{"negative limit", "[UserSettings]\nmaxUpgrades = -1\n", "limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromINI(writeSettings(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromINIMissingFile(t *testing.T) {
	if _, err := LoadFromINI(filepath.Join(t.TempDir(), "missing.ini")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSaveToINIWritesLoadableSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.ini")

	cfg := NewDefaultConfig()
	cfg.CompleteTasks = true
	cfg.CycleInterval = 90 * time.Minute
	cfg.TaskDelayMax = 9 * time.Second

	if err := SaveToINI(cfg, path); err != nil {
		t.Fatalf("SaveToINI failed: %v", err)
	}

	loaded, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI failed: %v", err)
	}
	if !loaded.CompleteTasks || loaded.CycleInterval != 90*time.Minute || loaded.TaskDelayMax != 9*time.Second {
		t.Errorf("saved settings not read back: %+v", loaded)
	}
}
