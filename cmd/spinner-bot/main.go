package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/bot"
	"jordanella.com/spinner-go/internal/config"
	"jordanella.com/spinner-go/internal/coordinator"
	"jordanella.com/spinner-go/internal/events"
	"jordanella.com/spinner-go/internal/logging"
	"jordanella.com/spinner-go/internal/pacing"
	"jordanella.com/spinner-go/internal/timboo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; it only provides defaults for the flags below
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	settingsPath := flag.String("settings", envOr("SPINNER_SETTINGS", "Settings.ini"), "Path to the settings file")
	dataPath := flag.String("data", os.Getenv("SPINNER_DATA"), "Credential file, one per line (overrides dataFile)")
	profilePath := flag.String("profile", os.Getenv("SPINNER_PROFILE"), "API profile YAML (overrides profileFile)")
	cycles := flag.Int("cycles", 0, "Stop after this many cycles (0 runs forever)")
	debugHTTP := flag.Bool("debug-http", false, "Dump HTTP requests and responses")
	flag.Parse()

	cfg, created, err := loadSettings(*settingsPath)
	if err != nil {
		return err
	}
	if *dataPath != "" {
		cfg.DataFile = *dataPath
	}
	if *profilePath != "" {
		cfg.ProfileFile = *profilePath
	}

	logger, err := newConsoleLogger(cfg)
	if err != nil {
		return err
	}
	if created {
		logger.Info(fmt.Sprintf("Wrote default settings to %s", *settingsPath))
	}

	profile, err := config.LoadProfile(cfg.ProfileFile)
	if err != nil {
		return err
	}

	loaded, err := accounts.LoadFile(cfg.DataFile)
	if loaded != nil {
		for _, msg := range loaded.Errors {
			logger.Warn(fmt.Sprintf("Skipping %s", msg))
		}
	}
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Loaded %d accounts from %s", len(loaded.Accounts), cfg.DataFile))

	if cfg.PromptOnStart {
		if err := config.ApplyPrompts(cfg, config.NewPrompter(os.Stdin, os.Stdout)); err != nil {
			return err
		}
	}

	botConfig, err := bot.ConfigFrom(cfg)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(256)
	var eventLog *logging.EventLogger
	if cfg.LogDir != "" {
		eventLog, err = logging.NewEventLogger(bus, cfg.LogDir)
		if err != nil {
			bus.Stop()
			return err
		}
		logger.Info(fmt.Sprintf("Event log: %s", eventLog.Path()))
	}
	defer func() {
		// drain queued events before the file goes away
		bus.Stop()
		if eventLog != nil {
			eventLog.Close()
		}
	}()

	client := timboo.New(profile,
		timboo.WithTimeout(cfg.RequestTimeout),
		timboo.WithLogger(logger.Child("http")),
		timboo.WithDebug(*debugHTTP),
	)

	failures := logging.NewErrorReporter(0)
	defer failures.LogSummary(logger)

	b := bot.New(client, botConfig,
		bot.WithLogger(logger.Child("bot")),
		bot.WithEvents(bus),
		bot.WithErrorReporter(failures),
		bot.WithPacers(
			pacing.NewJitter(cfg.SpinDelayMin, cfg.SpinDelayMax),
			pacing.NewJitter(cfg.TaskDelayMin, cfg.TaskDelayMax),
			pacing.NewJitter(cfg.RequirementDelayMin, cfg.RequirementDelayMax),
		),
	)

	coord := coordinator.NewBotCoordinator(b, loaded.Accounts,
		coordinator.WithLogger(logger.Child("coordinator")),
		coordinator.WithEvents(bus),
		coordinator.WithDelays(cfg.AccountDelay, cfg.CycleInterval),
		coordinator.WithMaxCycles(*cycles),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = coord.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Warn("Interrupted, stopping")
		return nil
	}
	return err
}

// loadSettings reads the settings file, writing one with defaults when it does not exist
func loadSettings(path string) (*config.Config, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := config.NewDefaultConfig()
		if err := config.SaveToINI(cfg, path); err != nil {
			return nil, false, err
		}
		return cfg, true, nil
	}

	cfg, err := config.LoadFromINI(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

func newConsoleLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("spinner-bot").SetMinLevel(level)
	if !cfg.NoColor {
		logger.SetFormatter(&logging.ColorFormatter{})
	}
	return logger, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
