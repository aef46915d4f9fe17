package bot

import (
	"context"
	"errors"
	"time"

	"jordanella.com/spinner-go/internal/events"
	"jordanella.com/spinner-go/internal/logging"
	"jordanella.com/spinner-go/internal/pacing"
	"jordanella.com/spinner-go/internal/spinner"
	"jordanella.com/spinner-go/internal/timboo"
)

// GameAPI is the slice of timboo.Client the workflow uses
type GameAPI interface {
	Register(ctx context.Context, initData string) (*timboo.RegisterResponse, error)
	Boxes(ctx context.Context, initData string) ([]timboo.Box, error)
	OpenBox(ctx context.Context, initData string, boxID int) (*timboo.OpenBoxResponse, error)
	CheckRequirement(ctx context.Context, initData string, requirementID int) (*timboo.RequirementResponse, error)
	InitData(ctx context.Context, initData string) (*timboo.InitData, error)
	RepairSpinner(ctx context.Context, initData string) (bool, error)
	UpgradeSpinner(ctx context.Context, initData string, spinnerID int) (bool, error)
	UpdateData(ctx context.Context, initData string, clicks int) error
	StartAd(ctx context.Context, initData string) (string, error)
	CompleteAd(ctx context.Context, initData, hash string) (*timboo.AdResponse, error)
}

// Bot runs the per-account workflow: register, spinners (tasks, spins, upgrade), boxes.
// Every step logs and swallows its own failures; only cancellation stops an account early.
type Bot struct {
	api      GameAPI
	config   *Config
	logger   *logging.Logger
	events   events.Publisher
	failures *logging.ErrorReporter

	spinPacer        pacing.Pacer
	taskPacer        pacing.Pacer
	requirementPacer pacing.Pacer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Bot
type Option func(*Bot)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// WithEvents sets where workflow events are published
func WithEvents(p events.Publisher) Option {
	return func(b *Bot) { b.events = p }
}

// WithErrorReporter collects swallowed failures for an end-of-run summary
func WithErrorReporter(r *logging.ErrorReporter) Option {
	return func(b *Bot) { b.failures = r }
}

// WithPacers sets the delays between spins, after tasks and after checked requirements
func WithPacers(spin, task, requirement pacing.Pacer) Option {
	return func(b *Bot) {
		b.spinPacer = spin
		b.taskPacer = task
		b.requirementPacer = requirement
	}
}

// WithClock replaces time.Now for box readiness
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// WithSleep replaces the blocking wait used while an ad view runs
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *Bot) { b.sleep = sleep }
}

// New creates a bot. Without options it logs nowhere, publishes nothing and never waits.
func New(api GameAPI, config *Config, opts ...Option) *Bot {
	config.ApplyDefaults()

	b := &Bot{
		api:              api,
		config:           config,
		logger:           logging.Discard(),
		events:           events.Discard{},
		failures:         logging.NewErrorReporter(0),
		spinPacer:        pacing.None{},
		taskPacer:        pacing.None{},
		requirementPacer: pacing.None{},
		now:              time.Now,
		sleep:            pacing.Sleep,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) runner() *spinner.Runner {
	return spinner.NewRunner(spinnerAPI{b.api},
		spinner.WithPacer(b.spinPacer),
		spinner.WithLogger(b.logger.Child("spinner")),
		spinner.WithMaxRegenerations(b.config.MaxRegenerations),
	)
}

// publishError reports a swallowed failure on the event bus and to the error reporter
func (b *Bot) publishError(account, step string, err error) {
	category := errorCategory(err)
	b.failures.Report(category, account, step, err)
	b.events.Publish(events.NewErrorEvent(account, "bot", err, map[string]interface{}{
		"step":     step,
		"category": string(category),
	}))
}

func errorCategory(err error) logging.ErrorCategory {
	var se *timboo.StatusError
	switch {
	case errors.As(err, &se) && se.Rejected():
		return logging.ErrorCategoryRejected
	case errors.As(err, &se):
		return logging.ErrorCategoryServer
	case errors.Is(err, timboo.ErrUnexpectedResponse):
		return logging.ErrorCategoryResponse
	default:
		return logging.ErrorCategoryNetwork
	}
}
