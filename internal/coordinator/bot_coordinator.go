// Package coordinator runs the account workflow for every account, forever.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/bot"
	"jordanella.com/spinner-go/internal/events"
	"jordanella.com/spinner-go/internal/logging"
	"jordanella.com/spinner-go/internal/pacing"
)

// AccountRunner processes a single account; *bot.Bot implements it
type AccountRunner interface {
	RunAccount(ctx context.Context, account accounts.Account) (*bot.Report, error)
}

// BotCoordinator walks the account list strictly in order, one account at a time,
// and waits CycleInterval between full passes
type BotCoordinator struct {
	runner         AccountRunner
	accountManager *AccountManager
	logger         *logging.Logger
	events         events.Publisher

	accountDelay  time.Duration
	cycleInterval time.Duration
	maxCycles     int // 0 runs until cancelled

	runID string
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a BotCoordinator
type Option func(*BotCoordinator)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *BotCoordinator) { c.logger = l }
}

// WithEvents sets the event publisher
func WithEvents(p events.Publisher) Option {
	return func(c *BotCoordinator) { c.events = p }
}

// WithDelays sets the gap after each account and the wait after each cycle
func WithDelays(accountDelay, cycleInterval time.Duration) Option {
	return func(c *BotCoordinator) {
		c.accountDelay = accountDelay
		c.cycleInterval = cycleInterval
	}
}

// WithMaxCycles stops Run after n cycles
func WithMaxCycles(n int) Option {
	return func(c *BotCoordinator) { c.maxCycles = n }
}

// WithSleep replaces the blocking wait, mostly for tests
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *BotCoordinator) { c.sleep = sleep }
}

// NewBotCoordinator creates a coordinator over a fixed account list
func NewBotCoordinator(runner AccountRunner, list []accounts.Account, opts ...Option) *BotCoordinator {
	c := &BotCoordinator{
		runner:         runner,
		accountManager: NewAccountManager(list),
		logger:         logging.Discard(),
		events:         events.Discard{},
		accountDelay:   time.Second,
		cycleInterval:  7 * time.Hour,
		runID:          uuid.NewString(),
		now:            time.Now,
		sleep:          pacing.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunID identifies this process run in events
func (c *BotCoordinator) RunID() string {
	return c.runID
}

// Accounts exposes the per-account totals
func (c *BotCoordinator) Accounts() *AccountManager {
	return c.accountManager
}

// Run processes cycles until ctx is cancelled or the cycle limit is reached.
// It returns ctx.Err() on cancellation and nil when the limit is reached.
func (c *BotCoordinator) Run(ctx context.Context) error {
	c.logger.InfoWithContext("Starting", map[string]interface{}{
		"run_id":   c.runID,
		"accounts": c.accountManager.Count(),
	})

	for cycle := 1; ; cycle++ {
		if err := c.RunCycle(ctx, cycle); err != nil {
			return err
		}

		if c.maxCycles > 0 && cycle >= c.maxCycles {
			return nil
		}

		next := c.now().Add(c.cycleInterval)
		c.logger.Custom(fmt.Sprintf("Waiting %s, next cycle at %s", c.cycleInterval, next.Format("15:04:05")))
		if err := c.sleep(ctx, c.cycleInterval); err != nil {
			return err
		}
	}
}

// RunCycle processes every account once
func (c *BotCoordinator) RunCycle(ctx context.Context, cycle int) error {
	started := c.now()
	list := c.accountManager.Accounts()

	c.events.Publish(events.NewCycleStartedEvent(c.runID, cycle, len(list)))

	var submitted, opened, failures int
	for i, account := range list {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.logger.Info(fmt.Sprintf("========== Account %d | %s ==========", i+1, account.DisplayName()))
		c.events.Publish(events.NewAccountStartedEvent(c.runID, account.Index, account.DisplayName()))

		report, err := c.runner.RunAccount(ctx, account)
		c.accountManager.Record(account, report, c.now())
		if report != nil {
			submitted += report.Submitted()
			opened += report.BoxesOpened
			failures += report.Errors
		}

		c.events.Publish(events.NewAccountCompletedEvent(c.runID, account.Index, account.DisplayName()))
		if err != nil {
			return err
		}

		if err := c.sleep(ctx, c.accountDelay); err != nil {
			return err
		}
	}

	elapsed := c.now().Sub(started)
	c.events.Publish(events.NewCycleCompletedEvent(c.runID, cycle, elapsed, c.now().Add(c.cycleInterval)))
	c.logger.SuccessWithContext(fmt.Sprintf("Cycle %d done in %s", cycle, elapsed.Round(time.Second)), map[string]interface{}{
		"hp_spun":      submitted,
		"boxes_opened": opened,
		"errors":       failures,
	})
	return nil
}
