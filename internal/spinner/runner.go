package spinner

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"jordanella.com/spinner-go/internal/logging"
	"jordanella.com/spinner-go/internal/pacing"
)

// Status is the part of the spinner state the loop reacts to
type Status struct {
	HP          int
	Broken      bool
	UnderRepair bool
}

// Spinnable reports whether updates can be submitted right now
func (s Status) Spinnable() bool {
	return s.HP > 0 && !s.Broken && !s.UnderRepair
}

// API is what the loop needs from the game server.
//
// An UpdateData error whose chain contains a value with a Rejected() bool method
// returning true is treated as a server-side rejection; any other error aborts the loop.
type API interface {
	UpdateData(ctx context.Context, initData string, clicks int) error
	RepairSpinner(ctx context.Context, initData string) (bool, error)
	SpinnerStatus(ctx context.Context, initData string, spinnerID int) (Status, error)
}

// Target identifies the spinner being spun
type Target struct {
	InitData  string
	SpinnerID int
	Label     string // account name for log lines
}

// Outcome says why a run ended
type Outcome string

const (
	OutcomeCompleted         Outcome = "completed"          // every planned increment was submitted
	OutcomeInsufficientHP    Outcome = "insufficient_hp"    // HP could not fill a plan
	OutcomeNotSpinnable      Outcome = "not_spinnable"      // rejected, and the spinner is drained, broken or repairing
	OutcomeDepleted          Outcome = "depleted"           // drained, and still not spinnable after repair
	OutcomeStatusUnavailable Outcome = "status_unavailable" // rejected, and the spinner could not be read
	OutcomeRegenerationLimit Outcome = "regeneration_limit" // too many fresh plans in one run
	OutcomeAborted           Outcome = "aborted"            // non-rejection error or cancellation
)

// Result summarises one run
type Result struct {
	Outcome       Outcome
	Submitted     int     // HP accepted by the server
	Increments    int     // accepted updates
	Regenerations int     // fresh plans after the first
	Plans         [][]int // every plan used, in order
}

// Runner executes spin plans against the API
type Runner struct {
	api              API
	pacer            pacing.Pacer
	rng              *rand.Rand
	logger           *logging.Logger
	maxRegenerations int
}

// Option configures a Runner
type Option func(*Runner)

// WithPacer sets the delay between accepted increments
func WithPacer(p pacing.Pacer) Option {
	return func(r *Runner) { r.pacer = p }
}

// WithRand fixes the random source used for plans
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMaxRegenerations bounds fresh plans per run; 0 means unbounded
func WithMaxRegenerations(n int) Option {
	return func(r *Runner) { r.maxRegenerations = n }
}

// NewRunner creates a runner. Without options it does not pace, does not log and
// never stops re-planning.
func NewRunner(api API, opts ...Option) *Runner {
	r := &Runner{
		api:    api,
		pacer:  pacing.None{},
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run spends hp on target. It returns an error only when the loop was aborted by a
// non-rejection error, by cancellation, or when hp is below PlanSize.
func (r *Runner) Run(ctx context.Context, target Target, hp int) (Result, error) {
	var res Result
	log := r.logger.WithContext(map[string]interface{}{
		"account": target.Label,
		"spinner": target.SpinnerID,
	})

	plan, err := GeneratePlan(r.rng, hp)
	if err != nil {
		res.Outcome = OutcomeInsufficientHP
		return res, err
	}
	res.Plans = append(res.Plans, plan)
	log.Custom(fmt.Sprintf("Split %d HP into %d spins: %s", hp, len(plan), formatPlan(plan)))

	for i := 0; i < len(plan); i++ {
		if err := ctx.Err(); err != nil {
			res.Outcome = OutcomeAborted
			return res, err
		}

		increment := plan[i]
		log.Info(fmt.Sprintf("Spin %d/%d: %d HP", i+1, len(plan), increment))

		if err := r.api.UpdateData(ctx, target.InitData, increment); err != nil {
			if !isRejected(err) {
				res.Outcome = OutcomeAborted
				return res, fmt.Errorf("spin %d: %w", i+1, err)
			}

			log.Warn("Update rejected, re-reading spinner")
			next, outcome := r.afterRejection(ctx, target, log, &res)
			if next == nil {
				return r.stop(ctx, &res, outcome)
			}
			plan, i = next, -1
			continue
		}

		res.Submitted += increment
		res.Increments++
		log.Success("Spinner updated")

		// The server expects a repair call after every update, drained or not.
		r.repair(ctx, target, log, false)

		status, err := r.api.SpinnerStatus(ctx, target.InitData, target.SpinnerID)
		switch {
		case err != nil:
			log.Warn(fmt.Sprintf("Could not read spinner after spin: %v", err))
		case status.HP == 0:
			log.Warn("Spinner drained, repairing")
			next, outcome := r.repairAndReplan(ctx, target, log, &res)
			if next == nil {
				return r.stop(ctx, &res, outcome)
			}
			plan, i = next, -1
			continue
		}

		if i < len(plan)-1 {
			if err := r.pacer.Wait(ctx); err != nil {
				res.Outcome = OutcomeAborted
				return res, err
			}
		}
	}

	res.Outcome = OutcomeCompleted
	return res, nil
}

// stop ends a run abandoned by the loop, surfacing cancellation if that is what caused it
func (r *Runner) stop(ctx context.Context, res *Result, outcome Outcome) (Result, error) {
	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeAborted
		return *res, err
	}
	res.Outcome = outcome
	return *res, nil
}

// afterRejection re-reads the spinner after a rejected update and decides how to go on.
// A nil plan means stop with the returned outcome.
func (r *Runner) afterRejection(ctx context.Context, target Target, log *logging.ContextLogger, res *Result) ([]int, Outcome) {
	status, err := r.api.SpinnerStatus(ctx, target.InitData, target.SpinnerID)
	if err != nil {
		log.Error("Could not read spinner, stopping", err)
		return nil, OutcomeStatusUnavailable
	}

	// Spinnable implies HP > 0, so a drained spinner stops here too
	if !status.Spinnable() {
		log.Warn("Spinner cannot spin any more")
		return nil, OutcomeNotSpinnable
	}
	return r.replan(status.HP, log, res)
}

// repairAndReplan repairs a drained spinner and plans its new HP
func (r *Runner) repairAndReplan(ctx context.Context, target Target, log *logging.ContextLogger, res *Result) ([]int, Outcome) {
	r.repair(ctx, target, log, true)

	status, err := r.api.SpinnerStatus(ctx, target.InitData, target.SpinnerID)
	if err != nil || !status.Spinnable() {
		log.Warn("Cannot continue spinning after repair")
		return nil, OutcomeDepleted
	}
	return r.replan(status.HP, log, res)
}

func (r *Runner) replan(hp int, log *logging.ContextLogger, res *Result) ([]int, Outcome) {
	if r.maxRegenerations > 0 && res.Regenerations >= r.maxRegenerations {
		log.Warn(fmt.Sprintf("Gave up after %d re-plans", res.Regenerations))
		return nil, OutcomeRegenerationLimit
	}

	plan, err := GeneratePlan(r.rng, hp)
	if err != nil {
		log.Warn(fmt.Sprintf("Cannot re-plan: %v", err))
		return nil, OutcomeInsufficientHP
	}

	res.Regenerations++
	res.Plans = append(res.Plans, plan)
	log.Custom(fmt.Sprintf("Re-planned %d HP: %s", hp, formatPlan(plan)))
	return plan, ""
}

// repair errors are logged only; the next status read decides what happens
func (r *Runner) repair(ctx context.Context, target Target, log *logging.ContextLogger, drained bool) {
	ok, err := r.api.RepairSpinner(ctx, target.InitData)
	switch {
	case err != nil:
		log.Error("Repair failed", err)
	case ok && drained:
		log.Success("Spinner repaired")
	case ok:
		log.Debug("Repair acknowledged")
	}
}

func isRejected(err error) bool {
	var r interface{ Rejected() bool }
	return errors.As(err, &r) && r.Rejected()
}

func formatPlan(plan []int) string {
	parts := make([]string, len(plan))
	for i, v := range plan {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ") + " (sum " + strconv.Itoa(sum(plan)) + ")"
}
