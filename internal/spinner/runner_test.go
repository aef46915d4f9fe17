package spinner

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
)

type rejection struct{ code int }

func (r rejection) Error() string  { return fmt.Sprintf("HTTP %d", r.code) }
func (r rejection) Rejected() bool { return r.code >= 400 && r.code < 500 }

// scriptedAPI replays queued spinner states and records every call
type scriptedAPI struct {
	statuses  []Status
	statusErr error
	updateErr func(call, clicks int) error

	updates     []int
	accepted    []int
	repairs     int
	statusCalls int
}

func (f *scriptedAPI) UpdateData(_ context.Context, _ string, clicks int) error {
	f.updates = append(f.updates, clicks)
	if f.updateErr != nil {
		if err := f.updateErr(len(f.updates), clicks); err != nil {
			return err
		}
	}
	f.accepted = append(f.accepted, clicks)
	return nil
}

func (f *scriptedAPI) RepairSpinner(context.Context, string) (bool, error) {
	f.repairs++
	return true, nil
}

func (f *scriptedAPI) SpinnerStatus(context.Context, string, int) (Status, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return Status{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return Status{HP: 1}, nil
	}
	s := f.statuses[0]
	f.statuses = f.statuses[1:]
	return s, nil
}

type countingPacer struct {
	waits int
	err   error
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return p.err
}

func newTestRunner(api API, opts ...Option) *Runner {
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(42, 99)))}, opts...)
	return NewRunner(api, opts...)
}

var target = Target{InitData: "query_id=abc", SpinnerID: 7, Label: "#1 tester"}

func TestRunCompletesPlan(t *testing.T) {
	api := &scriptedAPI{}
	pacer := &countingPacer{}

	res, err := newTestRunner(api, WithPacer(pacer)).Run(context.Background(), target, 37)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeCompleted {
		t.Errorf("expected completed, got %s", res.Outcome)
	}
	if len(api.updates) != PlanSize {
		t.Errorf("expected %d updates, got %d", PlanSize, len(api.updates))
	}
	if got := sum(api.accepted); got != 37 {
		t.Errorf("expected 37 HP submitted, got %d", got)
	}
	if res.Submitted != 37 || res.Increments != PlanSize {
		t.Errorf("unexpected result totals: %+v", res)
	}
	if api.repairs != PlanSize {
		t.Errorf("expected a repair after every update, got %d", api.repairs)
	}
	if pacer.waits != PlanSize-1 {
		t.Errorf("expected %d waits, got %d", PlanSize-1, pacer.waits)
	}
}

func TestRunRepairsDrainedSpinnerAndReplans(t *testing.T) {
	api := &scriptedAPI{
		statuses: []Status{
			{HP: 5},  // after update 1
			{HP: 0},  // after update 2: drained
			{HP: 20}, // after the repair
		},
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeCompleted {
		t.Errorf("expected completed, got %s", res.Outcome)
	}
	if res.Regenerations != 1 || len(res.Plans) != 2 {
		t.Fatalf("expected one re-plan, got %d (%d plans)", res.Regenerations, len(res.Plans))
	}
	if got := sum(res.Plans[1]); got != 20 {
		t.Errorf("expected second plan to sum to 20, got %d", got)
	}
	if len(api.updates) != 2+PlanSize {
		t.Errorf("expected %d updates, got %d", 2+PlanSize, len(api.updates))
	}
	if got := sum(api.accepted[2:]); got != 20 {
		t.Errorf("expected 20 HP after re-plan, got %d", got)
	}
	// one per update plus the drained repair
	if api.repairs != 2+PlanSize+1 {
		t.Errorf("expected %d repairs, got %d", 2+PlanSize+1, api.repairs)
	}
}

func TestRunAbandonsBrokenSpinnerAfterRejection(t *testing.T) {
	api := &scriptedAPI{
		statuses:  []Status{{HP: 40, Broken: true}},
		updateErr: func(int, int) error { return rejection{400} },
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 50)
	if err != nil {
		t.Fatalf("rejection should not surface as an error: %v", err)
	}

	if res.Outcome != OutcomeNotSpinnable {
		t.Errorf("expected not spinnable, got %s", res.Outcome)
	}
	if len(api.updates) != 1 {
		t.Errorf("expected 1 update, got %d", len(api.updates))
	}
	if api.repairs != 0 {
		t.Errorf("expected no repairs, got %d", api.repairs)
	}
}

func TestRunAbandonsSpinnerUnderRepair(t *testing.T) {
	api := &scriptedAPI{
		statuses:  []Status{{HP: 0, UnderRepair: true}},
		updateErr: func(int, int) error { return rejection{403} },
	}

	res, _ := newTestRunner(api).Run(context.Background(), target, 50)
	if res.Outcome != OutcomeNotSpinnable {
		t.Errorf("expected not spinnable, got %s", res.Outcome)
	}
	if api.repairs != 0 {
		t.Errorf("expected no repairs, got %d", api.repairs)
	}
}

func TestRunAbortsOnServerError(t *testing.T) {
	boom := rejection{502}
	api := &scriptedAPI{
		updateErr: func(int, int) error { return fmt.Errorf("upd-data: %w", boom) },
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 50)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped server error, got %v", err)
	}

	if res.Outcome != OutcomeAborted {
		t.Errorf("expected aborted, got %s", res.Outcome)
	}
	if api.repairs != 0 || api.statusCalls != 0 {
		t.Errorf("expected no repair or status calls, got %d and %d", api.repairs, api.statusCalls)
	}
}

func TestRunReplansAfterRejection(t *testing.T) {
	api := &scriptedAPI{
		statuses: []Status{{HP: 30}},
		updateErr: func(call, _ int) error {
			if call == 1 {
				return fmt.Errorf("wrapped: %w", rejection{400})
			}
			return nil
		},
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeCompleted {
		t.Errorf("expected completed, got %s", res.Outcome)
	}
	if res.Regenerations != 1 {
		t.Errorf("expected 1 regeneration, got %d", res.Regenerations)
	}
	if res.Submitted != 30 {
		t.Errorf("expected 30 HP submitted, got %d", res.Submitted)
	}
	if len(api.updates) != 1+PlanSize {
		t.Errorf("expected %d updates, got %d", 1+PlanSize, len(api.updates))
	}
}

func TestRunAbandonsDrainedSpinnerAfterRejection(t *testing.T) {
	api := &scriptedAPI{
		statuses: []Status{{HP: 0}, {HP: 20}},
		updateErr: func(call, _ int) error {
			if call == 1 {
				return rejection{400}
			}
			return nil
		},
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 15)
	if err != nil {
		t.Fatalf("rejection should not surface as an error: %v", err)
	}

	if res.Outcome != OutcomeNotSpinnable {
		t.Errorf("expected not spinnable, got %s", res.Outcome)
	}
	if len(api.updates) != 1 {
		t.Errorf("expected 1 update, got %d", len(api.updates))
	}
	if api.repairs != 0 || res.Regenerations != 0 {
		t.Errorf("expected no repair or re-plan, got %d repairs and %d re-plans", api.repairs, res.Regenerations)
	}
	if api.statusCalls != 1 {
		t.Errorf("expected a single status read, got %d", api.statusCalls)
	}
}

func TestRunStopsWhenStatusUnavailable(t *testing.T) {
	api := &scriptedAPI{
		statusErr: errors.New("connection reset"),
		updateErr: func(int, int) error { return rejection{400} },
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeStatusUnavailable {
		t.Errorf("expected status unavailable, got %s", res.Outcome)
	}
}

func TestRunRegenerationLimit(t *testing.T) {
	api := &scriptedAPI{
		statuses:  []Status{{HP: 20}, {HP: 20}, {HP: 20}},
		updateErr: func(int, int) error { return rejection{400} },
	}

	res, err := newTestRunner(api, WithMaxRegenerations(2)).Run(context.Background(), target, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeRegenerationLimit {
		t.Errorf("expected regeneration limit, got %s", res.Outcome)
	}
	if len(api.updates) != 3 {
		t.Errorf("expected 3 updates, got %d", len(api.updates))
	}
	if res.Regenerations != 2 {
		t.Errorf("expected 2 regenerations, got %d", res.Regenerations)
	}
}

func TestRunStopsReplanningBelowPlanSize(t *testing.T) {
	api := &scriptedAPI{
		statuses:  []Status{{HP: 4}},
		updateErr: func(int, int) error { return rejection{400} },
	}

	res, err := newTestRunner(api).Run(context.Background(), target, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeInsufficientHP {
		t.Errorf("expected insufficient hp, got %s", res.Outcome)
	}
}

func TestRunRejectsLowHP(t *testing.T) {
	api := &scriptedAPI{}

	res, err := newTestRunner(api).Run(context.Background(), target, PlanSize-1)
	if !errors.Is(err, ErrInsufficientHP) {
		t.Fatalf("expected ErrInsufficientHP, got %v", err)
	}
	if res.Outcome != OutcomeInsufficientHP {
		t.Errorf("expected insufficient hp, got %s", res.Outcome)
	}
	if len(api.updates) != 0 {
		t.Errorf("expected no updates, got %d", len(api.updates))
	}
}

func TestRunStopsWhenPacerCancelled(t *testing.T) {
	api := &scriptedAPI{}
	pacer := &countingPacer{err: context.Canceled}

	res, err := newTestRunner(api, WithPacer(pacer)).Run(context.Background(), target, 30)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Outcome != OutcomeAborted {
		t.Errorf("expected aborted, got %s", res.Outcome)
	}
	if len(api.updates) != 1 {
		t.Errorf("expected 1 update before cancellation, got %d", len(api.updates))
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &scriptedAPI{}
	_, err := newTestRunner(api).Run(ctx, target, 30)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(api.updates) != 0 {
		t.Errorf("expected no updates, got %d", len(api.updates))
	}
}
