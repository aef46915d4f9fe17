// Package spinner spends a spinner's HP through the upd-data endpoint.
//
// HP is split into a plan of PlanSize increments which are submitted one by
// one. Whenever the server reports the spinner drained or rejects an update,
// the loop re-reads the spinner, repairs it if needed and starts over with a
// fresh plan for whatever HP is now available.
package spinner

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	// PlanSize is the number of increments in a plan
	PlanSize = 10
	// MaxTopUp caps a single random top-up; a slot can still exceed it over several top-ups
	MaxTopUp = 99
)

// ErrInsufficientHP is returned when HP cannot cover PlanSize increments of at least 1
var ErrInsufficientHP = errors.New("hp below plan size")

// GeneratePlan splits hp into PlanSize positive increments that sum to hp.
//
// Every slot starts at 1; the remainder is handed out by repeatedly picking a
// random slot and adding a random 1..min(MaxTopUp, remaining). The result is
// meant to look like varied human swipe counts, not to be a uniform partition.
// hp must be at least PlanSize.
func GeneratePlan(rng *rand.Rand, hp int) ([]int, error) {
	if hp < PlanSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrInsufficientHP, hp, PlanSize)
	}

	plan := make([]int, PlanSize)
	for i := range plan {
		plan[i] = 1
	}

	remaining := hp - PlanSize
	for remaining > 0 {
		idx := rng.IntN(PlanSize)
		add := rng.IntN(min(MaxTopUp, remaining)) + 1
		plan[idx] += add
		remaining -= add
	}

	return plan, nil
}

// sum adds up a plan
func sum(plan []int) int {
	total := 0
	for _, v := range plan {
		total += v
	}
	return total
}
