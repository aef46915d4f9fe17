package bot

import "jordanella.com/spinner-go/internal/spinner"

// Report is what happened to one account during one cycle
type Report struct {
	Account    string
	Registered bool // registered now or already
	Balance    float64

	// Spinners
	Spins    []SpinReport
	Repairs  int
	Upgrades int

	// Boxes
	BoxesOpened  int
	BoxesWaiting int

	// Tasks
	RequirementsMet     int
	RequirementsPending int
	AdsWatched          int

	// Failures logged and swallowed
	Errors int
}

// SpinReport is the spin loop result for one spinner
type SpinReport struct {
	SpinnerID int
	HP        int
	Result    spinner.Result
}

// Submitted sums HP accepted across all spinners
func (r *Report) Submitted() int {
	total := 0
	for _, s := range r.Spins {
		total += s.Result.Submitted
	}
	return total
}
