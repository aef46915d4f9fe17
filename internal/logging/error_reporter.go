package logging

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrorCategory groups failures by where they came from
type ErrorCategory string

const (
	ErrorCategoryNetwork  ErrorCategory = "network"  // request never got a reply
	ErrorCategoryRejected ErrorCategory = "rejected" // server answered 4xx
	ErrorCategoryServer   ErrorCategory = "server"   // server answered 5xx
	ErrorCategoryResponse ErrorCategory = "response" // 2xx with a body we could not use
)

// ErrorReport is one swallowed failure
type ErrorReport struct {
	Timestamp time.Time
	Category  ErrorCategory
	Account   string
	Step      string
	Error     error
}

// ErrorReporter keeps the failures the workflow logged and moved past, so they can
// be summarised when the run ends
type ErrorReporter struct {
	history    []*ErrorReport
	maxHistory int
	counts     map[ErrorCategory]int
	steps      map[string]int
	mu         sync.RWMutex

	now func() time.Time
}

// NewErrorReporter creates a reporter that remembers the last maxHistory reports.
// Totals are kept for every report regardless of the limit.
func NewErrorReporter(maxHistory int) *ErrorReporter {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	return &ErrorReporter{
		maxHistory: maxHistory,
		counts:     make(map[ErrorCategory]int),
		steps:      make(map[string]int),
		now:        time.Now,
	}
}

// Report records a failure
func (er *ErrorReporter) Report(category ErrorCategory, account, step string, err error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	er.history = append(er.history, &ErrorReport{
		Timestamp: er.now(),
		Category:  category,
		Account:   account,
		Step:      step,
		Error:     err,
	})
	if len(er.history) > er.maxHistory {
		er.history = er.history[len(er.history)-er.maxHistory:]
	}
	er.counts[category]++
	er.steps[step]++
}

// RecentErrors returns up to n of the newest reports, oldest first
func (er *ErrorReporter) RecentErrors(n int) []*ErrorReport {
	er.mu.RLock()
	defer er.mu.RUnlock()

	n = min(n, len(er.history))
	result := make([]*ErrorReport, n)
	copy(result, er.history[len(er.history)-n:])
	return result
}

// Total returns how many failures were reported
func (er *ErrorReporter) Total() int {
	er.mu.RLock()
	defer er.mu.RUnlock()

	total := 0
	for _, c := range er.counts {
		total += c
	}
	return total
}

// Stats returns totals keyed "category_<name>" and "step_<name>"
func (er *ErrorReporter) Stats() map[string]int {
	er.mu.RLock()
	defer er.mu.RUnlock()

	stats := make(map[string]int, len(er.counts)+len(er.steps))
	for c, n := range er.counts {
		stats["category_"+string(c)] = n
	}
	for s, n := range er.steps {
		stats["step_"+s] = n
	}
	return stats
}

// LogSummary writes one line with the per-step totals, or nothing when there were no failures
func (er *ErrorReporter) LogSummary(logger *Logger) {
	er.mu.RLock()
	defer er.mu.RUnlock()

	if len(er.steps) == 0 {
		return
	}

	steps := make([]string, 0, len(er.steps))
	for s := range er.steps {
		steps = append(steps, s)
	}
	sort.Strings(steps)

	context := make(map[string]interface{}, len(er.counts))
	for c, n := range er.counts {
		context[string(c)] = n
	}

	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s + "=" + strconv.Itoa(er.steps[s])
	}
	logger.WarnWithContext("Failures this run: "+strings.Join(parts, " "), context)
}
