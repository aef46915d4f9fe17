package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestErrorReporterKeepsTotalsPastHistory(t *testing.T) {
	er := NewErrorReporter(2)
	er.Report(ErrorCategoryNetwork, "alice", "register", errors.New("a"))
	er.Report(ErrorCategoryRejected, "alice", "spin", errors.New("b"))
	er.Report(ErrorCategoryRejected, "bob", "spin", errors.New("c"))

	if er.Total() != 3 {
		t.Errorf("expected 3 reports, got %d", er.Total())
	}

	recent := er.RecentErrors(5)
	if len(recent) != 2 {
		t.Fatalf("expected history capped at 2, got %d", len(recent))
	}
	if recent[0].Error.Error() != "b" || recent[1].Error.Error() != "c" {
		t.Errorf("expected the newest reports oldest first, got %v, %v", recent[0].Error, recent[1].Error)
	}

	stats := er.Stats()
	if stats["category_rejected"] != 2 || stats["category_network"] != 1 || stats["step_spin"] != 2 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestErrorReporterLogSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("test").SetOutput(&buf)

	er := NewErrorReporter(0)
	er.LogSummary(logger)
	if buf.Len() != 0 {
		t.Fatalf("expected no summary without failures, got %q", buf.String())
	}

	er.Report(ErrorCategoryServer, "alice", "open_box", errors.New("x"))
	er.Report(ErrorCategoryNetwork, "alice", "init-data", errors.New("y"))
	er.LogSummary(logger)

	line := buf.String()
	for _, want := range []string{"WARN", "init-data=1 open_box=1", "network=1", "server=1"} {
		if !strings.Contains(line, want) {
			t.Errorf("summary %q missing %q", line, want)
		}
	}
}
