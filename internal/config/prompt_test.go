package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\r\n", true},
		{"  y  \n", true},
		{"yes\n", false},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tt.input), &out)

		got, err := p.AskYesNo("Continue? (y/n): ")
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Continue? (y/n): " {
			t.Errorf("question written as %q", out.String())
		}
	}
}

func TestApplyPrompts(t *testing.T) {
	cfg := NewDefaultConfig()
	var out bytes.Buffer

	if err := ApplyPrompts(cfg, NewPrompter(strings.NewReader("n\ny\n"), &out)); err != nil {
		t.Fatalf("ApplyPrompts failed: %v", err)
	}

	if cfg.CompleteTasks {
		t.Error("expected tasks off")
	}
	if !cfg.UpgradeSpinner {
		t.Error("expected upgrade on")
	}
	if !strings.Contains(out.String(), "Complete tasks?") || !strings.Contains(out.String(), "Upgrade spinner?") {
		t.Errorf("unexpected questions: %q", out.String())
	}
}
