package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks yes/no questions on a terminal
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter reading answers from in and writing questions to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// AskYesNo prints question and reports whether the answer was "y" (any case).
// Any other answer, including an empty line, is no. EOF without an answer is no.
func (p *Prompter) AskYesNo(question string) (bool, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return false, err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

// ApplyPrompts asks whether to complete tasks and upgrade the spinner, overriding cfg
func ApplyPrompts(cfg *Config, p *Prompter) error {
	tasks, err := p.AskYesNo("Complete tasks? (y/n): ")
	if err != nil {
		return err
	}
	upgrade, err := p.AskYesNo("Upgrade spinner? (y/n): ")
	if err != nil {
		return err
	}

	cfg.CompleteTasks = tasks
	cfg.UpgradeSpinner = upgrade
	return nil
}
