package accounts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoAccounts is returned when a data file holds no usable credential
var ErrNoAccounts = errors.New("no valid accounts found")

// LoadResult contains the accounts read from a data file and the lines that were rejected
type LoadResult struct {
	Accounts []Account
	Lines    int      // non-blank lines seen
	Errors   []string // one entry per rejected line
}

// LoadFile reads one credential per line from path
func LoadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	result, err := Load(f)
	if err != nil {
		// result is still returned for ErrNoAccounts so callers can show the rejected lines
		return result, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// Load reads credentials from r. Carriage returns are stripped and blank lines skipped.
// Lines whose identity cannot be parsed are reported in Errors and skipped.
func Load(r io.Reader) (*LoadResult, error) {
	result := &LoadResult{}

	scanner := bufio.NewScanner(r)
	// Credential blobs carry signed JSON and can outgrow the default 64K token.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), "\r", ""))
		if line == "" {
			continue
		}
		result.Lines++

		account, err := Parse(line)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		account.Index = len(result.Accounts) + 1
		result.Accounts = append(result.Accounts, account)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	if len(result.Accounts) == 0 {
		return result, ErrNoAccounts
	}
	return result, nil
}
