package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/config"
)

func main() {
	// Command line flags
	dataPath := flag.String("data", "", "Credential file to check (default: dataFile from the settings file)")
	settingsPath := flag.String("settings", "Settings.ini", "Settings file used to find the credential file")
	flag.Parse()

	path := *dataPath
	if path == "" {
		path = dataFileFromSettings(*settingsPath)
	}

	fmt.Printf("=== Checking accounts in %s ===\n\n", path)

	result, err := accounts.LoadFile(path)
	if result == nil {
		log.Fatalf("Check failed: %v", err)
	}

	// Display results
	fmt.Printf("Summary:\n")
	fmt.Printf("  Lines:     %d\n", result.Lines)
	fmt.Printf("  Valid:     %d\n", len(result.Accounts))
	fmt.Printf("  Rejected:  %d\n", len(result.Errors))
	fmt.Println()

	if len(result.Errors) > 0 {
		fmt.Println("Errors:")
		for _, errMsg := range result.Errors {
			fmt.Printf("  - %s\n", errMsg)
		}
		fmt.Println()
	}

	for _, account := range result.Accounts {
		fmt.Printf("  %-4d %-24s user id %d", account.Index, account.DisplayName(), account.UserID)
		if account.Username != "" {
			fmt.Printf(" (@%s)", account.Username)
		}
		fmt.Println()
	}

	if errors.Is(err, accounts.ErrNoAccounts) {
		fmt.Println("✗ No usable accounts")
		os.Exit(1)
	}
	fmt.Printf("\n✓ %d accounts ready\n", len(result.Accounts))
}

func dataFileFromSettings(path string) string {
	cfg, err := config.LoadFromINI(path)
	if err != nil {
		return config.NewDefaultConfig().DataFile
	}
	return cfg.DataFile
}
