package coordinator

import (
	"sync"
	"time"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/bot"
)

// AccountStats accumulates per-account results across cycles
type AccountStats struct {
	Runs        int
	LastRun     time.Time
	Submitted   int
	BoxesOpened int
	Upgrades    int
	Errors      int
}

// AccountManager holds the fixed account list and what each account has done so far
type AccountManager struct {
	accounts []accounts.Account
	stats    map[int]*AccountStats
	mu       sync.RWMutex
}

func NewAccountManager(list []accounts.Account) *AccountManager {
	am := &AccountManager{
		accounts: list,
		stats:    make(map[int]*AccountStats, len(list)),
	}
	for _, a := range list {
		am.stats[a.Index] = &AccountStats{}
	}
	return am
}

// Accounts returns the accounts in processing order
func (am *AccountManager) Accounts() []accounts.Account {
	return am.accounts
}

// Count returns the number of accounts
func (am *AccountManager) Count() int {
	return len(am.accounts)
}

// Record folds one account report into the running totals
func (am *AccountManager) Record(account accounts.Account, report *bot.Report, at time.Time) {
	if report == nil {
		return
	}

	am.mu.Lock()
	defer am.mu.Unlock()

	s, ok := am.stats[account.Index]
	if !ok {
		s = &AccountStats{}
		am.stats[account.Index] = s
	}
	s.Runs++
	s.LastRun = at
	s.Submitted += report.Submitted()
	s.BoxesOpened += report.BoxesOpened
	s.Upgrades += report.Upgrades
	s.Errors += report.Errors
}

// Stats returns a copy of the totals for account index
func (am *AccountManager) Stats(index int) (AccountStats, bool) {
	am.mu.RLock()
	defer am.mu.RUnlock()

	s, ok := am.stats[index]
	if !ok {
		return AccountStats{}, false
	}
	return *s, true
}
