package bot

import (
	"context"
	"errors"
	"fmt"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/events"
	"jordanella.com/spinner-go/internal/spinner"
	"jordanella.com/spinner-go/internal/timboo"
)

const displayTimeLayout = "02/01/2006 15:04:05"

// spinnerAPI narrows GameAPI to what the spin loop needs
type spinnerAPI struct {
	GameAPI
}

func (a spinnerAPI) SpinnerStatus(ctx context.Context, initData string, spinnerID int) (spinner.Status, error) {
	data, err := a.InitData(ctx, initData)
	if err != nil {
		return spinner.Status{}, err
	}

	s, ok := data.Spinner(spinnerID)
	if !ok {
		// the id can change after a repair; fall back to the first spinner
		if s, ok = data.FirstSpinner(); !ok {
			return spinner.Status{}, fmt.Errorf("init-data: %w: no spinners", timboo.ErrUnexpectedResponse)
		}
	}
	return spinner.Status{HP: s.HP, Broken: s.IsBroken, UnderRepair: s.UnderRepair()}, nil
}

// checkSpinners reads init-data, optionally works through tasks, spins every spinnable
// spinner, repairs drained ones and optionally upgrades.
func (b *Bot) checkSpinners(ctx context.Context, account accounts.Account, report *Report) error {
	data, err := b.api.InitData(ctx, account.InitData)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Error("Could not read spinners", err)
		b.publishError(report.Account, "init-data", err)
		report.Errors++
		return nil
	}

	if b.config.CompleteTasks && len(data.Sections) > 0 {
		if err := b.completeTasks(ctx, account, data.Sections, report); err != nil {
			return err
		}
	}

	report.Balance = data.User.Balance
	b.logger.Custom(fmt.Sprintf("Balance: %v", data.User.Balance))

	spun := false
	for _, s := range data.Spinners {
		switch {
		case s.Spinnable():
			b.logger.Success(fmt.Sprintf("Spinner %d has %d HP", s.ID, s.HP))
			if err := b.spin(ctx, account, s, report); err != nil {
				return err
			}
			spun = true

		case s.HP == 0 && s.UnderRepair():
			b.logRepairEnd(s)

		case s.HP == 0:
			b.logger.Warn(fmt.Sprintf("Spinner %d needs a repair", s.ID))
			b.repair(ctx, account, s.ID, report)

		default:
			b.logger.Warn(fmt.Sprintf("Spinner %d is broken or out of HP", s.ID))
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if !b.config.UpgradeSpinner {
		return nil
	}

	// spinning moves the balance; upgrade decisions use fresh numbers
	if spun {
		if fresh, err := b.api.InitData(ctx, account.InitData); err == nil {
			data = fresh
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return b.upgrade(ctx, account, data, report)
}

func (b *Bot) spin(ctx context.Context, account accounts.Account, s timboo.Spinner, report *Report) error {
	target := spinner.Target{
		InitData:  account.InitData,
		SpinnerID: s.ID,
		Label:     report.Account,
	}

	result, err := b.runner().Run(ctx, target, s.HP)
	report.Spins = append(report.Spins, SpinReport{SpinnerID: s.ID, HP: s.HP, Result: result})
	b.events.Publish(events.NewSpinFinishedEvent(report.Account, s.ID, string(result.Outcome), result.Submitted, result.Regenerations))

	switch {
	case err == nil:
		b.logger.Custom(fmt.Sprintf("Spinner %d: %s, %d HP in %d spins", s.ID, result.Outcome, result.Submitted, result.Increments))
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, spinner.ErrInsufficientHP):
		b.logger.Warn(fmt.Sprintf("Spinner %d: %d HP is too little to split", s.ID, s.HP))
	default:
		b.logger.Error(fmt.Sprintf("Spinner %d stopped", s.ID), err)
		b.publishError(report.Account, "spin", err)
		report.Errors++
	}
	return nil
}

func (b *Bot) repair(ctx context.Context, account accounts.Account, spinnerID int, report *Report) {
	ok, err := b.api.RepairSpinner(ctx, account.InitData)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("Repair failed", err)
		b.publishError(report.Account, "repair", err)
		report.Errors++
	case ok:
		b.logger.Success("Spinner repaired")
		report.Repairs++
		b.events.Publish(events.NewSpinnerRepairedEvent(report.Account, spinnerID))
	default:
		b.logger.Warn("Repair was not accepted")
	}
}

func (b *Bot) logRepairEnd(s timboo.Spinner) {
	ends, err := s.RepairEnds()
	if err != nil {
		b.logger.Warn(fmt.Sprintf("Spinner %d is being repaired", s.ID))
		return
	}
	ends = ends.In(b.config.Location)
	b.logger.Warn(fmt.Sprintf("Spinner %d is being repaired until %s (%s)", s.ID, ends.Format(displayTimeLayout), b.config.Location))
}

// upgrade levels the first spinner up while the balance allows, re-reading init-data after each level
func (b *Bot) upgrade(ctx context.Context, account accounts.Account, data *timboo.InitData, report *Report) error {
	for n := 0; b.config.MaxUpgrades == 0 || n < b.config.MaxUpgrades; n++ {
		s, ok := data.FirstSpinner()
		if !ok {
			b.logger.Warn("No spinner to upgrade")
			return nil
		}

		next, ok := data.NextLevel(s.Level)
		if !ok {
			b.logger.Custom(fmt.Sprintf("Spinner is at max level %d", s.Level))
			return nil
		}
		b.logger.Info(fmt.Sprintf("Spinner level %d, next level costs %v", s.Level, next.Price))

		if data.User.Balance < next.Price {
			b.logger.Warn(fmt.Sprintf("Not enough balance to upgrade (%v < %v)", data.User.Balance, next.Price))
			return nil
		}
		b.logger.Custom(fmt.Sprintf("Upgrading (balance %v >= %v)", data.User.Balance, next.Price))

		upgraded, err := b.api.UpgradeSpinner(ctx, account.InitData, s.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error("Upgrade failed", err)
			b.publishError(report.Account, "upgrade", err)
			report.Errors++
			return nil
		}
		if !upgraded {
			b.logger.Warn("Upgrade was not accepted")
			return nil
		}

		b.logger.Success(fmt.Sprintf("Spinner upgraded to level %d", next.Level))
		report.Upgrades++
		b.events.Publish(events.NewSpinnerUpgradedEvent(report.Account, s.ID, next.Level, next.Price))

		fresh, err := b.api.InitData(ctx, account.InitData)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error("Could not re-read spinner after upgrade", err)
			report.Errors++
			return nil
		}
		data = fresh
	}

	b.logger.Warn(fmt.Sprintf("Stopped after %d upgrades this cycle", b.config.MaxUpgrades))
	return nil
}
