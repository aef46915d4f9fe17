package bot

import (
	"context"
	"fmt"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/timboo"
)

// RunAccount processes one account: registration, then spinners, then boxes.
// The returned error is non-nil only when ctx ended the run.
func (b *Bot) RunAccount(ctx context.Context, account accounts.Account) (*Report, error) {
	report := &Report{Account: account.String()}

	steps := []func(context.Context, accounts.Account, *Report) error{
		b.register,
		b.checkSpinners,
		b.claimBoxes,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := step(ctx, account, report); err != nil {
			return report, err
		}
	}
	return report, ctx.Err()
}

func (b *Bot) register(ctx context.Context, account accounts.Account, report *Report) error {
	resp, err := b.api.Register(ctx, account.InitData)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Error("Registration failed", err)
		b.publishError(report.Account, "register", err)
		report.Errors++
		return nil
	}

	switch resp.Message {
	case timboo.MessageRegistered:
		b.logger.Success(fmt.Sprintf("Registered, user id %d", resp.UserID))
		report.Registered = true
	case timboo.MessageAlreadyRegistered:
		b.logger.Warn("Account already registered")
		report.Registered = true
	default:
		b.logger.Warn(fmt.Sprintf("Unexpected register reply: %q", resp.Message))
	}
	return nil
}
