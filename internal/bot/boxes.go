package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/events"
	"jordanella.com/spinner-go/internal/timboo"
)

// BoxReady reports whether box can be opened at now. When it cannot, next is the
// earliest time it can. A box that was never opened is always ready.
func BoxReady(box timboo.Box, now time.Time, interval time.Duration) (ready bool, next time.Time, err error) {
	if box.OpenTime == "" {
		return true, time.Time{}, nil
	}

	opened, err := http.ParseTime(box.OpenTime)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("box %d: invalid open_time %q: %w", box.ID, box.OpenTime, err)
	}

	next = opened.Add(interval)
	return !now.Before(next), next, nil
}

// FormatRemaining renders d as "6h 5m 3s", leaving out zero parts
func FormatRemaining(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Truncate(time.Second)

	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

func (b *Bot) claimBoxes(ctx context.Context, account accounts.Account, report *Report) error {
	boxes, err := b.api.Boxes(ctx, account.InitData)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Error("Could not read boxes", err)
		b.publishError(report.Account, "get_data", err)
		report.Errors++
		return nil
	}

	now := b.now()
	for _, box := range boxes {
		ready, next, err := BoxReady(box, now, b.config.BoxInterval)
		if err != nil {
			b.logger.Warn(err.Error())
			continue
		}

		if !ready {
			report.BoxesWaiting++
			local := next.In(b.config.Location)
			b.logger.Warn(fmt.Sprintf("Box %s: next claim %s (%s), %s left",
				box.Name, local.Format(displayTimeLayout), b.config.Location, FormatRemaining(next.Sub(now))))
			continue
		}

		b.openBox(ctx, account, box, report)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) openBox(ctx context.Context, account accounts.Account, box timboo.Box, report *Report) {
	resp, err := b.api.OpenBox(ctx, account.InitData, box.ID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error(fmt.Sprintf("Could not open box %s", box.Name), err)
		b.publishError(report.Account, "open_box", err)
		report.Errors++
		return
	}

	if !resp.Opened() {
		b.logger.Warn(fmt.Sprintf("Box %s was not opened: %s", box.Name, resp.Message))
		return
	}

	reward := strings.ReplaceAll(resp.RewardText, "<br/>", " ")
	b.logger.Success(fmt.Sprintf("Opened box %s: %s", box.Name, reward))
	report.BoxesOpened++
	b.events.Publish(events.NewBoxOpenedEvent(report.Account, box.ID, reward))
}
