package bot

import (
	"context"
	"fmt"

	"jordanella.com/spinner-go/internal/accounts"
	"jordanella.com/spinner-go/internal/events"
	"jordanella.com/spinner-go/internal/timboo"
)

// Ad-view requirement, completed through adsgram instead of check_requirement
const (
	adRequirementID   = 115
	adRequirementType = "adsgram"
)

func isAdRequirement(req timboo.Requirement) bool {
	return req.ID == adRequirementID || req.Type == adRequirementType
}

// completeTasks asks the server to verify every requirement of every task
func (b *Bot) completeTasks(ctx context.Context, account accounts.Account, sections []timboo.Section, report *Report) error {
	for _, section := range sections {
		b.logger.Info(fmt.Sprintf("Tasks in section: %s", section.Title))

		for _, task := range section.Tasks {
			b.logger.Info(fmt.Sprintf("Checking task: %s (%v SPN)", task.Name, task.Reward))

			for _, req := range task.Requirements {
				if isAdRequirement(req) {
					if err := b.watchAd(ctx, account, req, report); err != nil {
						return err
					}
					continue
				}

				checked, err := b.checkRequirement(ctx, account, task, req, report)
				if err != nil {
					return err
				}
				if checked {
					if err := b.requirementPacer.Wait(ctx); err != nil {
						return err
					}
				}
			}

			if err := b.taskPacer.Wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkRequirement reports whether the server answered, so the caller knows to pace
func (b *Bot) checkRequirement(ctx context.Context, account accounts.Account, task timboo.Task, req timboo.Requirement, report *Report) (bool, error) {
	resp, err := b.api.CheckRequirement(ctx, account.InitData, req.ID)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if msg, ok := timboo.ServerMessage(err); ok {
			b.logger.Warn(fmt.Sprintf("%s: %s", req.Name, msg))
		} else {
			b.logger.Error(fmt.Sprintf("Could not check requirement %s", req.Name), err)
		}
		b.publishError(report.Account, "check_requirement", err)
		report.Errors++
		return false, nil
	}

	b.events.Publish(events.NewRequirementCheckedEvent(report.Account, req.ID, resp.Success))

	if resp.Success {
		b.logger.Success(fmt.Sprintf("Completed: %s | reward %v SPN", req.Name, task.Reward))
		report.RequirementsMet++
		return true, nil
	}

	report.RequirementsPending++
	b.logger.Warn(fmt.Sprintf("Requirement: %s", req.Name))
	if hint := requirementHint(req); hint != "" {
		b.logger.Custom("  " + hint)
	}
	return true, nil
}

// watchAd starts an ad view, waits it out and completes it. Failures are logged and swallowed.
func (b *Bot) watchAd(ctx context.Context, account accounts.Account, req timboo.Requirement, report *Report) error {
	hash, err := b.api.StartAd(ctx, account.InitData)
	if err != nil {
		return b.adFailed(ctx, report, fmt.Sprintf("Could not start ad %s", req.Name), err)
	}
	b.logger.Info(fmt.Sprintf("Watching ad %s (hash %s)", req.Name, hash))

	if err := b.sleep(ctx, b.config.AdWatchTime); err != nil {
		return err
	}

	resp, err := b.api.CompleteAd(ctx, account.InitData, hash)
	if err != nil {
		return b.adFailed(ctx, report, fmt.Sprintf("Could not complete ad %s", req.Name), err)
	}
	if resp.Reward <= 0 {
		b.logger.Warn(fmt.Sprintf("Ad %s was not rewarded", req.Name))
		return nil
	}

	b.logger.Success(fmt.Sprintf("Ad watched | reward %v SPN", resp.Reward))
	report.AdsWatched++
	b.events.Publish(events.NewAdWatchedEvent(report.Account, req.ID, resp.Reward))
	return nil
}

func (b *Bot) adFailed(ctx context.Context, report *Report, msg string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	b.logger.Error(msg, err)
	b.publishError(report.Account, "adsgram", err)
	report.Errors++
	return nil
}

// requirementHint tells the operator what an unmet requirement needs
func requirementHint(req timboo.Requirement) string {
	switch req.Type {
	case "tg_subscribe":
		return "Telegram link: " + req.TgLink
	case "boost":
		return "Boost link: " + req.TgLink
	case "website", "twitter":
		return "Link: " + req.WebsiteURL
	case "league":
		return fmt.Sprintf("Reach league id %d", req.LeagueID)
	default:
		return ""
	}
}
