// Package batch generates and delivers newsletters for every active user.
// It is the entry point the scheduled job invokes.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/curator"
	"github.com/seanmtli/personalnewsletter/internal/email"
	"github.com/seanmtli/personalnewsletter/internal/logger"
	"github.com/seanmtli/personalnewsletter/internal/store"
)

// Runner iterates users and produces one newsletter each.
type Runner struct {
	cfg     config.Config
	store   *store.Store
	curator *curator.Curator
	emailer *email.Emailer
}

// Summary reports the outcome of one batch run. Generated counts dry-run
// users whose newsletter was persisted but deliberately not delivered.
type Summary struct {
	Processed int
	Sent      int
	Generated int
	Skipped   int
	Errors    int
}

// New creates a batch runner.
func New(cfg config.Config, st *store.Store, cur *curator.Curator, em *email.Emailer) *Runner {
	return &Runner{cfg: cfg, store: st, curator: cur, emailer: em}
}

// Run generates newsletters for all active users, or for one user when
// targetEmail is non-empty. Users are processed sequentially; a per-user
// failure is logged and never stops the rest of the run. With dryRun set,
// newsletters are generated and persisted but not emailed.
func (r *Runner) Run(ctx context.Context, targetEmail string, dryRun bool) (Summary, error) {
	var users []core.User
	if targetEmail != "" {
		user, err := r.store.GetUserByEmail(targetEmail)
		if err != nil {
			return Summary{}, err
		}
		users = []core.User{user}
	} else {
		var err error
		users, err = r.store.ListActiveUsers()
		if err != nil {
			return Summary{}, err
		}
	}

	logger.Info("batch run starting", "users", len(users), "dry_run", dryRun)

	var summary Summary
	for _, user := range users {
		summary.Processed++
		switch outcome, err := r.processUser(ctx, user, dryRun); outcome {
		case outcomeSent:
			summary.Sent++
		case outcomeGenerated:
			summary.Generated++
		case outcomeSkipped:
			summary.Skipped++
		default:
			logger.Error("user processing failed", err, "email", user.Email)
			summary.Errors++
		}
	}

	logger.Info("batch run complete",
		"processed", summary.Processed, "sent", summary.Sent,
		"generated", summary.Generated, "skipped", summary.Skipped,
		"errors", summary.Errors)
	return summary, nil
}

// Per-user outcomes.
const (
	outcomeSent      = "sent"
	outcomeGenerated = "generated"
	outcomeSkipped   = "skipped"
	outcomeError     = "error"
)

func (r *Runner) processUser(ctx context.Context, user core.User, dryRun bool) (string, error) {
	prefs, err := r.store.ListPreferences(user.ID)
	if err != nil {
		return outcomeError, err
	}
	if len(prefs) == 0 {
		logger.Info("no preferences set, skipping", "email", user.Email)
		return outcomeSkipped, nil
	}

	interests := make([]string, 0, len(prefs))
	for _, p := range prefs {
		interests = append(interests, p.InterestName)
	}
	logger.Info("processing user", "email", user.Email, "interests", len(interests))

	curated := r.curator.Curate(ctx, interests)
	if len(curated.Items) == 0 {
		logger.Warn("no content found, skipping", "email", user.Email)
		return outcomeSkipped, nil
	}

	html, err := email.RenderNewsletter(r.cfg.App, curated)
	if err != nil {
		return outcomeError, err
	}

	newsletter, err := r.store.SaveNewsletter(user.ID, html, curated)
	if err != nil {
		return outcomeError, err
	}
	logger.Info("newsletter saved",
		"email", user.Email, "id", newsletter.ID,
		"items", len(curated.Items), "provider", curated.ProviderUsed)

	if dryRun {
		logger.Info("dry run, not sending", "email", user.Email)
		return outcomeGenerated, nil
	}

	subject := r.cfg.App.NewsletterName + " - Weekly Digest"
	if !r.emailer.Send(ctx, user.Email, subject, html) {
		// Generation succeeded; only delivery failed. The newsletter
		// stays retrievable from the archive.
		return outcomeError, fmt.Errorf("generated but not sent: %s", user.Email)
	}

	if err := r.store.MarkNewsletterSent(newsletter.ID, time.Now().UTC()); err != nil {
		logger.Error("failed to mark newsletter sent", err, "id", newsletter.ID)
	}
	return outcomeSent, nil
}
