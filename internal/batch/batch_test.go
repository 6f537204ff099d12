package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/content"
	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/curator"
	"github.com/seanmtli/personalnewsletter/internal/email"
	"github.com/seanmtli/personalnewsletter/internal/screenshot"
	"github.com/seanmtli/personalnewsletter/internal/store"
)

func newTestRunner(t *testing.T, providers ...content.Provider) (*Runner, *store.Store) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{App: config.App{NewsletterName: "Test Digest"}}
	cur := curator.NewWithProviders(cfg, screenshot.NewService(config.Screenshot{}), providers...)
	// No email provider configured, so every real send attempt fails.
	em := email.NewEmailer(config.Email{})

	return New(cfg, st, cur, em), st
}

func addUser(t *testing.T, st *store.Store, emailAddr string, interests ...string) core.User {
	t.Helper()

	user, err := st.CreateUser(emailAddr)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	prefs := make([]core.Preference, 0, len(interests))
	for _, name := range interests {
		prefs = append(prefs, core.Preference{InterestType: "team", InterestName: name})
	}
	if err := st.ReplacePreferences(user.ID, prefs); err != nil {
		t.Fatalf("Failed to set preferences: %v", err)
	}
	return user
}

func TestRunDryRunPersistsWithoutSending(t *testing.T) {
	runner, st := newTestRunner(t, content.NewMockProvider())
	user := addUser(t, st, "fan@example.com", "Lakers")

	summary, err := runner.Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 || summary.Generated != 1 || summary.Errors != 0 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	// Dry-run users are never reported as delivered.
	if summary.Sent != 0 {
		t.Errorf("Expected no sends in a dry run, got %d", summary.Sent)
	}

	newsletters, err := st.ListNewsletters(user.ID)
	if err != nil {
		t.Fatalf("Failed to list newsletters: %v", err)
	}
	if len(newsletters) != 1 {
		t.Fatalf("Expected 1 persisted newsletter, got %d", len(newsletters))
	}
	if newsletters[0].SentAt != nil {
		t.Error("Expected dry-run newsletter to stay unsent")
	}
}

func TestRunSkipsUserWithoutPreferences(t *testing.T) {
	runner, st := newTestRunner(t, content.NewMockProvider())
	addUser(t, st, "empty@example.com")

	summary, err := runner.Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 || summary.Skipped != 1 || summary.Sent != 0 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}

func TestRunSkipsUserWithNoContent(t *testing.T) {
	failing := content.NewMockProvider()
	failing.SetError(errors.New("provider down"))

	runner, st := newTestRunner(t, failing)
	addUser(t, st, "fan@example.com", "Lakers")

	summary, err := runner.Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Skipped != 1 {
		t.Errorf("Expected user skipped when no content found, got %+v", summary)
	}
}

func TestRunDeliveryFailureCountsAsError(t *testing.T) {
	runner, st := newTestRunner(t, content.NewMockProvider())
	user := addUser(t, st, "fan@example.com", "Lakers")

	summary, err := runner.Run(context.Background(), "", false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Errors != 1 || summary.Sent != 0 {
		t.Errorf("Expected a delivery error, got %+v", summary)
	}

	// The newsletter survives the failed send.
	newsletters, err := st.ListNewsletters(user.ID)
	if err != nil {
		t.Fatalf("Failed to list newsletters: %v", err)
	}
	if len(newsletters) != 1 {
		t.Errorf("Expected the generated newsletter persisted, got %d", len(newsletters))
	}
}

func TestRunTargetUser(t *testing.T) {
	runner, st := newTestRunner(t, content.NewMockProvider())
	addUser(t, st, "one@example.com", "Lakers")
	addUser(t, st, "two@example.com", "Chiefs")

	summary, err := runner.Run(context.Background(), "one@example.com", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 {
		t.Errorf("Expected only the target user processed, got %+v", summary)
	}
}

func TestRunTargetUserNotFound(t *testing.T) {
	runner, _ := newTestRunner(t, content.NewMockProvider())

	_, err := runner.Run(context.Background(), "missing@example.com", true)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunContinuesPastFailingUser(t *testing.T) {
	runner, st := newTestRunner(t, content.NewMockProvider())
	addUser(t, st, "empty@example.com")
	addUser(t, st, "fan@example.com", "Lakers")

	summary, err := runner.Run(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 2 || summary.Generated != 1 || summary.Skipped != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
