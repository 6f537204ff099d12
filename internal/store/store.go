// Package store persists users, preferences, and generated newsletters in
// a local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/seanmtli/personalnewsletter/internal/core"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if necessary) the newsletter database in dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "newsletter.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables.
func (s *Store) initialize() error {
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);`

	preferencesTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		interest_type TEXT NOT NULL,
		interest_name TEXT NOT NULL,
		interest_data TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (id)
	);`

	newslettersTable := `
	CREATE TABLE IF NOT EXISTS newsletters (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		content_json TEXT,
		interests_used TEXT,
		provider_used TEXT NOT NULL,
		sent_at DATETIME,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (id)
	);`

	tables := []string{usersTable, preferencesTable, newslettersTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user, or returns the existing one for the email.
func (s *Store) CreateUser(email string) (core.User, error) {
	existing, err := s.GetUserByEmail(email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return core.User{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO users (email, is_active, created_at) VALUES (?, 1, ?)`,
		email, now,
	)
	if err != nil {
		return core.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	return core.User{ID: id, Email: email, IsActive: true, CreatedAt: now}, nil
}

// GetUserByEmail looks a user up by email.
func (s *Store) GetUserByEmail(email string) (core.User, error) {
	row := s.db.QueryRow(
		`SELECT id, email, is_active, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListActiveUsers returns all active users ordered by id.
func (s *Store) ListActiveUsers() ([]core.User, error) {
	rows, err := s.db.Query(
		`SELECT id, email, is_active, created_at FROM users WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListPreferences returns a user's preferences ordered by creation.
func (s *Store) ListPreferences(userID int64) ([]core.Preference, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, interest_type, interest_name, COALESCE(interest_data, ''), created_at
		 FROM preferences WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []core.Preference
	for rows.Next() {
		var p core.Preference
		if err := rows.Scan(&p.ID, &p.UserID, &p.InterestType, &p.InterestName, &p.InterestData, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// ReplacePreferences swaps a user's preference set atomically.
func (s *Store) ReplacePreferences(userID int64, prefs []core.Preference) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM preferences WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range prefs {
		if _, err := tx.Exec(
			`INSERT INTO preferences (user_id, interest_type, interest_name, interest_data, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, p.InterestType, p.InterestName, p.InterestData, now,
		); err != nil {
			return fmt.Errorf("failed to insert preference: %w", err)
		}
	}
	return tx.Commit()
}

// SaveNewsletter persists a rendered newsletter together with its curated
// content, stored verbatim as JSON for later retrieval and audit.
func (s *Store) SaveNewsletter(userID int64, html string, curated core.CuratedNewsletter) (core.Newsletter, error) {
	contentJSON, err := json.Marshal(curated)
	if err != nil {
		return core.Newsletter{}, fmt.Errorf("failed to serialize curated content: %w", err)
	}
	interestsJSON, err := json.Marshal(curated.InterestsUsed)
	if err != nil {
		return core.Newsletter{}, fmt.Errorf("failed to serialize interests: %w", err)
	}

	newsletter := core.Newsletter{
		ID:            uuid.New().String(),
		UserID:        userID,
		Content:       html,
		ContentJSON:   string(contentJSON),
		InterestsUsed: curated.InterestsUsed,
		ProviderUsed:  curated.ProviderUsed,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT INTO newsletters (id, user_id, content, content_json, interests_used, provider_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newsletter.ID, newsletter.UserID, newsletter.Content, newsletter.ContentJSON,
		string(interestsJSON), newsletter.ProviderUsed, newsletter.CreatedAt,
	)
	if err != nil {
		return core.Newsletter{}, fmt.Errorf("failed to insert newsletter: %w", err)
	}
	return newsletter, nil
}

// GetNewsletter fetches one newsletter by id, scoped to a user.
func (s *Store) GetNewsletter(id string, userID int64) (core.Newsletter, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, content, COALESCE(content_json, ''), COALESCE(interests_used, '[]'), provider_used, sent_at, created_at
		 FROM newsletters WHERE id = ? AND user_id = ?`, id, userID)
	return scanNewsletter(row)
}

// ListNewsletters returns a user's newsletters, newest first.
func (s *Store) ListNewsletters(userID int64) ([]core.Newsletter, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, content, COALESCE(content_json, ''), COALESCE(interests_used, '[]'), provider_used, sent_at, created_at
		 FROM newsletters WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query newsletters: %w", err)
	}
	defer rows.Close()

	var newsletters []core.Newsletter
	for rows.Next() {
		n, err := scanNewsletterRows(rows)
		if err != nil {
			return nil, err
		}
		newsletters = append(newsletters, n)
	}
	return newsletters, rows.Err()
}

// MarkNewsletterSent stamps a newsletter's sent_at.
func (s *Store) MarkNewsletterSent(id string, sentAt time.Time) error {
	res, err := s.db.Exec(`UPDATE newsletters SET sent_at = ? WHERE id = ?`, sentAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark newsletter sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func scanNewsletter(row rowScanner) (core.Newsletter, error) {
	n, err := scanNewsletterScanner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Newsletter{}, ErrNotFound
	}
	return n, err
}

func scanNewsletterRows(rows *sql.Rows) (core.Newsletter, error) {
	return scanNewsletterScanner(rows)
}

func scanNewsletterScanner(row rowScanner) (core.Newsletter, error) {
	var n core.Newsletter
	var interestsJSON string
	var sentAt sql.NullTime
	err := row.Scan(&n.ID, &n.UserID, &n.Content, &n.ContentJSON, &interestsJSON, &n.ProviderUsed, &sentAt, &n.CreatedAt)
	if err != nil {
		return core.Newsletter{}, err
	}
	if sentAt.Valid {
		t := sentAt.Time.UTC()
		n.SentAt = &t
	}
	if err := json.Unmarshal([]byte(interestsJSON), &n.InterestsUsed); err != nil {
		n.InterestsUsed = nil
	}
	return n, nil
}
