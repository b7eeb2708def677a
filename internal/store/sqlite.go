package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ashureev/autostream/internal/domain"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed lead repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		platform TEXT NOT NULL,
		selected_plan TEXT NOT NULL,
		channel_link TEXT,
		captured_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leads_captured_at ON leads(captured_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Capture persists a qualified lead, assigning its id and capture time
// when unset.
func (s *SQLiteStore) Capture(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CapturedAt.IsZero() {
		lead.CapturedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (id, session_id, name, email, platform, selected_plan, channel_link, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.SessionID, lead.Name, lead.Email, lead.Platform, lead.SelectedPlan,
		nullString(lead.ChannelLink), lead.CapturedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// ListLeads returns the most recently captured leads, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context, limit int) ([]*domain.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, name, email, platform, selected_plan, channel_link, captured_at
		FROM leads ORDER BY captured_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		var lead domain.Lead
		var channelLink sql.NullString
		var capturedAt int64
		if err := rows.Scan(&lead.ID, &lead.SessionID, &lead.Name, &lead.Email,
			&lead.Platform, &lead.SelectedPlan, &channelLink, &capturedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		lead.ChannelLink = channelLink.String
		lead.CapturedAt = time.Unix(capturedAt, 0)
		leads = append(leads, &lead)
	}
	return leads, rows.Err()
}

// CountLeads returns the total number of captured leads.
func (s *SQLiteStore) CountLeads(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
