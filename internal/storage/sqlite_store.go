package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/migration"
	"github.com/ahollis/retro/internal/models"
	_ "modernc.org/sqlite"
)

// baselineSchema is the schema a fresh database gets when no migrations
// directory is shipped alongside the binary. It matches 001_init.sql; all
// statements are idempotent so applying both is harmless.
const baselineSchema = `
CREATE TABLE IF NOT EXISTS entries (
	date TEXT PRIMARY KEY,
	daily_text TEXT NOT NULL DEFAULT '',
	productivity INTEGER NOT NULL,
	mood INTEGER NOT NULL,
	energy INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entry_items (
	entry_date TEXT NOT NULL REFERENCES entries(date) ON DELETE CASCADE,
	kind TEXT NOT NULL CHECK (kind IN ('accomplishment', 'learning', 'gratitude')),
	position INTEGER NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (entry_date, kind, position)
);

CREATE TABLE IF NOT EXISTS summaries (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK (type IN ('weekly', 'monthly', 'yearly')),
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	content TEXT NOT NULL,
	insights TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uniq_summary_period ON summaries (type, start_date);
`

const (
	itemKindAccomplishment = "accomplishment"
	itemKindLearning       = "learning"
	itemKindGratitude      = "gratitude"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := s.ensureSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'retro init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Validate schema version only when a migrations directory is shipped;
	// an already-initialized database remains usable without one.
	if migrationsPath, ok := migration.FindMigrationsDir(); ok {
		runner := migration.NewRunner(s.db, migrationsPath)
		if err := runner.ValidateVersion(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ensureSchema applies the embedded baseline, then any shipped file
// migrations beyond it.
func (s *SQLiteStore) ensureSchema() error {
	if _, err := s.db.Exec(baselineSchema); err != nil {
		return err
	}

	migrationsPath, ok := migration.FindMigrationsDir()
	if !ok {
		// No migrations shipped; record the baseline version directly.
		runner := migration.NewRunner(s.db, "")
		version, err := runner.GetCurrentVersion()
		if err != nil {
			return err
		}
		if version < 1 {
			return runner.SetVersion(1)
		}
		return nil
	}

	runner := migration.NewRunner(s.db, migrationsPath)
	version, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	if version < 1 {
		// Baseline DDL already applied above; mark it so 001 is not re-run.
		if err := runner.SetVersion(1); err != nil {
			return err
		}
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	return err
}

func (s *SQLiteStore) SaveEntry(entry models.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	// Upsert keyed by date; created_at survives overwrites.
	_, err = tx.Exec(`
		INSERT INTO entries (date, daily_text, productivity, mood, energy, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			daily_text = excluded.daily_text,
			productivity = excluded.productivity,
			mood = excluded.mood,
			energy = excluded.energy,
			updated_at = excluded.updated_at`,
		entry.Date, entry.DailyText,
		entry.Ratings.Productivity, entry.Ratings.Mood, entry.Ratings.Energy,
		now, now,
	)
	if err != nil {
		return err
	}

	// List items are replaced wholesale inside the transaction so a crash
	// mid-write can never leave a partial list.
	if _, err := tx.Exec("DELETE FROM entry_items WHERE entry_date = ?", entry.Date); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entry_items (entry_date, kind, position, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	insertItems := func(kind string, items []string) error {
		for i, item := range items {
			if _, err := stmt.Exec(entry.Date, kind, i, item); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insertItems(itemKindAccomplishment, entry.Accomplishments); err != nil {
		return err
	}
	if err := insertItems(itemKindLearning, entry.ThingsLearned); err != nil {
		return err
	}
	if err := insertItems(itemKindGratitude, entry.ThingsGrateful); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetEntry(date string) (models.Entry, error) {
	row := s.db.QueryRow(`
		SELECT date, daily_text, productivity, mood, energy, created_at, updated_at
		FROM entries WHERE date = ?`, date)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Entry{}, fmt.Errorf("entry for %s: %w", date, ErrNotFound)
		}
		return models.Entry{}, err
	}

	if err := s.loadEntryItems(&entry); err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

func (s *SQLiteStore) GetAllEntries() ([]models.Entry, error) {
	return s.queryEntries(`
		SELECT date, daily_text, productivity, mood, energy, created_at, updated_at
		FROM entries ORDER BY date ASC`)
}

func (s *SQLiteStore) GetEntriesForWeek(weekStart string) ([]models.Entry, error) {
	start, err := dateutil.ParseDate(weekStart)
	if err != nil {
		return nil, err
	}
	end := dateutil.FormatDate(dateutil.AddDays(start, 6))

	return s.queryEntries(`
		SELECT date, daily_text, productivity, mood, energy, created_at, updated_at
		FROM entries WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		weekStart, end)
}

func (s *SQLiteStore) queryEntries(query string, args ...any) ([]models.Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		if err := s.loadEntryItems(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var e models.Entry
	var createdAt, updatedAt string

	err := row.Scan(
		&e.Date, &e.DailyText,
		&e.Ratings.Productivity, &e.Ratings.Mood, &e.Ratings.Energy,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return models.Entry{}, err
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		e.UpdatedAt = t
	}
	return e, nil
}

func (s *SQLiteStore) loadEntryItems(entry *models.Entry) error {
	rows, err := s.db.Query(`
		SELECT kind, content FROM entry_items
		WHERE entry_date = ? ORDER BY kind, position`, entry.Date)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, content string
		if err := rows.Scan(&kind, &content); err != nil {
			return err
		}
		switch kind {
		case itemKindAccomplishment:
			entry.Accomplishments = append(entry.Accomplishments, content)
		case itemKindLearning:
			entry.ThingsLearned = append(entry.ThingsLearned, content)
		case itemKindGratitude:
			entry.ThingsGrateful = append(entry.ThingsGrateful, content)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) DeleteEntry(date string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entry_items WHERE entry_date = ?", date); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM entries WHERE date = ?", date)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry for %s: %w", date, ErrNotFound)
	}

	return tx.Commit()
}

func (s *SQLiteStore) SaveSummary(summary models.Summary) (string, error) {
	insightsJSON, err := json.Marshal(summary.Insights)
	if err != nil {
		return "", fmt.Errorf("failed to marshal insights: %w", err)
	}

	id := summary.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.Exec(`
		INSERT INTO summaries (id, type, start_date, end_date, content, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(summary.Type), summary.StartDate, summary.EndDate,
		summary.Content, string(insightsJSON), now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("%s summary starting %s: %w",
				summary.Type, summary.StartDate, ErrSummaryExists)
		}
		return "", err
	}

	return id, nil
}

func (s *SQLiteStore) GetSummary(id string) (models.Summary, error) {
	row := s.db.QueryRow(`
		SELECT id, type, start_date, end_date, content, insights, created_at
		FROM summaries WHERE id = ?`, id)

	summary, err := scanSummary(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Summary{}, fmt.Errorf("summary %s: %w", id, ErrNotFound)
		}
		return models.Summary{}, err
	}
	return summary, nil
}

func (s *SQLiteStore) GetSummaries(typ models.SummaryType) ([]models.Summary, error) {
	return s.querySummaries(`
		SELECT id, type, start_date, end_date, content, insights, created_at
		FROM summaries WHERE type = ? ORDER BY start_date DESC`, string(typ))
}

func (s *SQLiteStore) GetWeeklySummariesForMonth(monthStart string) ([]models.Summary, error) {
	start, err := dateutil.ParseDate(monthStart)
	if err != nil {
		return nil, err
	}
	monthEnd := dateutil.FormatDate(dateutil.MonthEnd(start))

	return s.querySummaries(`
		SELECT id, type, start_date, end_date, content, insights, created_at
		FROM summaries
		WHERE type = ? AND start_date >= ? AND end_date <= ?
		ORDER BY start_date ASC`,
		string(models.SummaryWeekly), monthStart, monthEnd)
}

func (s *SQLiteStore) GetMonthlySummariesForYear(year int) ([]models.Summary, error) {
	yearStart, yearEnd := dateutil.YearBounds(year)

	return s.querySummaries(`
		SELECT id, type, start_date, end_date, content, insights, created_at
		FROM summaries
		WHERE type = ? AND start_date >= ? AND end_date <= ?
		ORDER BY start_date ASC`,
		string(models.SummaryMonthly),
		dateutil.FormatDate(yearStart), dateutil.FormatDate(yearEnd))
}

func (s *SQLiteStore) querySummaries(query string, args ...any) ([]models.Summary, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func scanSummary(row rowScanner) (models.Summary, error) {
	var s models.Summary
	var typ, insightsJSON, createdAt string

	err := row.Scan(&s.ID, &typ, &s.StartDate, &s.EndDate, &s.Content, &insightsJSON, &createdAt)
	if err != nil {
		return models.Summary{}, err
	}

	s.Type = models.SummaryType(typ)
	if err := json.Unmarshal([]byte(insightsJSON), &s.Insights); err != nil {
		return models.Summary{}, fmt.Errorf("failed to unmarshal insights for summary %s: %w", s.ID, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		s.CreatedAt = t
	}
	return s, nil
}

func (s *SQLiteStore) GetSummaryCount(typ models.SummaryType) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM summaries WHERE type = ?", string(typ)).Scan(&count)
	return count, err
}

func (s *SQLiteStore) DeleteSummary(id string) error {
	res, err := s.db.Exec("DELETE FROM summaries WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("summary %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
