package storage

import (
	"errors"

	"github.com/ahollis/retro/internal/models"
)

var (
	// ErrNotFound is returned when a requested entry or summary does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSummaryExists is returned by SaveSummary when a summary for the same
	// (type, start_date) period is already stored. The scanner's existence
	// check and the save are separate calls with nothing atomic between them,
	// so the unique index is the backstop; callers treat this as "someone
	// else already generated this period", not as a failure.
	ErrSummaryExists = errors.New("summary already exists for period")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Entries
	SaveEntry(models.Entry) error // upsert keyed by date, last write wins
	GetEntry(date string) (models.Entry, error)
	GetAllEntries() ([]models.Entry, error) // ascending by date
	GetEntriesForWeek(weekStart string) ([]models.Entry, error)
	DeleteEntry(date string) error

	// Summaries
	SaveSummary(models.Summary) (string, error) // insert-only; assigns and returns the id
	GetSummary(id string) (models.Summary, error)
	GetSummaries(typ models.SummaryType) ([]models.Summary, error) // descending by start_date
	GetWeeklySummariesForMonth(monthStart string) ([]models.Summary, error)
	GetMonthlySummariesForYear(year int) ([]models.Summary, error)
	GetSummaryCount(typ models.SummaryType) (int, error)
	DeleteSummary(id string) error

	// Utils
	GetConfigPath() string
}
