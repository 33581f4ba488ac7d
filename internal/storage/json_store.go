package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ahollis/retro/internal/dateutil"
	"github.com/ahollis/retro/internal/models"
)

// jsonFile is the on-disk shape of the JSON backend.
type jsonFile struct {
	Version   int                       `json:"version"`
	Entries   map[string]models.Entry   `json:"entries"`   // keyed by date
	Summaries map[string]models.Summary `json:"summaries"` // keyed by id
}

// JSONStore is a plain-file Provider used for debugging and portable
// single-file journals. The SQLite store is the default backend.
type JSONStore struct {
	path  string
	store *jsonFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &jsonFile{
		Version:   1,
		Entries:   make(map[string]models.Entry),
		Summaries: make(map[string]models.Summary),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	if s.store != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'retro init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &jsonFile{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Entries == nil {
		s.store.Entries = make(map[string]models.Entry)
	}
	if s.store.Summaries == nil {
		s.store.Summaries = make(map[string]models.Summary)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) SaveEntry(entry models.Entry) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	now := time.Now().UTC()
	if existing, ok := s.store.Entries[entry.Date]; ok {
		entry.CreatedAt = existing.CreatedAt
	} else {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	s.store.Entries[entry.Date] = entry
	return s.save()
}

func (s *JSONStore) GetEntry(date string) (models.Entry, error) {
	if s.store == nil {
		return models.Entry{}, fmt.Errorf("storage not loaded")
	}

	entry, ok := s.store.Entries[date]
	if !ok {
		return models.Entry{}, fmt.Errorf("entry for %s: %w", date, ErrNotFound)
	}
	return entry, nil
}

func (s *JSONStore) GetAllEntries() ([]models.Entry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	entries := make([]models.Entry, 0, len(s.store.Entries))
	for _, entry := range s.store.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})

	return entries, nil
}

func (s *JSONStore) GetEntriesForWeek(weekStart string) ([]models.Entry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	start, err := dateutil.ParseDate(weekStart)
	if err != nil {
		return nil, err
	}
	end := dateutil.FormatDate(dateutil.AddDays(start, 6))

	var entries []models.Entry
	for date, entry := range s.store.Entries {
		if date >= weekStart && date <= end {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})

	return entries, nil
}

func (s *JSONStore) DeleteEntry(date string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Entries[date]; !ok {
		return fmt.Errorf("entry for %s: %w", date, ErrNotFound)
	}

	delete(s.store.Entries, date)
	return s.save()
}

func (s *JSONStore) SaveSummary(summary models.Summary) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("storage not loaded")
	}

	for _, existing := range s.store.Summaries {
		if existing.Type == summary.Type && existing.StartDate == summary.StartDate {
			return "", fmt.Errorf("%s summary starting %s: %w",
				summary.Type, summary.StartDate, ErrSummaryExists)
		}
	}

	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	summary.CreatedAt = time.Now().UTC()

	s.store.Summaries[summary.ID] = summary
	if err := s.save(); err != nil {
		return "", err
	}
	return summary.ID, nil
}

func (s *JSONStore) GetSummary(id string) (models.Summary, error) {
	if s.store == nil {
		return models.Summary{}, fmt.Errorf("storage not loaded")
	}

	summary, ok := s.store.Summaries[id]
	if !ok {
		return models.Summary{}, fmt.Errorf("summary %s: %w", id, ErrNotFound)
	}
	return summary, nil
}

func (s *JSONStore) GetSummaries(typ models.SummaryType) ([]models.Summary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	var summaries []models.Summary
	for _, summary := range s.store.Summaries {
		if summary.Type == typ {
			summaries = append(summaries, summary)
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartDate > summaries[j].StartDate
	})

	return summaries, nil
}

func (s *JSONStore) GetWeeklySummariesForMonth(monthStart string) ([]models.Summary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	start, err := dateutil.ParseDate(monthStart)
	if err != nil {
		return nil, err
	}
	monthEnd := dateutil.FormatDate(dateutil.MonthEnd(start))

	var summaries []models.Summary
	for _, summary := range s.store.Summaries {
		if summary.Type == models.SummaryWeekly &&
			summary.StartDate >= monthStart && summary.EndDate <= monthEnd {
			summaries = append(summaries, summary)
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartDate < summaries[j].StartDate
	})

	return summaries, nil
}

func (s *JSONStore) GetMonthlySummariesForYear(year int) ([]models.Summary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	yearStart, yearEnd := dateutil.YearBounds(year)
	startStr := dateutil.FormatDate(yearStart)
	endStr := dateutil.FormatDate(yearEnd)

	var summaries []models.Summary
	for _, summary := range s.store.Summaries {
		if summary.Type == models.SummaryMonthly &&
			summary.StartDate >= startStr && summary.EndDate <= endStr {
			summaries = append(summaries, summary)
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartDate < summaries[j].StartDate
	})

	return summaries, nil
}

func (s *JSONStore) GetSummaryCount(typ models.SummaryType) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("storage not loaded")
	}

	count := 0
	for _, summary := range s.store.Summaries {
		if summary.Type == typ {
			count++
		}
	}
	return count, nil
}

func (s *JSONStore) DeleteSummary(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Summaries[id]; !ok {
		return fmt.Errorf("summary %s: %w", id, ErrNotFound)
	}

	delete(s.store.Summaries, id)
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
