// Package migration applies numbered SQL migration files to the journal
// database and tracks the applied version in a schema_version table.
package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// EnvMigrationsPath overrides migrations directory discovery when set.
const EnvMigrationsPath = "RETRO_MIGRATIONS_PATH"

// Runner applies pending migrations from a directory of NNN_name.sql files.
type Runner struct {
	db   *sql.DB
	path string
}

// Migration is one parsed migration file.
type Migration struct {
	Version int
	Name    string
	Path    string
}

func NewRunner(db *sql.DB, migrationsPath string) *Runner {
	return &Runner{
		db:   db,
		path: migrationsPath,
	}
}

// FindMigrationsDir locates the migrations directory, checking the
// environment override first, then paths relative to the working directory
// and the executable. Returns false when no directory is found; callers fall
// back to the embedded baseline schema.
func FindMigrationsDir() (string, bool) {
	if envPath := os.Getenv(EnvMigrationsPath); envPath != "" {
		if absPath, err := filepath.Abs(envPath); err == nil {
			if info, err := os.Stat(absPath); err == nil && info.IsDir() {
				return absPath, true
			}
		}
	}

	paths := []string{
		"migrations",
		"../migrations",
		filepath.Join(filepath.Dir(os.Args[0]), "migrations"),
		filepath.Join(filepath.Dir(os.Args[0]), "..", "migrations"),
	}
	for _, path := range paths {
		if absPath, err := filepath.Abs(path); err == nil {
			if info, err := os.Stat(absPath); err == nil && info.IsDir() {
				return absPath, true
			}
		}
	}
	return "", false
}

func (r *Runner) ensureVersionTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version INTEGER NOT NULL
		)`)
	return err
}

// GetCurrentVersion returns the applied schema version, 0 for a fresh
// database.
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.ensureVersionTable(); err != nil {
		return 0, err
	}

	var version int
	err := r.db.QueryRow("SELECT version FROM schema_version WHERE id = 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// SetVersion records the schema version without applying anything.
func (r *Runner) SetVersion(version int) error {
	if err := r.ensureVersionTable(); err != nil {
		return err
	}
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO schema_version (id, version) VALUES (1, ?)", version)
	return err
}

// ReadMigrationFiles lists the migration files in the runner's directory,
// sorted by version. File names must look like 001_init.sql.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	files, err := os.ReadDir(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %q: %w", r.path, err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		name := strings.TrimSuffix(file.Name(), ".sql")
		idx := strings.Index(name, "_")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid migration file name: %s", file.Name())
		}
		version, err := strconv.Atoi(name[:idx])
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", file.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    name[idx+1:],
			Path:    filepath.Join(r.path, file.Name()),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// ApplyMigrations applies every migration file with a version greater than
// the current one, each inside its own transaction, and returns how many
// were applied. progress is called once per applied migration and may be nil.
func (r *Runner) ApplyMigrations(progress func(msg string)) (int, error) {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return 0, err
	}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		content, err := os.ReadFile(m.Path)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", m.Path, err)
		}

		tx, err := r.db.Begin()
		if err != nil {
			return applied, err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %03d_%s failed: %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO schema_version (id, version) VALUES (1, ?)", m.Version); err != nil {
			tx.Rollback()
			return applied, err
		}
		if err := tx.Commit(); err != nil {
			return applied, err
		}

		if progress != nil {
			progress(fmt.Sprintf("Applied migration %03d_%s", m.Version, m.Name))
		}
		applied++
	}

	return applied, nil
}

// ValidateVersion fails when the database is newer or older than the latest
// shipped migration.
func (r *Runner) ValidateVersion() error {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return err
	}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		return nil
	}

	latest := migrations[len(migrations)-1].Version
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("database schema version %d is behind %d, run 'retro init' to migrate", current, latest)
	}
	return nil
}
