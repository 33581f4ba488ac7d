package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "retro.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE entries (date TEXT PRIMARY KEY, daily_text TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO entries (date, daily_text) VALUES ('2025-01-06', 'a good day')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(backupPath), BackupFilePrefix) {
		t.Errorf("backup name missing prefix: %s", backupPath)
	}
	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	// Backup must hold the data, not just exist
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup: %v", err)
	}
	defer db.Close()
	var text string
	if err := db.QueryRow("SELECT daily_text FROM entries WHERE date = '2025-01-06'").Scan(&text); err != nil {
		t.Fatalf("failed to query backup: %v", err)
	}
	if text != "a good day" {
		t.Errorf("backup data mismatch: %q", text)
	}
}

func TestCreateBackup_MissingStore(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error for missing store")
	}
}

func TestListBackups_NewestFirst(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	// Write two fake backups with known timestamps instead of sleeping
	if err := os.MkdirAll(mgr.BackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"retro-20250101-090000.db", "retro-20250102-090000.db", "not-a-backup.db"} {
		if err := os.WriteFile(filepath.Join(mgr.BackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if !backups[0].Timestamp.After(backups[1].Timestamp) {
		t.Errorf("backups not newest first: %v, %v", backups[0].Timestamp, backups[1].Timestamp)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if err := os.MkdirAll(mgr.BackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	// MaxBackups old files already on disk; the next CreateBackup should
	// push the oldest one out
	for i := 0; i < MaxBackups; i++ {
		name := filepath.Join(mgr.BackupDir(),
			fmt.Sprintf("%s202401%02d-090000.db", BackupFilePrefix, i+1))
		if err := os.WriteFile(name, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", MaxBackups, len(backups))
	}
	oldest := backups[len(backups)-1]
	if strings.Contains(oldest.Path, "20240101") {
		t.Error("oldest backup should have been rotated out")
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	// Mutate the live store after the backup
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE entries SET daily_text = 'changed' WHERE date = '2025-01-06'"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var text string
	if err := db.QueryRow("SELECT daily_text FROM entries WHERE date = '2025-01-06'").Scan(&text); err != nil {
		t.Fatal(err)
	}
	if text != "a good day" {
		t.Errorf("restore did not roll back the change: %q", text)
	}

	// The pre-restore state must itself have been backed up
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) < 2 {
		t.Errorf("expected a pre-restore backup, got %d backups", len(backups))
	}
}

func TestRestoreBackup_MissingFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected error for missing backup file")
	}
}

func TestRestoreBackup_RejectsCorrupt(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	corrupt := filepath.Join(t.TempDir(), "retro-20250101-090000.db")
	if err := os.WriteFile(corrupt, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.RestoreBackup(corrupt); err == nil {
		t.Error("expected error for corrupt backup")
	}
}

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.name }

func TestRestoreBackup_RefusesWithOtherInstance(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	orig := listProcesses
	defer func() { listProcesses = orig }()
	listProcesses = func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: os.Getpid(), name: "retro"},
			fakeProcess{pid: os.Getpid() + 1, name: "retro"},
		}, nil
	}

	err = mgr.RestoreBackup(backupPath)
	if err == nil || !strings.Contains(err.Error(), "another retro process") {
		t.Errorf("expected running-instance refusal, got %v", err)
	}

	// Only our own pid running: restore proceeds
	listProcesses = func() ([]ps.Process, error) {
		return []ps.Process{fakeProcess{pid: os.Getpid(), name: "retro"}}, nil
	}
	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Errorf("restore should proceed when only this process runs: %v", err)
	}
}

func TestJSONStoreBackup(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "retro.json")
	if err := os.WriteFile(jsonPath, []byte(`{"version":1}`), 0600); err != nil {
		t.Fatal(err)
	}
	mgr := NewManager(jsonPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasSuffix(backupPath, ".json") {
		t.Errorf("JSON store backup should keep the .json suffix: %s", backupPath)
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"version":1}` {
		t.Errorf("backup content mismatch: %s", data)
	}
}
