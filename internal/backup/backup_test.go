package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "solace.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE sessions (id TEXT PRIMARY KEY, activity_id TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO sessions VALUES ('s1', 'breathing'), ('s2', 'mindfulness')`); err != nil {
		t.Fatalf("failed to insert rows: %v", err)
	}
	return dbPath
}

func countSessions(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		t.Fatalf("failed to count sessions in %s: %v", path, err)
	}
	return n
}

// stepClock returns a clock that advances one minute per call
func stepClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written to %s, want directory %s", path, mgr.Dir())
	}
	if got := countSessions(t, path); got != 2 {
		t.Errorf("backup has %d sessions, want 2", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected an error backing up a missing database")
	}
}

func TestRotationKeepsNewest(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	mgr.now = stepClock(start)

	for i := 0; i < MaxBackups+3; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	all, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != MaxBackups {
		t.Fatalf("kept %d backups, want %d", len(all), MaxBackups)
	}
	newest := start.Add(time.Duration(MaxBackups+2) * time.Minute)
	if !all[0].Timestamp.Equal(newest) {
		t.Errorf("newest backup = %v, want %v", all[0].Timestamp, newest)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
}

func TestSameSecondNamesAreUnique(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatal(err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	all, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("listed %d backups, want 3", len(all))
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if _, err := mgr.Create(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mgr.Dir(), "solace-garbage.db"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	all, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("listed %d backups, want 1", len(all))
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "solace.db"))
	all, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no backups, got %d", len(all))
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = stepClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM sessions"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	previous, err := mgr.Restore(snapshot)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := countSessions(t, dbPath); got != 2 {
		t.Errorf("restored database has %d sessions, want 2", got)
	}
	if previous == "" {
		t.Fatal("expected the pre-restore database to be saved")
	}
	if got := countSessions(t, previous); got != 0 {
		t.Errorf("pre-restore backup has %d sessions, want 0", got)
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bad := filepath.Join(t.TempDir(), "bad.db")
	if err := os.WriteFile(bad, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bad); err == nil {
		t.Fatal("expected an error restoring a corrupt backup")
	}
	if got := countSessions(t, dbPath); got != 2 {
		t.Errorf("database changed after failed restore: %d sessions", got)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	path, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	got, err := mgr.Resolve(filepath.Base(path))
	if err != nil {
		t.Fatalf("Resolve by name failed: %v", err)
	}
	if got != path {
		t.Errorf("Resolve = %s, want %s", got, path)
	}

	if got, err := mgr.Resolve(path); err != nil || got != path {
		t.Errorf("Resolve absolute = %s, %v", got, err)
	}

	if _, err := mgr.Resolve("solace-19990101-000000.db"); err == nil {
		t.Error("expected an error for a missing backup")
	}
}
