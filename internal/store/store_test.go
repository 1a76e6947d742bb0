package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reactome/doi-suggester/internal/engine"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q, want %q", s.Driver(), DriverSQLite)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	// Open multiple times
	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("final OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	// Verify schema is intact
	tables := []string{
		"DatabaseObject", "ReactionlikeEvent", "Pathway_2_hasEvent",
		"Event_2_authored", "Event_2_reviewed", "Event_2_revised",
		"Event_2_inferredFrom", "DatabaseObject_2_modified",
		"InstanceEdit", "InstanceEdit_2_author", "Person",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	_, err := OpenSQLite(context.Background(), "/nonexistent/dir/test.db")
	if err == nil {
		t.Fatal("expected error for invalid path, got nil")
	}
	if !errors.Is(err, engine.ErrSnapshotUnavailable) {
		t.Errorf("error should wrap ErrSnapshotUnavailable: %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres", DSN: "x"})
	if !engine.IsFatal(err) {
		t.Errorf("unsupported driver should be fatal, got %v", err)
	}
}

func TestOpen_UnreachableMySQL(t *testing.T) {
	// Port 1 on localhost refuses connections.
	_, err := Open(context.Background(), Config{
		Driver: DriverMySQL,
		DSN:    "user:pass@tcp(127.0.0.1:1)/release?timeout=1s",
	})
	if !engine.IsFatal(err) {
		t.Errorf("unreachable mysql should be fatal, got %v", err)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

// Pragma tests

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestWrite_ReadOnlyMySQL(t *testing.T) {
	s := &Store{driver: DriverMySQL}

	err := s.WriteHasEvent(context.Background(), 1, 2, 0)
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("WriteHasEvent on mysql store = %v, want ErrReadOnly", err)
	}
}
