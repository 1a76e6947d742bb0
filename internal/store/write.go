package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reactome/doi-suggester/internal/ir"
)

// Write methods seed SQLite snapshots. Every insert uses ON CONFLICT DO
// NOTHING, so writing the same fixture twice is a no-op. MySQL stores
// return ErrReadOnly.

// WriteEntity inserts an event. Entities of class ReactionlikeEvent are also
// registered as leaves.
func (s *Store) WriteEntity(ctx context.Context, e ir.Entity) error {
	return s.inTx(ctx, "write entity", func(tx *sql.Tx) error {
		if err := insertObject(ctx, tx, e.ID, e.Class, e.DisplayName); err != nil {
			return err
		}
		if e.Class != ir.ClassReactionlikeEvent {
			return nil
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ReactionlikeEvent (DB_ID) VALUES (?)
			ON CONFLICT DO NOTHING
		`, int64(e.ID))
		return err
	})
}

// WritePerson inserts a person with their project affiliation.
func (s *Store) WritePerson(ctx context.Context, a ir.Author) error {
	return s.inTx(ctx, "write person", func(tx *sql.Tx) error {
		return insertPerson(ctx, tx, a)
	})
}

// WriteEdit inserts an instance edit together with its authors.
func (s *Store) WriteEdit(ctx context.Context, rec ir.EditRecord) error {
	return s.inTx(ctx, "write edit", func(tx *sql.Tx) error {
		if err := insertObject(ctx, tx, rec.ID, "InstanceEdit", rec.DisplayName); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO InstanceEdit (DB_ID, dateTime) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, int64(rec.ID), nullString(rec.DateTime)); err != nil {
			return err
		}
		for rank, a := range rec.Authors {
			if err := insertPerson(ctx, tx, a); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO InstanceEdit_2_author (DB_ID, author, author_rank) VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING
			`, int64(rec.ID), int64(a.ID), rank); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteHasEvent records that parent contains child at rank.
func (s *Store) WriteHasEvent(ctx context.Context, parent, child ir.ID, rank int) error {
	return s.exec(ctx, "write hasEvent", `
		INSERT INTO Pathway_2_hasEvent (DB_ID, hasEvent, hasEvent_rank) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, int64(parent), int64(child), rank)
}

// WriteSequence sets one edit sequence of id. The edits must be written
// separately with WriteEdit.
func (s *Store) WriteSequence(ctx context.Context, id ir.ID, kind ir.EditKind, editIDs []ir.ID) error {
	if !kind.Valid() {
		return fmt.Errorf("write sequence: unknown edit kind %q", kind)
	}
	query := fmt.Sprintf(`
		INSERT INTO Event_2_%[1]s (DB_ID, %[1]s, %[1]s_rank) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, kind)
	return s.inTx(ctx, "write sequence", func(tx *sql.Tx) error {
		for rank, eid := range editIDs {
			if _, err := tx.ExecContext(ctx, query, int64(id), int64(eid), rank); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteInferredFrom records that id was inferred from source.
func (s *Store) WriteInferredFrom(ctx context.Context, id, source ir.ID) error {
	return s.exec(ctx, "write inferredFrom", `
		INSERT INTO Event_2_inferredFrom (DB_ID, inferredFrom) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, int64(id), int64(source))
}

// WriteModified sets the modification edits of id, oldest first.
func (s *Store) WriteModified(ctx context.Context, id ir.ID, editIDs []ir.ID) error {
	return s.inTx(ctx, "write modified", func(tx *sql.Tx) error {
		for rank, eid := range editIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO DatabaseObject_2_modified (DB_ID, modified, modified_rank) VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING
			`, int64(id), int64(eid), rank); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) writable(op string) error {
	if s.driver != DriverSQLite {
		return fmt.Errorf("%s: %w", op, ErrReadOnly)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	if err := s.writable(op); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	if err := s.writable(op); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func insertObject(ctx context.Context, tx *sql.Tx, id ir.ID, class, name string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO DatabaseObject (DB_ID, _class, _displayName) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, int64(id), class, nullString(name))
	return err
}

func insertPerson(ctx context.Context, tx *sql.Tx, a ir.Author) error {
	if err := insertObject(ctx, tx, a.ID, "Person", a.DisplayName); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO Person (DB_ID, project) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, int64(a.ID), nullString(a.Affiliation))
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Counts returns the number of rows in each table, for seeding reports.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	tables := []string{
		"DatabaseObject", "ReactionlikeEvent", "Pathway_2_hasEvent",
		"Event_2_authored", "Event_2_reviewed", "Event_2_revised",
		"Event_2_inferredFrom", "DatabaseObject_2_modified",
		"InstanceEdit", "InstanceEdit_2_author", "Person",
	}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
