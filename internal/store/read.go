package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reactome/doi-suggester/internal/ir"
)

// Entity returns the instance with the given DB_ID, or nil if absent.
func (s *Store) Entity(ctx context.Context, id ir.ID) (*ir.Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT DB_ID, _class, _displayName
		FROM DatabaseObject
		WHERE DB_ID = ?
	`, int64(id))

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query entity %d: %w", id, err)
	}
	return &e, nil
}

// Parents returns the pathways whose hasEvent contains id, ordered by DB_ID.
func (s *Store) Parents(ctx context.Context, id ir.ID) ([]ir.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.DB_ID, d._class, d._displayName
		FROM Pathway_2_hasEvent h
		JOIN DatabaseObject d ON d.DB_ID = h.DB_ID
		WHERE h.hasEvent = ?
		ORDER BY d.DB_ID ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query parents of %d: %w", id, err)
	}
	return collectEntities(rows, "parents")
}

// LeafEntities returns every ReactionlikeEvent ordered by DB_ID.
func (s *Store) LeafEntities(ctx context.Context) ([]ir.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.DB_ID, d._class, d._displayName
		FROM ReactionlikeEvent r
		JOIN DatabaseObject d ON d.DB_ID = r.DB_ID
		ORDER BY d.DB_ID ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leaf entities: %w", err)
	}
	return collectEntities(rows, "leaf entities")
}

// EditSequence returns one edit sequence of id in rank order, authors
// included in author rank order.
func (s *Store) EditSequence(ctx context.Context, id ir.ID, kind ir.EditKind) ([]ir.EditRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown edit kind %q", kind)
	}

	// Table and column names come from the closed EditKind set.
	query := fmt.Sprintf(`
		SELECT e.%[1]s_rank, e.%[1]s, eo._displayName, ie.dateTime,
		       a.author, po._displayName, p.project
		FROM Event_2_%[1]s e
		JOIN DatabaseObject eo ON eo.DB_ID = e.%[1]s
		LEFT JOIN InstanceEdit ie ON ie.DB_ID = e.%[1]s
		LEFT JOIN InstanceEdit_2_author a ON a.DB_ID = e.%[1]s
		LEFT JOIN DatabaseObject po ON po.DB_ID = a.author
		LEFT JOIN Person p ON p.DB_ID = a.author
		WHERE e.DB_ID = ?
		ORDER BY e.%[1]s_rank ASC, a.author_rank ASC
	`, kind)

	rows, err := s.db.QueryContext(ctx, query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query %s edits of %d: %w", kind, id, err)
	}
	defer rows.Close()

	var (
		records  []ir.EditRecord
		lastRank = int64(-1)
	)
	for rows.Next() {
		var (
			rank        int64
			editID      int64
			editName    sql.NullString
			dateTime    sql.NullString
			authorID    sql.NullInt64
			authorName  sql.NullString
			affiliation sql.NullString
		)
		if err := rows.Scan(&rank, &editID, &editName, &dateTime, &authorID, &authorName, &affiliation); err != nil {
			return nil, fmt.Errorf("scan %s edit: %w", kind, err)
		}

		// One row per (edit, author); a new rank starts a new record.
		if rank != lastRank {
			records = append(records, ir.EditRecord{
				ID:          ir.ID(editID),
				DisplayName: editName.String,
				DateTime:    dateTime.String,
			})
			lastRank = rank
		}
		if authorID.Valid {
			cur := &records[len(records)-1]
			cur.Authors = append(cur.Authors, ir.Author{
				ID:          ir.ID(authorID.Int64),
				DisplayName: authorName.String,
				Affiliation: affiliation.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s edits: %w", kind, err)
	}

	return records, nil
}

// IsInferred reports whether any event was inferred from id. This matches
// the release pipeline's referer check on inferredFrom.
func (s *Store) IsInferred(ctx context.Context, id ir.ID) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM Event_2_inferredFrom
		WHERE inferredFrom = ?
	`, int64(id)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query inferred flag of %d: %w", id, err)
	}
	return n > 0, nil
}

// LastModified returns the highest-ranked modification edit of id, or nil.
func (s *Store) LastModified(ctx context.Context, id ir.ID) (*ir.EditRecord, error) {
	var (
		editID   int64
		name     sql.NullString
		dateTime sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT m.modified, o._displayName, ie.dateTime
		FROM DatabaseObject_2_modified m
		JOIN DatabaseObject o ON o.DB_ID = m.modified
		LEFT JOIN InstanceEdit ie ON ie.DB_ID = m.modified
		WHERE m.DB_ID = ?
		ORDER BY m.modified_rank DESC
		LIMIT 1
	`, int64(id)).Scan(&editID, &name, &dateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last modified of %d: %w", id, err)
	}
	return &ir.EditRecord{
		ID:          ir.ID(editID),
		DisplayName: name.String,
		DateTime:    dateTime.String,
	}, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (ir.Entity, error) {
	var (
		id    int64
		class string
		name  sql.NullString
	)
	if err := row.Scan(&id, &class, &name); err != nil {
		return ir.Entity{}, err
	}
	return ir.Entity{ID: ir.ID(id), Class: class, DisplayName: name.String}, nil
}

func collectEntities(rows *sql.Rows, what string) ([]ir.Entity, error) {
	defer rows.Close()

	var out []ir.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
