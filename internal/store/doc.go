// Package store reads release snapshots from Reactome's relational layout.
//
// The same queries run against a MySQL release database and against SQLite
// slices of one. Only the tables the suggester needs are touched:
//   - DatabaseObject: DB_ID, _class, _displayName of every instance
//   - ReactionlikeEvent: the leaf entities
//   - Pathway_2_hasEvent: containment, read upward by child
//   - Event_2_authored / Event_2_reviewed / Event_2_revised: edit sequences
//   - Event_2_inferredFrom: derived events
//   - DatabaseObject_2_modified: modification markers
//   - InstanceEdit, InstanceEdit_2_author, Person: edits and their authors
//
// # Ordering
//
// Sequences are returned in rank order, leaves and parents in DB_ID order,
// so two reads of the same snapshot are identical.
//
// # Drivers
//
//   - mysql: read-only. The schema is owned by the release pipeline.
//   - sqlite3: WAL mode, schema applied on open, writable for seeding
//     fixtures.
//
// Failure to open or reach a database is reported wrapped in
// engine.ErrSnapshotUnavailable.
package store
