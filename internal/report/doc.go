// Package report renders a suggestion pass for people and downstream tools.
//
// Formats:
//   - CSV: one row per (ancestor, entity) with the entity's edits, the file
//     curators act on.
//   - Summary: one tab-separated row per ancestor with counts and the
//     ancestor's last modification.
//   - Table: the summary as a terminal table.
//   - View: a JSON-friendly struct for --format json.
//
// Rows are always ordered by ancestor id, then entity id.
package report
