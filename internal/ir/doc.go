// Package ir provides the shared domain types for the DOI suggester.
//
// This package contains type definitions and identity helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Identity is the Reactome DB_ID (ID). Entities and edit records from two
//     snapshots are related by ID equality only, never by pointer or position.
//   - Display strings (Ref) are for reporting and never used for equality.
//   - All JSON tags use snake_case.
package ir
