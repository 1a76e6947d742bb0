// Package snapshot provides engine.Snapshot implementations that do not
// need a database.
//
// Memory holds a whole snapshot in maps and backs the fixture harness and
// tests. Cached decorates any snapshot with a read-through cache so that
// ancestors shared by many leaves are fetched once per pass. Faulty injects
// fetch errors for fault-isolation tests.
package snapshot
