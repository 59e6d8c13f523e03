// Package database provides SQLite-based run history for techtally.
//
// Every count (alone or at the end of a full run) is stored as a run: the
// timestamp, the counted file, the sorted count entries, the per-stage
// results and, for runs that fetched pages, one row per URL outcome. The
// history and compare commands read it back.
//
// The database is a single file, techtally.db, in the XDG data directory.
// modernc.org/sqlite is used so the binary stays CGO-free.
package database
