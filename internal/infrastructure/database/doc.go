// Package database manages the SQLite database backing the accessory
// directory.
//
// It wraps database/sql with lifecycle management (directory creation,
// WAL mode, busy timeout, restrictive file permissions) and a small
// embedded-migration runner. Migration files are registered by the
// top-level migrations package via go:embed.
package database
