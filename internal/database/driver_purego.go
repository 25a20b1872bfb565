//go:build !sqlite_cgo

package database

// Pure Go SQLite driver; no C toolchain required.
import (
	_ "modernc.org/sqlite"
)

// SQLiteDriverName is the database/sql driver used for DB_DRIVER=sqlite.
const SQLiteDriverName = "sqlite"
