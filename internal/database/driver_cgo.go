//go:build sqlite_cgo

package database

// Build with CGO_ENABLED=1 -tags sqlite_cgo to use the C SQLite library.
import (
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDriverName is the database/sql driver used for DB_DRIVER=sqlite.
const SQLiteDriverName = "sqlite3"
