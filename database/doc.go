// Package database opens the GORM connection for huddle (SQLite by default,
// PostgreSQL in production), runs auto-migration, and maps database errors
// to AppErrors.
package database
