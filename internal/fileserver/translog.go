package fileserver

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// TransferEntry is one row of the transfer audit log.
type TransferEntry struct {
	Action     string
	Filename   string
	UserID     string
	Size       int64
	RemoteAddr string
	CreatedAt  time.Time
}

// TransferLog is a durable record of completed uploads and downloads, backed
// by SQLite.
type TransferLog struct {
	db *sql.DB
}

// initSchema applies all SQL files in the embedded migrations directory in
// lexicographical order.
func initSchema(ctx context.Context, db *sql.DB) error {
	return fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, readError := migrationsFS.ReadFile(path)
		if readError != nil {
			return fmt.Errorf("error reading SQL file: %w", readError)
		}

		slog.Info("Running migration", "path", path)
		_, execError := db.ExecContext(ctx, string(content))
		return execError
	})
}

// OpenTransferLog opens (or creates) the SQLite database at path and ensures
// the schema is current.
func OpenTransferLog(ctx context.Context, path string) (*TransferLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &TransferLog{db: db}, nil
}

// Record inserts one transfer row. A zero CreatedAt is filled in with the
// current time.
func (l *TransferLog) Record(ctx context.Context, e TransferEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO transfers(action, filename, user_id, size, remote_addr, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		e.Action, e.Filename, e.UserID, e.Size, e.RemoteAddr, e.CreatedAt,
	)
	return err
}

// Recent returns up to limit transfer rows, newest first.
func (l *TransferLog) Recent(ctx context.Context, limit int) ([]TransferEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT action, filename, user_id, size, remote_addr, created_at FROM transfers ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TransferEntry
	for rows.Next() {
		var e TransferEntry
		if err := rows.Scan(&e.Action, &e.Filename, &e.UserID, &e.Size, &e.RemoteAddr, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the underlying database.
func (l *TransferLog) Close() error {
	return l.db.Close()
}
