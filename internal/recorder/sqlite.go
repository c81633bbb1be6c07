package recorder

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteRecorder persists fetch history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return &SQLiteRecorder{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_history
		(timestamp, request_id, path, outcome, status_code, points, duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RequestID, evt.Path, evt.Outcome,
		evt.StatusCode, evt.Points, evt.Duration.Milliseconds(), evt.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordCatalogRefresh(evt *CatalogRefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO catalog_refreshes (timestamp, source, assets, error) VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Source, evt.Assets, evt.Err,
	)
	return err
}

// FetchRow is a stored fetch event.
type FetchRow struct {
	Time time.Time
	FetchEvent
}

// RecentFetches returns up to limit fetch events, newest first.
func (r *SQLiteRecorder) RecentFetches(limit int) ([]FetchRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, request_id, path, outcome, status_code, points, duration_ms, error
		FROM fetch_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetch history: %w", err)
	}
	defer rows.Close()

	var out []FetchRow
	for rows.Next() {
		var (
			row        FetchRow
			ts, ms     int64
			errText    sql.NullString
			statusCode sql.NullInt64
			points     sql.NullInt64
		)
		if err := rows.Scan(&ts, &row.RequestID, &row.Path, &row.Outcome, &statusCode, &points, &ms, &errText); err != nil {
			return nil, fmt.Errorf("scan fetch history: %w", err)
		}
		row.Time = time.Unix(ts, 0)
		row.StatusCode = int(statusCode.Int64)
		row.Points = int(points.Int64)
		row.Duration = time.Duration(ms) * time.Millisecond
		row.Err = errText.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
