package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"stockcount/internal"
)

// LastRunKey holds the id of the most recently recorded run.
const LastRunKey = "last_run"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL UNIQUE,
  reportDate TEXT NOT NULL,
  productsSource TEXT,
  scheduleSource TEXT,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  issueCount INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_reportDate ON runs(reportDate);

CREATE TABLE IF NOT EXISTS run_issues (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  tableName TEXT NOT NULL,
  rowNo INTEGER NOT NULL,
  kind TEXT NOT NULL,
  rawValue TEXT,
  message TEXT NOT NULL,
  FOREIGN KEY(runId) REFERENCES runs(runId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(rec internal.RunRecord, timings map[string]float64, issues []internal.RowIssue) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(rec.Counts)

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO runs (runId, reportDate, productsSource, scheduleSource, timingsJson, countsJson, issueCount)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.ReportDate, rec.Products, rec.Schedule, string(timingsJSON), string(countsJSON), len(issues),
	); err != nil {
		return err
	}

	if len(issues) > 0 {
		stmt, err := tx.Prepare(`
INSERT INTO run_issues (runId, tableName, rowNo, kind, rawValue, message)
VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, issue := range issues {
			if _, err := stmt.Exec(rec.RunID, string(issue.Table), issue.RowNo, string(issue.Kind), issue.Value, issue.Message); err != nil {
				return err
			}
		}
	}

	if err := setMetadata(tx, LastRunKey, rec.RunID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, runId, reportDate, COALESCE(productsSource, ''), COALESCE(scheduleSource, ''), countsJson, issueCount, createdAt
FROM runs
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var rec internal.RunRecord
		var countsJSON string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.ReportDate, &rec.Products, &rec.Schedule, &countsJSON, &rec.Issues, &rec.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &rec.Counts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) GetRun(runID string) (*internal.RunRecord, error) {
	var rec internal.RunRecord
	var countsJSON string
	err := d.conn.QueryRow(`
SELECT id, runId, reportDate, COALESCE(productsSource, ''), COALESCE(scheduleSource, ''), countsJson, issueCount, createdAt
FROM runs
WHERE runId = ?`, runID).Scan(&rec.ID, &rec.RunID, &rec.ReportDate, &rec.Products, &rec.Schedule, &countsJSON, &rec.Issues, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(countsJSON), &rec.Counts)
	return &rec, nil
}

func (d *DB) RunIssues(runID string) ([]internal.RowIssue, error) {
	rows, err := d.conn.Query(`
SELECT tableName, rowNo, kind, COALESCE(rawValue, ''), message
FROM run_issues
WHERE runId = ?
ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RowIssue
	for rows.Next() {
		var issue internal.RowIssue
		var table, kind string
		if err := rows.Scan(&table, &issue.RowNo, &kind, &issue.Value, &issue.Message); err != nil {
			return nil, err
		}
		issue.Table = internal.TableKind(table)
		issue.Kind = internal.IssueKind(kind)
		out = append(out, issue)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	return setMetadata(d.conn, key, value)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setMetadata(x execer, key, value string) error {
	_, err := x.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
