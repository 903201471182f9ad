// Package index provides the live, queryable view of the browsing
// history: a keyed table in an in-memory SQLite database where the last
// write for a URL wins. It holds no durable state; the append log owns
// persistence.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/retrace/internal/history"
)

// Table is the in-memory history table, keyed by URL.
type Table struct {
	db *sql.DB

	upsert *sql.Stmt
	get    *sql.Stmt
}

// NewTable opens a fresh in-memory database and prepares the hot-path
// statements.
func NewTable() (*Table, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	// The index lives and dies with one store instance; a second
	// connection would see a different empty database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE history (
			url      TEXT PRIMARY KEY,
			title    TEXT NOT NULL,
			atime    REAL NOT NULL,
			redirect INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	t := &Table{db: db}
	if err := t.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return t, nil
}

func (t *Table) prepareStatements() error {
	var err error

	t.upsert, err = t.db.Prepare(`
		INSERT OR REPLACE INTO history (url, title, atime, redirect)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	t.get, err = t.db.Prepare(`
		SELECT url, title, atime, redirect FROM history WHERE url = ?
	`)
	return err
}

// Upsert inserts an entry, replacing any previous entry for the same URL.
func (t *Table) Upsert(e history.Entry) error {
	_, err := t.upsert.Exec(e.URL, e.Title, e.Atime, e.Redirect)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", e.URL, err)
	}
	return nil
}

// Get looks up the entry for a URL. The second return is false when the
// URL is not in the index.
func (t *Table) Get(url string) (history.Entry, bool, error) {
	var e history.Entry
	err := t.get.QueryRow(url).Scan(&e.URL, &e.Title, &e.Atime, &e.Redirect)
	if err == sql.ErrNoRows {
		return history.Entry{}, false, nil
	}
	if err != nil {
		return history.Entry{}, false, fmt.Errorf("get %q: %w", url, err)
	}
	return e, true, nil
}

// DeleteWhere removes every entry matching pred, in one transaction.
func (t *Table) DeleteWhere(pred func(history.Entry) bool) error {
	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query("SELECT url, title, atime, redirect FROM history")
	if err != nil {
		return fmt.Errorf("scan for delete: %w", err)
	}

	var doomed []string
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.URL, &e.Title, &e.Atime, &e.Redirect); err != nil {
			rows.Close()
			return fmt.Errorf("scan for delete: %w", err)
		}
		if pred(e) {
			doomed = append(doomed, e.URL)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("scan for delete: %w", err)
	}
	rows.Close()

	for _, url := range doomed {
		if _, err := tx.Exec("DELETE FROM history WHERE url = ?", url); err != nil {
			return fmt.Errorf("delete %q: %w", url, err)
		}
	}

	return tx.Commit()
}

// Clear removes all entries.
func (t *Table) Clear() error {
	if _, err := t.db.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

// Len returns the number of entries in the index.
func (t *Table) Len() (int, error) {
	var n int
	if err := t.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return 0, fmt.Errorf("count index: %w", err)
	}
	return n, nil
}

// Close releases the database and prepared statements.
func (t *Table) Close() error {
	if t.upsert != nil {
		t.upsert.Close()
	}
	if t.get != nil {
		t.get.Close()
	}
	return t.db.Close()
}
