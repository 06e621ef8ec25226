// Package auditlog persists emitted Solutions to a WAL-mode sqlite
// database, one row per solution keyed by auction and solution id.
package auditlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/relaydex/curve-lp-solver/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS solutions (
	auction_id   TEXT NOT NULL,
	solution_id  INTEGER NOT NULL,
	order_uid    TEXT NOT NULL,
	sell_token   TEXT NOT NULL,
	buy_token    TEXT NOT NULL,
	gas          INTEGER NOT NULL,
	fee          TEXT NOT NULL,
	created_unix INTEGER NOT NULL,
	PRIMARY KEY (auction_id, solution_id)
);
`

// Log is a durable record of every Solution this solver has emitted.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) a WAL-mode sqlite database at dbPath.
func Open(dbPath string) (*Log, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("auditlog: create dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("auditlog: open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("auditlog: enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("auditlog: init schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record persists one Solution under auctionID, replacing any row with the
// same (auction, solution id) key.
func (l *Log) Record(auctionID string, createdUnix int64, sol *domain.Solution) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO solutions
		 (auction_id, solution_id, order_uid, sell_token, buy_token, gas, fee, created_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		auctionID,
		sol.ID,
		sol.Order.UID,
		sol.Order.Sell.Token.Hex(),
		sol.Order.Buy.Token.Hex(),
		sol.Gas,
		sol.Fee.Dec(),
		createdUnix,
	)
	return err
}

// RecordBatch persists several Solutions in one transaction.
func (l *Log) RecordBatch(auctionID string, createdUnix int64, sols []*domain.Solution) error {
	if len(sols) == 0 {
		return nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO solutions
		 (auction_id, solution_id, order_uid, sell_token, buy_token, gas, fee, created_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sol := range sols {
		_, err := stmt.Exec(
			auctionID,
			sol.ID,
			sol.Order.UID,
			sol.Order.Sell.Token.Hex(),
			sol.Order.Buy.Token.Hex(),
			sol.Gas,
			sol.Fee.Dec(),
			createdUnix,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Stats reports row counts.
func (l *Log) Stats() (map[string]int64, error) {
	stats := make(map[string]int64)
	var count int64
	if err := l.db.QueryRow("SELECT COUNT(*) FROM solutions").Scan(&count); err != nil {
		return nil, err
	}
	stats["solutions"] = count
	return stats, nil
}
