// Package sqlite keeps question banks in a local SQLite file for offline use.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite

	"quiz-report-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS quiz_banks (
    id         TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// BankStore loads and saves banks as JSON documents.
type BankStore struct {
	db *sql.DB
}

// Open opens the SQLite file at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*BankStore, error) {
	dsn := "file:" + path + "?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &BankStore{db: db}, nil
}

func (s *BankStore) Close() error {
	return s.db.Close()
}

func (s *BankStore) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM quiz_banks WHERE id = ?`, bankID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bank{}, domain.ErrBankNotFound
	}
	if err != nil {
		return domain.Bank{}, fmt.Errorf("load bank: %w", err)
	}
	var bank domain.Bank
	if err := json.Unmarshal([]byte(raw), &bank); err != nil {
		return domain.Bank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return domain.Bank{}, err
	}
	return bank, nil
}

// SaveBank inserts or replaces b.
func (s *BankStore) SaveBank(ctx context.Context, b domain.Bank) error {
	if err := b.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_banks (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		b.ID, string(data))
	return err
}
