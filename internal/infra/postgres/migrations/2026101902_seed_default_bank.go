package migrations

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"

	"quiz-report-service/internal/bank"
	"quiz-report-service/internal/domain"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return UpsertBank(ctx, db, bank.Default())
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM quiz_banks WHERE id = ?`, bank.DefaultID)
			return err
		},
	)
}

// UpsertBank stores b as JSONB, replacing any bank with the same id.
func UpsertBank(ctx context.Context, db bun.IDB, b domain.Bank) error {
	if err := b.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO quiz_banks (id, data) VALUES (?, ?::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		b.ID, string(data))
	return err
}
