package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-report-service/internal/config"
	pgmigrations "quiz-report-service/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations and optionally imports a bank file.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var bankFile string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the quiz_banks table, seed the default bank and import bank files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if bankFile != "" {
				cfg.Quiz.BankFile = bankFile
			}
			return runMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&bankFile, "bank-file", "", "YAML bank file to upsert after migrating")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("migrations up to date")
	} else {
		log.Printf("migrations applied (group %d)", group.ID)
	}

	if cfg.Quiz.BankFile != "" {
		b, err := loadBankFile(cfg.Quiz.BankFile)
		if err != nil {
			return err
		}
		if err := pgmigrations.UpsertBank(ctx, db, b); err != nil {
			return fmt.Errorf("import bank %s: %w", b.ID, err)
		}
		log.Printf("imported bank %s from %s", b.ID, cfg.Quiz.BankFile)
	}
	return nil
}
