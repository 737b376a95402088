package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version    string
	statements []string
}

// Constraint names are matched by the repositories when mapping unique violations.
var migrations = []migration{
	{
		version: "0001_users",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
                id            UUID PRIMARY KEY,
                phone         TEXT NOT NULL,
                password_hash BYTEA NOT NULL,
                created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
                CONSTRAINT users_phone_key UNIQUE (phone)
            )`,
		},
	},
	{
		version: "0002_wallets",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS wallets (
                id             UUID PRIMARY KEY,
                name           TEXT NOT NULL,
                type           TEXT NOT NULL CHECK (type IN ('Momo', 'Card')),
                account_number TEXT NOT NULL,
                account_scheme TEXT NOT NULL,
                owner          TEXT NOT NULL,
                created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
                CONSTRAINT wallets_account_number_key UNIQUE (account_number),
                CONSTRAINT wallets_name_key UNIQUE (name)
            )`,
			`CREATE INDEX IF NOT EXISTS wallets_owner_created_idx ON wallets (owner, created_at, id)`,
			`CREATE INDEX IF NOT EXISTS wallets_created_idx ON wallets (created_at, id)`,
		},
	},
}

// Migrate applies pending schema versions, each in its own transaction.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version    TEXT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.version, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *pgxpool.Pool, m migration) error {
	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		var applied bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&applied); err != nil {
			return err
		}
		if applied {
			return nil
		}
		for _, stmt := range m.statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version)
		return err
	})
}
