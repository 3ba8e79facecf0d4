package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the chats table and its listing index if missing.
// Safe to run on every deploy.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id uuid NOT NULL,
				title text NOT NULL,
				messages jsonb NOT NULL DEFAULT '[]'::jsonb,
				created_at timestamptz NOT NULL DEFAULT now(),
				updated_at timestamptz NOT NULL DEFAULT now()
			)`, tables.Chats),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_updated_idx ON %s (user_id, updated_at DESC)`,
			tables.Chats, tables.Chats),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes the chats table. Used by developer scripts only.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Chats)); err != nil {
		return fmt.Errorf("drop %s: %w", tables.Chats, err)
	}
	return nil
}

// CheckSchema verifies the chats table exists, so a fresh database fails at
// startup rather than on the first request.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`SELECT 1 FROM %s LIMIT 0`, tables.Chats))
	if IsPgUndefinedTableError(err) {
		return fmt.Errorf("table %s does not exist; run cmd/seed --schema-only", tables.Chats)
	}
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	return nil
}
