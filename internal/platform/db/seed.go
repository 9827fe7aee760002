package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfsys/internal/domain/auth"
	"perfsys/internal/platform/config"
)

// Seed creates the role rows and the bootstrap admin account. It is
// idempotent: existing rows are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	for _, role := range auth.AllRoles {
		if _, err := pool.Exec(ctx, `
      INSERT INTO roles (name)
      VALUES ($1)
      ON CONFLICT (name) DO NOTHING
    `, role); err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}

	email := strings.TrimSpace(cfg.SeedAdminEmail)
	password := cfg.SeedAdminPassword
	if email == "" || password == "" {
		slog.Info("seed admin skipped, no credentials configured")
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role_id, status)
    SELECT $1, $2, r.id, 'active'
    FROM roles r
    WHERE r.name = $3
  `, email, hash, auth.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	slog.Info("seed admin user created", "email", email)
	return nil
}
