package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrops/internal/domain/auth"
	"hrops/internal/platform/config"
)

// Seed creates the bootstrap admin account and the default weekend
// configuration on an empty database. It is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var weekendRows int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM weekend_settings").Scan(&weekendRows); err != nil {
		return err
	}
	if weekendRows == 0 {
		for _, day := range []time.Weekday{time.Saturday, time.Sunday} {
			if _, err := pool.Exec(ctx, "INSERT INTO weekend_settings (weekday) VALUES ($1) ON CONFLICT DO NOTHING", day.String()); err != nil {
				return err
			}
		}
	}

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	var userCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", cfg.SeedAdminEmail).Scan(&userCount); err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, $3)
  `, cfg.SeedAdminEmail, hash, auth.RoleAdmin); err != nil {
		return err
	}
	slog.Info("seeded admin user", "email", cfg.SeedAdminEmail)
	return nil
}
