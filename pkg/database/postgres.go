package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/se-evidence-api/pkg/config"
)

// NewPostgres opens the catalog database and verifies it answers within ctx.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect postgres %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return db, nil
}

// DSN renders cfg as a libpq keyword/value connection string.
func DSN(cfg config.DatabaseConfig) string {
	pairs := []struct{ key, value string }{
		{"host", cfg.Host},
		{"port", fmt.Sprint(cfg.Port)},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", cfg.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"="+quote(p.value))
	}
	return strings.Join(parts, " ")
}

// quote escapes values containing spaces, quotes or backslashes.
func quote(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}
