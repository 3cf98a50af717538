package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
)

const (
	appName = "user-service"

	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = time.Hour

	connectTimeout = 3 * time.Second
)

// NewDB opens a pgx-backed *sql.DB and pings it so a bad DB_ADDR fails at
// startup rather than on the first request.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	cc, err := connConfig(dsn)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*cc)
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping %s:%d: %w", cc.Host, cc.Port, err)
	}

	if debug {
		var who, name, ver string
		err := db.QueryRowContext(ctx,
			"SELECT current_user, current_database(), current_setting('server_version')",
		).Scan(&who, &name, &ver)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("db identity query failed")
		} else {
			logger.Logger.Info().
				Str("host", cc.Host).
				Str("user", who).
				Str("db", name).
				Str("version", ver).
				Msg("db connected")
		}
	}

	return db, nil
}

// connConfig parses the DSN and tags the session with the service name so
// it is identifiable in pg_stat_activity.
func connConfig(dsn string) (*pgx.ConnConfig, error) {
	if dsn == "" {
		return nil, errors.New("empty DB DSN")
	}
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB_ADDR: %w", err)
	}
	if _, ok := cc.RuntimeParams["application_name"]; !ok {
		cc.RuntimeParams["application_name"] = appName
	}
	return cc, nil
}
