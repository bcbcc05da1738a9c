// Package mysql provides a hook that keeps a row per sandbox session in MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	driver "github.com/go-sql-driver/mysql"

	xerrors "sandbox-hooks/internal/errors"
	"sandbox-hooks/pkg/hooks"
)

// Namespace is the path the hook classes are registered under.
const Namespace = "sandbox.hooks.mysql"

func init() {
	hooks.DefineClass(hooks.RegisterNamespace(Namespace), "Audit", New)
}

const schema = `CREATE TABLE IF NOT EXISTS hook_sessions (
    id VARCHAR(64) PRIMARY KEY,
    workdir VARCHAR(512) DEFAULT '',
    started_at DATETIME(6) NOT NULL,
    ended_at DATETIME(6) NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Config is the hook configuration.
type Config struct {
	DSN     string `yaml:"dsn"`
	WorkDir string `yaml:"workdir"`
}

func parseConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := hooks.DecodeConfiguration(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DSN == "" {
		return cfg, xerrors.New(xerrors.CodeInvalidArgument, "mysql dsn cannot be empty")
	}
	dsn, err := driver.ParseDSN(cfg.DSN)
	if err != nil {
		return cfg, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "parse mysql dsn")
	}
	// started_at/ended_at are scanned back as time.Time.
	dsn.ParseTime = true
	cfg.DSN = dsn.FormatDSN()
	return cfg, nil
}

// Audit inserts the session row on construction and stamps ended_at on cleanup.
type Audit struct {
	hooks.Base
	db *sql.DB
}

// New opens the database, ensures the schema and records the session start.
func New(p hooks.Params) (*Audit, error) {
	cfg, err := parseConfig(p.Configuration)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "open mysql")
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "ping mysql")
	}
	a := &Audit{Base: hooks.NewBase(p), db: db}
	if err := a.start(ctx, cfg.WorkDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Audit) start(ctx context.Context, workDir string) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "create hook_sessions table")
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO hook_sessions (id, workdir, started_at) VALUES (?, ?, ?)
         ON DUPLICATE KEY UPDATE workdir = VALUES(workdir), started_at = VALUES(started_at), ended_at = NULL`,
		a.Identifier(), workDir, time.Now().UTC())
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "insert session row")
	}
	return nil
}

// Cleanup marks the session as ended and closes the pool.
func (a *Audit) Cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var err error
	if _, execErr := a.db.ExecContext(ctx, `UPDATE hook_sessions SET ended_at = ? WHERE id = ?`,
		time.Now().UTC(), a.Identifier()); execErr != nil {
		err = xerrors.Wrap(xerrors.CodeStorageFailure, execErr, "update session row")
	}
	return errors.Join(err, a.db.Close())
}
