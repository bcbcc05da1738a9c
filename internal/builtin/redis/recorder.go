// Package redis provides a hook that appends session lifecycle events to a Redis list.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	xerrors "sandbox-hooks/internal/errors"
	"sandbox-hooks/internal/sandbox"
	"sandbox-hooks/pkg/hooks"
)

// Namespace is the path the hook classes are registered under.
const Namespace = "sandbox.hooks.redis"

const source = Namespace + ".EventRecorder"

func init() {
	hooks.DefineClass(hooks.RegisterNamespace(Namespace), "EventRecorder", New)
}

// Config is the hook configuration.
type Config struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	// TimeoutSeconds bounds each Redis round trip.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

func parseConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := hooks.DecodeConfiguration(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Address == "" {
		return cfg, xerrors.New(xerrors.CodeInvalidArgument, "redis address cannot be empty")
	}
	if cfg.Key == "" {
		cfg.Key = "sandbox:events"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 5
	}
	return cfg, nil
}

type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *goredis.IntCmd
	Close() error
}

// EventRecorder pushes a session_started event on construction and a
// session_ended event on cleanup.
type EventRecorder struct {
	hooks.Base
	client  listClient
	key     string
	timeout time.Duration
}

// New connects to Redis and records the start of the session.
func New(p hooks.Params) (*EventRecorder, error) {
	cfg, err := parseConfig(p.Configuration)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "connect redis "+cfg.Address)
	}
	return start(p, client, cfg.Key, timeout)
}

func start(p hooks.Params, client listClient, key string, timeout time.Duration) (*EventRecorder, error) {
	r := &EventRecorder{Base: hooks.NewBase(p), client: client, key: key, timeout: timeout}
	if err := r.record(sandbox.EventSessionStarted); err != nil {
		_ = client.Close()
		return nil, err
	}
	return r, nil
}

// Cleanup records the end of the session and closes the client.
func (r *EventRecorder) Cleanup() error {
	err := r.record(sandbox.EventSessionEnded)
	if cerr := r.client.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close redis client: %w", cerr))
	}
	return err
}

func (r *EventRecorder) record(kind sandbox.EventKind) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	ev := sandbox.NewEvent(r.Identifier(), source, kind)
	if err := r.client.LPush(ctx, r.key, ev.Encode()).Err(); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, fmt.Sprintf("push %s event", kind))
	}
	return nil
}
