// Package rabbitmq provides a hook that publishes session lifecycle notifications to a queue.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	xerrors "sandbox-hooks/internal/errors"
	"sandbox-hooks/internal/sandbox"
	"sandbox-hooks/pkg/hooks"
)

// Namespace is the path the hook classes are registered under.
const Namespace = "sandbox.hooks.rabbitmq"

const source = Namespace + ".Notifier"

func init() {
	hooks.DefineClass(hooks.RegisterNamespace(Namespace), "Notifier", New)
}

// Config is the hook configuration.
type Config struct {
	URL        string `yaml:"url"`
	Queue      string `yaml:"queue"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

func parseConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := hooks.DecodeConfiguration(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.URL == "" {
		return cfg, xerrors.New(xerrors.CodeInvalidArgument, "rabbitmq url cannot be empty")
	}
	if cfg.Queue == "" {
		cfg.Queue = "sandbox.events"
	}
	return cfg, nil
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Notifier publishes session_started on construction and session_ended on cleanup.
type Notifier struct {
	hooks.Base
	ch    publisher
	conn  io.Closer
	queue string
}

// New dials RabbitMQ, declares the queue and announces the session.
func New(p hooks.Params) (*Notifier, error) {
	cfg, err := parseConfig(p.Configuration)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeQueueFailure, err, "dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, xerrors.Wrap(xerrors.CodeQueueFailure, err, "open rabbitmq channel")
	}
	if _, err := ch.QueueDeclare(cfg.Queue, cfg.Durable, cfg.AutoDelete, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, xerrors.Wrap(xerrors.CodeQueueFailure, err, "declare queue "+cfg.Queue)
	}
	return start(p, ch, conn, cfg.Queue)
}

func start(p hooks.Params, ch publisher, conn io.Closer, queue string) (*Notifier, error) {
	n := &Notifier{Base: hooks.NewBase(p), ch: ch, conn: conn, queue: queue}
	if err := n.publish(sandbox.EventSessionStarted); err != nil {
		_ = n.close()
		return nil, err
	}
	return n, nil
}

// Cleanup announces the end of the session and closes the channel and connection.
func (n *Notifier) Cleanup() error {
	return errors.Join(n.publish(sandbox.EventSessionEnded), n.close())
}

func (n *Notifier) publish(kind sandbox.EventKind) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev := sandbox.NewEvent(n.Identifier(), source, kind)
	err := n.ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   ev.ID,
		Timestamp:   ev.OccurredAt,
		Type:        string(kind),
		Body:        ev.Encode(),
	})
	if err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, fmt.Sprintf("publish %s", kind))
	}
	return nil
}

func (n *Notifier) close() error {
	var err error
	if n.ch != nil {
		err = errors.Join(err, n.ch.Close())
	}
	if n.conn != nil {
		err = errors.Join(err, n.conn.Close())
	}
	return err
}
