// Package nats connects the analyzer to NATS: storage finalize events come in
// through a JetStream consumer and status changes go out as plain publishes.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Client wraps a NATS connection with its JetStream context
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	cfg    config.NATSConfig
	logger *zap.Logger
}

// Connect dials NATS and ensures the finalize stream exists
func Connect(ctx context.Context, cfg config.NATSConfig, logger *zap.Logger) (*Client, error) {
	logger = logger.Named("nats")

	nc, err := nats.Connect(cfg.URL,
		nats.Name("reelchef"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.FinalizeSubject},
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	logger.Info("NATS client initialized",
		zap.String("url", cfg.URL),
		zap.String("stream", cfg.Stream))

	return &Client{conn: nc, js: js, cfg: cfg, logger: logger}, nil
}

// Conn exposes the raw connection
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Connected reports whether the connection is currently up
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close drains outstanding messages and closes the connection
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return err
	}
	return nil
}
