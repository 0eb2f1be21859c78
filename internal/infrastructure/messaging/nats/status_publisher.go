package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// StatusPublisher publishes status changes on <prefix>.<videoID>
type StatusPublisher struct {
	conn   publisher
	prefix string
	logger *zap.Logger
}

var _ outbound.StatusNotifier = (*StatusPublisher)(nil)

// NewStatusPublisher creates a publisher on conn
func NewStatusPublisher(conn *nats.Conn, prefix string, logger *zap.Logger) *StatusPublisher {
	return newStatusPublisher(conn, prefix, logger)
}

func newStatusPublisher(conn publisher, prefix string, logger *zap.Logger) *StatusPublisher {
	return &StatusPublisher{conn: conn, prefix: prefix, logger: logger.Named("status-publisher")}
}

// Subject returns the subject for a video
func (p *StatusPublisher) Subject(videoID string) string {
	return p.prefix + "." + videoID
}

// Notify implements outbound.StatusNotifier
func (p *StatusPublisher) Notify(ctx context.Context, event outbound.StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	subject := p.Subject(event.VideoID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish status: %w", err)
	}

	p.logger.Debug("Status published",
		zap.String("subject", subject),
		zap.String("status", string(event.Status)))
	return nil
}
