package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type capturePublisher struct {
	subject string
	data    []byte
	err     error
}

func (c *capturePublisher) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.err
}

func TestStatusPublisher_PublishesPerVideoSubject(t *testing.T) {
	conn := &capturePublisher{}
	pub := newStatusPublisher(conn, "video.status", zaptest.NewLogger(t))
	event := outbound.StatusEvent{
		VideoID: "abc",
		Status:  video.StatusFailed,
		Error:   "processing timed out",
		At:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.Notify(context.Background(), event))

	assert.Equal(t, "video.status.abc", conn.subject)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, "abc", got["videoId"])
	assert.Equal(t, "failed", got["status"])
	assert.Equal(t, "processing timed out", got["error"])
}

func TestStatusPublisher_PropagatesPublishError(t *testing.T) {
	conn := &capturePublisher{err: errors.New("connection closed")}
	pub := newStatusPublisher(conn, "video.status", zaptest.NewLogger(t))

	err := pub.Notify(context.Background(), outbound.StatusEvent{VideoID: "abc", Status: video.StatusActive})

	assert.ErrorContains(t, err, "connection closed")
}
