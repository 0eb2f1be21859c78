package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// FinalizeEvent is the storage notification for a newly written object
type FinalizeEvent struct {
	Bucket      string      `json:"bucket"`
	Name        string      `json:"name"`
	ContentType string      `json:"contentType"`
	Size        json.Number `json:"size"`
}

type ackAction int

const (
	actionAck ackAction = iota
	actionNak
	actionTerm
)

func (a ackAction) String() string {
	switch a {
	case actionAck:
		return "ack"
	case actionNak:
		return "nak"
	default:
		return "term"
	}
}

// FinalizeConsumer runs the pipeline for every finalize event on the stream
type FinalizeConsumer struct {
	client     *Client
	service    inbound.VideoAnalysisService
	runTimeout time.Duration
	logger     *zap.Logger

	consumeCtx jetstream.ConsumeContext
	sem        chan struct{}
	wg         sync.WaitGroup
}

// NewFinalizeConsumer creates a consumer. runTimeout bounds each pipeline run.
func NewFinalizeConsumer(client *Client, service inbound.VideoAnalysisService, runTimeout time.Duration, logger *zap.Logger) *FinalizeConsumer {
	concurrency := client.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FinalizeConsumer{
		client:     client,
		service:    service,
		runTimeout: runTimeout,
		logger:     logger.Named("finalize-consumer"),
		sem:        make(chan struct{}, concurrency),
	}
}

// Start creates the durable consumer and begins delivering messages.
// Runs continue on ctx until Stop is called.
func (c *FinalizeConsumer) Start(ctx context.Context) error {
	cfg := c.client.cfg
	consumer, err := c.client.js.CreateOrUpdateConsumer(ctx, cfg.Stream, jetstream.ConsumerConfig{
		Name:          cfg.Durable,
		Durable:       cfg.Durable,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    cfg.MaxDeliver,
		AckWait:       cfg.AckWait,
		FilterSubject: cfg.FinalizeSubject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		c.sem <- struct{}{}
		c.wg.Add(1)
		go func() {
			defer func() {
				<-c.sem
				c.wg.Done()
			}()
			c.process(runCtx, msg)
		}()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	c.consumeCtx = consumeCtx

	c.logger.Info("Consumer started",
		zap.String("stream", cfg.Stream),
		zap.String("durable", cfg.Durable),
		zap.String("subject", cfg.FinalizeSubject),
		zap.Int("concurrency", cap(c.sem)))
	return nil
}

// Stop stops delivery and waits for in-flight runs to finish
func (c *FinalizeConsumer) Stop() {
	if c.consumeCtx != nil {
		c.consumeCtx.Stop()
	}
	c.wg.Wait()
	c.logger.Info("Consumer stopped")
}

func (c *FinalizeConsumer) process(ctx context.Context, msg jetstream.Msg) {
	action := c.handle(ctx, msg.Data())

	var err error
	switch action {
	case actionAck:
		err = msg.Ack()
	case actionNak:
		err = msg.Nak()
	case actionTerm:
		err = msg.Term()
	}
	if err != nil {
		c.logger.Warn("Failed to settle message", zap.Stringer("action", action), zap.Error(err))
	}
}

// handle decodes one payload and runs the pipeline. Pipeline failures nak the
// message so JetStream redelivers it up to MaxDeliver times.
func (c *FinalizeConsumer) handle(ctx context.Context, data []byte) ackAction {
	var event FinalizeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logger.Error("Dropping malformed finalize event", zap.Error(err))
		return actionTerm
	}

	if c.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.runTimeout)
		defer cancel()
	}

	trigger := inbound.Trigger{
		Source:      inbound.TriggerStorageFinalize,
		Bucket:      event.Bucket,
		ObjectName:  event.Name,
		ContentType: event.ContentType,
	}
	if err := c.service.Run(ctx, trigger); err != nil {
		c.logger.Error("Analysis run failed",
			zap.String("bucket", event.Bucket),
			zap.String("object", event.Name),
			zap.Error(err))
		return actionNak
	}
	return actionAck
}
