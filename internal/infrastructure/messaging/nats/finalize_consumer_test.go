package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

func newTestConsumer(t *testing.T, service inbound.VideoAnalysisService) *FinalizeConsumer {
	return &FinalizeConsumer{
		service:    service,
		runTimeout: time.Minute,
		logger:     zaptest.NewLogger(t),
	}
}

func TestFinalizeConsumer_Handle(t *testing.T) {
	payload := []byte(`{"bucket":"uploads","name":"videos/abc.mp4","contentType":"video/mp4","size":"1048576"}`)
	wantTrigger := inbound.Trigger{
		Source:      inbound.TriggerStorageFinalize,
		Bucket:      "uploads",
		ObjectName:  "videos/abc.mp4",
		ContentType: "video/mp4",
	}

	tests := []struct {
		name   string
		data   []byte
		runErr error
		runs   bool
		want   ackAction
	}{
		{name: "success acks", data: payload, runs: true, want: actionAck},
		{name: "pipeline error naks", data: payload, runErr: errors.New("model down"), runs: true, want: actionNak},
		{name: "malformed payload terminates", data: []byte(`not json`), want: actionTerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &testutils.MockAnalysisService{}
			if tt.runs {
				service.On("Run", mock.Anything, wantTrigger).Return(tt.runErr).Once()
			}
			consumer := newTestConsumer(t, service)

			got := consumer.handle(context.Background(), tt.data)

			assert.Equal(t, tt.want, got)
			service.AssertExpectations(t)
		})
	}
}

func TestFinalizeConsumer_NumericSize(t *testing.T) {
	service := &testutils.MockAnalysisService{}
	service.On("Run", mock.Anything, mock.AnythingOfType("inbound.Trigger")).Return(nil).Once()
	consumer := newTestConsumer(t, service)

	got := consumer.handle(context.Background(), []byte(`{"bucket":"b","name":"videos/x.mp4","size":42}`))

	assert.Equal(t, actionAck, got)
}

func TestFinalizeConsumer_RunIsBoundedByTimeout(t *testing.T) {
	service := &testutils.MockAnalysisService{}
	service.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(nil).Once()
	consumer := newTestConsumer(t, service)

	consumer.handle(context.Background(), []byte(`{"bucket":"b","name":"videos/x.mp4"}`))

	service.AssertExpectations(t)
}
