// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
)

// TriggerSource identifies what started a pipeline run
type TriggerSource string

const (
	TriggerHTTP            TriggerSource = "http"
	TriggerStorageFinalize TriggerSource = "storage_finalize"
	TriggerBatch           TriggerSource = "batch"
)

// Trigger is the event that starts an analysis run
type Trigger struct {
	Source   TriggerSource
	VideoID  string
	VideoURL string

	// Set for storage finalize events
	Bucket      string
	ObjectName  string
	ContentType string
}

// VideoAnalysisService runs the analysis pipeline for one video
type VideoAnalysisService interface {
	Run(ctx context.Context, trigger Trigger) error
	GetVideo(ctx context.Context, id string) (*video.Video, error)
}

// PreScreenService classifies a video before the full analysis
type PreScreenService interface {
	ScreenAndAnalyze(ctx context.Context, data []byte) (analysis.Outcome, error)
}
