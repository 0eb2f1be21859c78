// Package video contains the uploaded-video aggregate and its analysis status lifecycle.
package video

import (
	"path"
	"strings"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/shared"
)

// Status is the analysis state shown to the uploader
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusActive     Status = "active"
	StatusFailed     Status = "failed"
)

// StoragePrefix is the blob-store folder that holds uploaded videos
const StoragePrefix = "videos/"

// Video is a user-uploaded cooking video and the recipe extracted from it
type Video struct {
	shared.AggregateRoot

	ID          string
	StoragePath string
	VideoURL    string
	Status      Status
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Written by the analysis pipeline. Nil until the first successful run.
	Analysis *analysis.RecipeAnalysis
}

// New creates a pending video record
func New(id, storagePath, videoURL string) (*Video, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	now := time.Now().UTC()
	return &Video{
		ID:          id,
		StoragePath: storagePath,
		VideoURL:    videoURL,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkProcessing moves the video into processing. Any prior state is accepted
// so that failed or active videos can be re-analyzed.
func (v *Video) MarkProcessing() {
	v.transition(StatusProcessing, "")
}

// ApplyAnalysis writes the analysis fields and activates the video
func (v *Video) ApplyAnalysis(a analysis.RecipeAnalysis) {
	cloned := a.Clone()
	v.Analysis = &cloned
	v.transition(StatusActive, "")
}

// MarkFailed records a failure message
func (v *Video) MarkFailed(message string) {
	v.transition(StatusFailed, message)
}

// IsStuck reports whether the video has been processing since before cutoff
func (v *Video) IsStuck(cutoff time.Time) bool {
	return v.Status == StatusProcessing && v.UpdatedAt.Before(cutoff)
}

func (v *Video) transition(to Status, message string) {
	from := v.Status
	v.Status = to
	v.Error = message
	v.UpdatedAt = time.Now().UTC()

	v.AddEvent(StatusChangedEvent{
		VideoID:   v.ID,
		From:      from,
		To:        to,
		Error:     message,
		ChangedAt: v.UpdatedAt,
	})
}

// IDFromObjectName derives a video id from a blob path such as
// "videos/abc123.mp4". It returns false for objects outside the videos prefix.
func IDFromObjectName(name string) (string, bool) {
	if !strings.HasPrefix(name, StoragePrefix) {
		return "", false
	}

	base := path.Base(name)
	id := strings.TrimSuffix(base, path.Ext(base))
	if id == "" || id == "." || strings.HasSuffix(name, "/") {
		return "", false
	}
	return id, true
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

// IsVideoObject reports whether a storage object looks like a video
func IsVideoObject(name, contentType string) bool {
	if strings.HasPrefix(contentType, "video/") {
		return true
	}
	return videoExtensions[strings.ToLower(path.Ext(name))]
}
