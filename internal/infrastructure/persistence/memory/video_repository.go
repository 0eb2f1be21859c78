// Package memory provides in-memory implementations of the persistence ports,
// used by tests and single-process development runs
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/shared"
	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
)

// VideoRepository keeps video records in a map. Records are copied on the way
// in and out so callers never share state with the store.
type VideoRepository struct {
	mu     sync.RWMutex
	videos map[string]*video.Video
}

// Ensure VideoRepository implements the outbound port
var _ outbound.VideoRepository = (*VideoRepository)(nil)

// NewVideoRepository creates an empty repository
func NewVideoRepository() *VideoRepository {
	return &VideoRepository{videos: make(map[string]*video.Video)}
}

// FindByID returns a copy of the record
func (r *VideoRepository) FindByID(ctx context.Context, id string) (*video.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, video.ErrVideoNotFound
	}
	return copyVideo(v), nil
}

// Save upserts the record
func (r *VideoRepository) Save(ctx context.Context, v *video.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.videos[v.ID] = copyVideo(v)
	return nil
}

// FindByStatus returns up to limit records with status, oldest first.
// A non-positive limit returns all of them.
func (r *VideoRepository) FindByStatus(ctx context.Context, status video.Status, limit int) ([]*video.Video, error) {
	return r.filter(limit, func(v *video.Video) bool { return v.Status == status }), nil
}

// FindStuck returns processing records last updated before cutoff
func (r *VideoRepository) FindStuck(ctx context.Context, cutoff time.Time, limit int) ([]*video.Video, error) {
	return r.filter(limit, func(v *video.Video) bool { return v.IsStuck(cutoff) }), nil
}

func (r *VideoRepository) filter(limit int, keep func(*video.Video) bool) []*video.Video {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*video.Video, 0)
	for _, v := range r.videos {
		if keep(v) {
			out = append(out, copyVideo(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func copyVideo(v *video.Video) *video.Video {
	c := *v
	c.AggregateRoot = shared.AggregateRoot{}
	if v.Analysis != nil {
		a := v.Analysis.Clone()
		c.Analysis = &a
	}
	return &c
}
