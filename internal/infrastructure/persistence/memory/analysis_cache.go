package memory

import (
	"context"
	"sync"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
)

// AnalysisCache is a map-backed analysis cache. Entries never expire.
type AnalysisCache struct {
	mu      sync.RWMutex
	entries map[string]analysis.RecipeAnalysis
}

// Ensure AnalysisCache implements the outbound port
var _ outbound.AnalysisCache = (*AnalysisCache)(nil)

// NewAnalysisCache creates an empty cache
func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{entries: make(map[string]analysis.RecipeAnalysis)}
}

// Get returns (nil, nil) on a miss
func (c *AnalysisCache) Get(ctx context.Context, videoID string) (*analysis.RecipeAnalysis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.entries[videoID]
	if !ok {
		return nil, nil
	}
	cloned := a.Clone()
	return &cloned, nil
}

// Put stores a copy of a
func (c *AnalysisCache) Put(ctx context.Context, videoID string, a analysis.RecipeAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[videoID] = a.Clone()
	return nil
}

// Delete removes the entry for videoID
func (c *AnalysisCache) Delete(ctx context.Context, videoID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, videoID)
	return nil
}

// Len returns the number of cached analyses
func (c *AnalysisCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
