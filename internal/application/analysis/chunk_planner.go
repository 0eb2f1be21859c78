// Package analysis implements the video-to-recipe analysis use cases: chunk
// planning, per-chunk model calls, response parsing, chunk merging and the
// pipeline that ties them to storage.
package analysis

import (
	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
)

// ChunkPolicy bounds the size of a single model request
type ChunkPolicy struct {
	MaxChunkSize int64
	OverlapSize  int64
}

// DefaultChunkPolicy is 19 MiB chunks with 5 MiB of overlap
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{
		MaxChunkSize: domain.DefaultMaxChunkSize,
		OverlapSize:  domain.DefaultOverlapSize,
	}
}

// Validate rejects policies with a non-positive stride
func (p ChunkPolicy) Validate() error {
	if p.MaxChunkSize <= 0 || p.OverlapSize < 0 || p.OverlapSize >= p.MaxChunkSize {
		return apperrors.NewInvalidChunkPolicyError(p.MaxChunkSize, p.OverlapSize)
	}
	return nil
}

// PlanChunks splits [0, totalSize) into overlapping ranges no longer than
// MaxChunkSize. Payloads that fit are returned as a single range.
func PlanChunks(totalSize int64, policy ChunkPolicy) (domain.ChunkPlan, error) {
	if err := policy.Validate(); err != nil {
		return domain.ChunkPlan{}, err
	}

	plan := domain.ChunkPlan{TotalSize: totalSize}
	if totalSize <= 0 {
		return plan, nil
	}

	if totalSize <= policy.MaxChunkSize {
		plan.Ranges = []domain.ByteRange{{Start: 0, End: totalSize}}
		return plan, nil
	}

	stride := policy.MaxChunkSize - policy.OverlapSize
	numChunks := (totalSize + stride - 1) / stride

	plan.Ranges = make([]domain.ByteRange, 0, numChunks)
	for i := int64(0); i < numChunks; i++ {
		start := i * stride
		end := start + policy.MaxChunkSize
		if end > totalSize {
			end = totalSize
		}
		plan.Ranges = append(plan.Ranges, domain.ByteRange{Start: start, End: end})
	}

	return plan, nil
}
