package analysis

import (
	"testing"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func TestPlanChunks_SingleRangeWhenFits(t *testing.T) {
	for _, size := range []int64{1, 10 * mib, 19 * mib} {
		plan, err := PlanChunks(size, DefaultChunkPolicy())

		require.NoError(t, err)
		require.Equal(t, 1, plan.Len())
		assert.Equal(t, domain.ByteRange{Start: 0, End: size}, plan.Ranges[0])
	}
}

func TestPlanChunks_FortyFiveMiB(t *testing.T) {
	plan, err := PlanChunks(45*mib, DefaultChunkPolicy())

	require.NoError(t, err)
	require.Equal(t, 4, plan.Len())
	assert.Equal(t, []domain.ByteRange{
		{Start: 0, End: 19 * mib},
		{Start: 14 * mib, End: 33 * mib},
		{Start: 28 * mib, End: 45 * mib},
		{Start: 42 * mib, End: 45 * mib},
	}, plan.Ranges)
}

func TestPlanChunks_CoverageAndBound(t *testing.T) {
	policies := []ChunkPolicy{
		DefaultChunkPolicy(),
		{MaxChunkSize: 10, OverlapSize: 3},
		{MaxChunkSize: 7, OverlapSize: 0},
		{MaxChunkSize: 5, OverlapSize: 4},
	}

	for _, policy := range policies {
		limit := policy.MaxChunkSize
		for _, size := range []int64{1, limit - 1, limit, limit + 1, 3*limit + 7, 10 * limit} {
			plan, err := PlanChunks(size, policy)
			require.NoError(t, err)

			covered := int64(0)
			prevStart := int64(-1)
			for _, r := range plan.Ranges {
				assert.LessOrEqual(t, r.Len(), policy.MaxChunkSize, "range longer than max")
				assert.Greater(t, r.Len(), int64(0))
				assert.LessOrEqual(t, r.Start, covered, "gap before %d", r.Start)
				assert.GreaterOrEqual(t, r.Start, prevStart)
				if r.End > covered {
					covered = r.End
				}
				prevStart = r.Start
			}
			assert.Equal(t, size, covered)
			assert.Equal(t, size, plan.Ranges[len(plan.Ranges)-1].End)
		}
	}
}

func TestPlanChunks_RejectsOverlapNotSmallerThanMax(t *testing.T) {
	_, err := PlanChunks(100, ChunkPolicy{MaxChunkSize: 5, OverlapSize: 5})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidChunkPolicy))

	_, err = PlanChunks(100, ChunkPolicy{MaxChunkSize: 5, OverlapSize: 8})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidChunkPolicy))
}

func TestPlanChunks_EmptyPayload(t *testing.T) {
	plan, err := PlanChunks(0, DefaultChunkPolicy())

	require.NoError(t, err)
	assert.Zero(t, plan.Len())
}

func TestChunkPlan_Slice(t *testing.T) {
	data := []byte("abcdefghijklmnopqrstuvwxyz")
	plan, err := PlanChunks(int64(len(data)), ChunkPolicy{MaxChunkSize: 10, OverlapSize: 2})
	require.NoError(t, err)

	assert.Equal(t, "abcdefghij", string(plan.Slice(data, 0)))
	assert.Equal(t, "ijklmnopqr", string(plan.Slice(data, 1)))
	assert.Equal(t, "qrstuvwxyz", string(plan.Slice(data, 2)))
	assert.Equal(t, "yz", string(plan.Slice(data, 3)))
}
