package redis

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/alchemorsel/reelchef/test/testutils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestAnalysisCache_Key(t *testing.T) {
	cache := NewAnalysisCache(nil, "reelchef:", zaptest.NewLogger(t))

	assert.Equal(t, "reelchef:analysis:abc", cache.Key("abc"))
}

func TestAnalysisCache_UnreachableServerIsExternalError(t *testing.T) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{"127.0.0.1:1"},
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cache := NewAnalysisCache(client, "", zaptest.NewLogger(t))

	_, err := cache.Get(context.Background(), "abc")
	assert.True(t, apperrors.Is(err, apperrors.CodeExternalServiceError))

	err = cache.Put(context.Background(), "abc", testutils.NewAnalysisBuilder().Build())
	assert.True(t, apperrors.Is(err, apperrors.CodeExternalServiceError))
}
