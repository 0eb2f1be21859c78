package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newVideoServer(t *testing.T, payload []byte) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write(payload)
		case "/expired.mp4":
			http.Error(w, "AccessDenied", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 4096)
	srv := newVideoServer(t, payload)
	f := NewHTTPFetcher(5*time.Second, zaptest.NewLogger(t))

	data, err := f.Fetch(context.Background(), srv.URL+"/ok.mp4")

	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetch_Non2xxIsUpstreamError(t *testing.T) {
	srv := newVideoServer(t, nil)
	f := NewHTTPFetcher(5*time.Second, zaptest.NewLogger(t))

	_, err := f.Fetch(context.Background(), srv.URL+"/expired.mp4")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamFetch))
	assert.Contains(t, err.Error(), "failed to fetch video: 403 Forbidden")
}

func TestDownload(t *testing.T) {
	payload := []byte("not really a video")
	srv := newVideoServer(t, payload)
	f := NewHTTPFetcher(5*time.Second, zaptest.NewLogger(t))

	var buf bytes.Buffer
	n, err := f.Download(context.Background(), srv.URL+"/ok.mp4", &buf)

	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())

	_, err = f.Download(context.Background(), srv.URL+"/missing.mp4", &buf)
	assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamFetch))
}
