package monitoring

import (
	"context"
	"testing"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestTelemetry_ExportsOTelMetricsThroughRegistry(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{
		App:        config.AppConfig{Name: "reelchef-test", Version: "test", Environment: "test"},
		Monitoring: config.MonitoringConfig{EnableMetrics: true},
	}

	tel, err := NewTelemetry(ctx, cfg, reg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, tel.Shutdown(ctx)) }()

	counter, err := otel.Meter("test").Int64Counter("reelchef.test.events")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	// UTF-8 names keep their dots; counters still gain the _total suffix
	assert.Contains(t, names, "reelchef.test.events_total")
}
