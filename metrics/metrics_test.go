package metrics

import (
	"context"
	"testing"

	"github.com/blockberries/benor/engine"
	"github.com/blockberries/benor/trace"
	"github.com/blockberries/benor/types"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key(key))
		require.True(t, ok)
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestObserverCountsRun(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	obs, err := NewObserver(provider.Meter("test"))
	require.NoError(t, err)
	rec := trace.NewRecorder()

	cfg := engine.DefaultConfig()
	cfg.Seed = 99
	cfg.Inputs = []types.Value{types.ValueOne, types.ValueOne, types.ValueZero}
	cfg.MaxSteps = 20000

	sim, err := engine.NewSimulator(cfg, engine.WithObserver(engine.MultiObserver{obs, rec}))
	require.NoError(t, err)
	res, err := sim.Run(context.Background())
	require.NoError(t, err)

	got := collect(t, reader)

	byType := sumByAttr(t, got[RecordsName], "type")
	want := make(map[string]int64)
	for _, r := range rec.Records() {
		want[string(r.Type)]++
	}
	require.Equal(t, want, byType)

	decisions := sumByAttr(t, got[DecisionsName], "value")
	var total int64
	for _, n := range decisions {
		total += n
	}
	require.Equal(t, int64(res.DecidedCount()), total)
	if v, ok := res.Decided(); ok {
		require.Equal(t, total, decisions[v.String()])
	}

	steps, ok := got[StepsName].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, steps.DataPoints, 1)
	dp := steps.DataPoints[0]
	require.Equal(t, uint64(1), dp.Count)
	require.Equal(t, int64(res.Steps), dp.Sum)
	reason, ok := dp.Attributes.Value(attrKeyReason)
	require.True(t, ok)
	require.Equal(t, string(res.Reason), reason.AsString())

	backlog, ok := got[BacklogName].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, backlog.DataPoints, 1)
	require.Equal(t, uint64(len(rec.Snapshots())), backlog.DataPoints[0].Count)
}

func TestNewObserverNilMeter(t *testing.T) {
	obs, err := NewObserver(nil)
	require.NoError(t, err)

	obs.Observe(engine.Record{Type: engine.RecordDecision, Value: types.ValueOne})
	obs.Snapshot(engine.Snapshot{})
	obs.Final(&engine.Result{Reason: engine.StopDecided})
}
