package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/blockberries/benor/engine"
	"github.com/blockberries/benor/metrics"
	"github.com/blockberries/benor/network"
	"github.com/blockberries/benor/trace"
	"github.com/blockberries/benor/types"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// testRun wires every observer into one simulation
type testRun struct {
	Sim      *engine.Simulator
	Recorder *trace.Recorder
	Reader   *sdkmetric.ManualReader
	Hook     *logtest.Hook
}

func setupTestRun(t *testing.T, cfg *engine.Config) *testRun {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	obs, err := metrics.NewObserver(provider.Meter("integration"))
	if err != nil {
		t.Fatalf("failed to create metrics observer: %v", err)
	}

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	rec := trace.NewRecorder()
	sim, err := engine.NewSimulator(cfg,
		engine.WithLogger(logger),
		engine.WithObserver(engine.MultiObserver{rec, obs, engine.NewLogObserver(logger)}),
	)
	if err != nil {
		t.Fatalf("failed to create simulator: %v", err)
	}

	return &testRun{Sim: sim, Recorder: rec, Reader: reader, Hook: hook}
}

func TestFullConsensusFlow(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Nodes = 5
	cfg.FaultBound = 2
	cfg.Inputs = []types.Value{types.ValueOne, types.ValueZero, types.ValueOne, types.ValueZero, types.ValueOne}
	cfg.Crashes = []engine.CrashPoint{{Step: 12, Node: "P5"}}
	cfg.Seed = 77
	cfg.MaxSteps = 200000

	run := setupTestRun(t, cfg)
	res, err := run.Sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Reason != engine.StopDecided {
		t.Fatalf("expected run to decide, stopped with %s after %d steps", res.Reason, res.Steps)
	}
	if !res.Agreement() {
		t.Fatalf("agreement violated: %v", res.Decisions)
	}
	if res.Nodes["P5"].Alive {
		t.Error("P5 should have crashed")
	}
	for id, o := range res.Nodes {
		if o.Alive && !o.Decision.IsSet() {
			t.Errorf("live node %s did not decide", id)
		}
	}

	// Journal and result agree
	if run.Recorder.Result() != res {
		t.Error("recorder should hold the final result")
	}
	decisions := run.Recorder.ByType(trace.EntryType(engine.RecordDecision))
	if len(decisions) != res.DecidedCount() {
		t.Errorf("expected %d decision entries, got %d", res.DecidedCount(), len(decisions))
	}

	// Metrics and journal agree
	var rm metricdata.ResourceMetrics
	if err := run.Reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	var counted int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != metrics.RecordsName {
				continue
			}
			sum := m.Data.(metricdata.Sum[int64])
			for _, dp := range sum.DataPoints {
				counted += dp.Value
			}
		}
	}
	if counted != int64(len(run.Recorder.Records())) {
		t.Errorf("metrics counted %d records, journal holds %d", counted, len(run.Recorder.Records()))
	}

	// Logs: one info entry per decision and one for the crash
	var decidedLogs, crashLogs int
	for _, e := range run.Hook.AllEntries() {
		switch e.Message {
		case "Node decided":
			decidedLogs++
		case "Node crashed":
			crashLogs++
		}
	}
	if decidedLogs != res.DecidedCount() {
		t.Errorf("expected %d decision logs, got %d", res.DecidedCount(), decidedLogs)
	}
	// Once from the observer, once from the simulator
	if crashLogs != 2 {
		t.Errorf("expected 2 crash logs, got %d", crashLogs)
	}
}

func TestReplayFromJournal(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Nodes = 4
	cfg.Inputs = []types.Value{types.ValueOne, types.ValueOne, types.ValueOne, types.ValueOne}
	cfg.Seed = 4
	cfg.MaxSteps = 100000
	cfg.SnapshotInterval = 0

	run := setupTestRun(t, cfg)
	res, err := run.Sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Rebuild the selection order and the delivery outcomes from the journal
	var (
		schedule []types.NodeID
		outcomes []bool
		polls    []engine.Record
	)
	for _, r := range run.Recorder.Records() {
		if r.Type != engine.RecordReceive {
			continue
		}
		polls = append(polls, r)
		schedule = append(schedule, r.Node)
		if r.Status != network.StatusEmpty {
			outcomes = append(outcomes, r.Status == network.StatusDelivered)
		}
	}
	if uint64(len(schedule)) != res.Steps {
		t.Fatalf("expected %d receive records, got %d", res.Steps, len(schedule))
	}

	replayCfg := *cfg
	replayCfg.Schedule = schedule
	replayRec := trace.NewRecorder()
	replay, err := engine.NewSimulator(&replayCfg,
		engine.WithObserver(replayRec),
		engine.WithPolicy(network.NewScripted(outcomes, nil)),
	)
	if err != nil {
		t.Fatalf("failed to create replay: %v", err)
	}
	got, err := replay.Run(context.Background())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if got.Steps != res.Steps {
		t.Errorf("replay took %d steps, want %d", got.Steps, res.Steps)
	}
	if fmt.Sprint(got.Decisions) != fmt.Sprint(res.Decisions) {
		t.Errorf("replay decided %v, want %v", got.Decisions, res.Decisions)
	}

	var replayed []engine.Record
	for _, r := range replayRec.Records() {
		if r.Type == engine.RecordReceive {
			replayed = append(replayed, r)
		}
	}
	if len(replayed) != len(polls) {
		t.Fatalf("replay polled %d times, want %d", len(replayed), len(polls))
	}
	for i := range polls {
		if replayed[i].Status != polls[i].Status {
			t.Fatalf("poll %d: status %s, want %s", i, replayed[i].Status, polls[i].Status)
		}
		if polls[i].Message != nil && *replayed[i].Message != *polls[i].Message {
			t.Fatalf("poll %d: delivered %s, want %s", i, replayed[i].Message, polls[i].Message)
		}
	}
}
