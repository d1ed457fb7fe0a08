// Package metrics exports protocol activity of simulation runs through the
// OpenTelemetry metric API.
package metrics

import (
	"context"
	"fmt"

	"github.com/blockberries/benor/engine"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/blockberries/benor"

// Instrument names
const (
	RecordsName   = "benor.records"
	DecisionsName = "benor.decisions"
	StepsName     = "benor.run.steps"
	MaxRoundName  = "benor.run.max_round"
	BacklogName   = "benor.mailbox.backlog"
)

var (
	attrKeyType   = attribute.Key("type")
	attrKeyValue  = attribute.Key("value")
	attrKeyReason = attribute.Key("reason")
)

// Observer is an engine.Observer that counts records and decisions and
// records the shape of every finished run.
type Observer struct {
	records   metric.Int64Counter
	decisions metric.Int64Counter
	steps     metric.Int64Histogram
	maxRound  metric.Int64Histogram
	backlog   metric.Int64Histogram
}

var _ engine.Observer = (*Observer)(nil)

// NewObserver registers the instruments on meter. A nil meter uses a no-op
// provider.
func NewObserver(meter metric.Meter) (*Observer, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(instrumentationName)
	}

	var (
		o   Observer
		err error
	)
	if o.records, err = meter.Int64Counter(RecordsName,
		metric.WithDescription("Protocol records by type"),
		metric.WithUnit("{record}")); err != nil {
		return nil, fmt.Errorf("creating %s: %w", RecordsName, err)
	}
	if o.decisions, err = meter.Int64Counter(DecisionsName,
		metric.WithDescription("Node decisions by value"),
		metric.WithUnit("{decision}")); err != nil {
		return nil, fmt.Errorf("creating %s: %w", DecisionsName, err)
	}
	if o.steps, err = meter.Int64Histogram(StepsName,
		metric.WithDescription("Scheduler steps per run"),
		metric.WithUnit("{step}")); err != nil {
		return nil, fmt.Errorf("creating %s: %w", StepsName, err)
	}
	if o.maxRound, err = meter.Int64Histogram(MaxRoundName,
		metric.WithDescription("Highest round reached per run"),
		metric.WithUnit("{round}")); err != nil {
		return nil, fmt.Errorf("creating %s: %w", MaxRoundName, err)
	}
	if o.backlog, err = meter.Int64Histogram(BacklogName,
		metric.WithDescription("Undelivered messages at each snapshot"),
		metric.WithUnit("{message}")); err != nil {
		return nil, fmt.Errorf("creating %s: %w", BacklogName, err)
	}
	return &o, nil
}

// Observe implements engine.Observer.
func (o *Observer) Observe(rec engine.Record) {
	ctx := context.TODO()
	o.records.Add(ctx, 1, metric.WithAttributes(attrKeyType.String(string(rec.Type))))
	if rec.Type == engine.RecordDecision {
		o.decisions.Add(ctx, 1, metric.WithAttributes(attrKeyValue.String(rec.Value.String())))
	}
}

// Snapshot implements engine.Observer.
func (o *Observer) Snapshot(snap engine.Snapshot) {
	var pending int64
	for _, msgs := range snap.Mailboxes {
		pending += int64(len(msgs))
	}
	o.backlog.Record(context.TODO(), pending)
}

// Final implements engine.Observer.
func (o *Observer) Final(res *engine.Result) {
	attr := metric.WithAttributes(attrKeyReason.String(string(res.Reason)))
	o.steps.Record(context.TODO(), int64(res.Steps), attr)
	o.maxRound.Record(context.TODO(), int64(res.MaxRound), attr)
}
