package engine

import (
	"github.com/sirupsen/logrus"
)

// LogObserver writes every record as a structured log entry. Decisions and
// crashes are logged at info level, everything else at debug.
type LogObserver struct {
	logger logrus.FieldLogger
}

var _ Observer = (*LogObserver)(nil)

func NewLogObserver(logger logrus.FieldLogger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Observe(rec Record) {
	entry := o.logger.WithFields(logrus.Fields(rec.Fields()))
	switch rec.Type {
	case RecordDecision:
		entry.Info("Node decided")
	case RecordCrash:
		entry.Info("Node crashed")
	default:
		entry.Debug(string(rec.Type))
	}
}

func (o *LogObserver) Snapshot(snap Snapshot) {
	o.logger.WithFields(logrus.Fields{
		"config":  snap.ID,
		"step":    snap.Step,
		"pending": pendingTotal(snap),
	}).Debug("Snapshot")
}

func (o *LogObserver) Final(res *Result) {
	o.logger.WithFields(logrus.Fields{
		"run_id":    res.RunID,
		"reason":    res.Reason,
		"steps":     res.Steps,
		"events":    res.Events,
		"decided":   res.DecidedCount(),
		"agreement": res.Agreement(),
	}).Info("Run finished")
}

func pendingTotal(snap Snapshot) int {
	total := 0
	for _, msgs := range snap.Mailboxes {
		total += len(msgs)
	}
	return total
}
