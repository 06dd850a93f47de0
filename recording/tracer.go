package recording

import (
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/sirupsen/logrus"
)

// EventTracer is a simulator hook that records every processed event together
// with the server and wait line occupancy right after it
type EventTracer struct {
	recorder *SQLiteRecorder
	runID    string
	step     int
	failed   bool
}

// NewEventTracer creates a tracer writing under runID
func NewEventTracer(recorder *SQLiteRecorder, runID string) *EventTracer {
	return &EventTracer{recorder: recorder, runID: runID}
}

// Func records the event at HookPosAfterEvent and ignores other positions
func (t *EventTracer) Func(ctx simulator.HookCtx) {
	if ctx.Pos != simulator.HookPosAfterEvent || t.failed {
		return
	}

	event := ctx.Item.(simulator.Event)
	t.step++
	err := t.recorder.insert(eventsTable, EventRow{
		RunID:    t.runID,
		Step:     t.step,
		Time:     ctx.Now,
		Kind:     event.Type().String(),
		Element:  event.Subject().Seq(),
		Busy:     ctx.Sim.Server().Busy(),
		Waiting:  ctx.Sim.WaitLineLen(),
		Recorded: ctx.Sim.Collector().Len(),
	})
	if err != nil {
		// Tracing stops at the first failure, the run itself continues
		t.failed = true
		logrus.WithError(err).WithField("runID", t.runID).Error("event tracing stopped")
	}
}

// Steps returns the number of events traced
func (t *EventTracer) Steps() int {
	return t.step
}
