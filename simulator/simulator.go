package simulator

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is a PURE discrete event simulator of an M/M/1/K queue with NO
// concurrency primitives. All state is accessed single-threaded via Step().
// Independent runs share nothing and may execute on separate goroutines.
type Simulator struct {
	hookableBase

	config      SimConfig
	variates    *VariateGenerator // the run's only random source
	queue       *EventQueue
	server      Server
	waitLine    *WaitLine
	collector   *Collector
	virtualTime float64
	nextSeq     int  // Sequence number of the next element created
	arrivals    int  // Arrival events processed
	departures  int  // Departure events processed
	processed   int  // Events processed
	finished    bool // Horizon reached and drain done

	log *logrus.Entry
}

// NewSimulator validates config and returns a simulator with its first arrival
// scheduled at StartTime + Exp(λ)
func NewSimulator(config SimConfig) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	variates := NewVariateGenerator(config.RandomSeed)
	// Pin the resolved seed so Config() and Reset() replay this exact run
	config.RandomSeed = variates.Seed()

	s := &Simulator{
		config:      config,
		variates:    variates,
		queue:       NewEventQueue(),
		waitLine:    NewWaitLine(config.Capacity - 1),
		collector:   NewCollector(config.StartTime, config.FinishTime),
		virtualTime: config.StartTime,
		log:         logrus.WithField("component", "simulator"),
	}

	first := s.newElement()
	s.queue.Push(NewArrivalEvent(config.StartTime+s.variates.mustNext(config.ArrivalRate), first))

	s.log.WithFields(logrus.Fields{
		"lambda": config.ArrivalRate,
		"mu":     config.ServiceRate,
		"k":      config.Capacity,
		"start":  config.StartTime,
		"finish": config.FinishTime,
		"seed":   config.RandomSeed,
	}).Debug("simulator initialized")

	return s, nil
}

// SetLogger replaces the logger used for lifecycle and per-event tracing
func (s *Simulator) SetLogger(entry *logrus.Entry) {
	s.log = entry
}

// Step processes exactly one event and returns false once the run is finished.
// After the event's transition the next pending event is inspected: if it lies
// beyond FinishTime the loop halts and the wait line is drained.
func (s *Simulator) Step() bool {
	if s.finished {
		return false
	}

	event := s.queue.Pop()
	if event == nil {
		panic("BUG: event queue is empty! Arrivals are self-perpetuating and should keep it populated.")
	}
	if event.Timestamp() < s.virtualTime {
		panic(fmt.Sprintf("BUG: cannot run event in the past, %s, now %.10f", event, s.virtualTime))
	}
	s.virtualTime = event.Timestamp()
	s.processed++

	hookCtx := HookCtx{Sim: s, Pos: HookPosBeforeEvent, Now: s.virtualTime, Item: event}
	s.invokeHook(hookCtx)

	s.processEvent(event)

	if occupancy := s.Occupancy(); occupancy > s.config.Capacity {
		panic(fmt.Sprintf("BUG: %d elements in system exceeds capacity %d at t=%.6f",
			occupancy, s.config.Capacity, s.virtualTime))
	}

	hookCtx.Pos = HookPosAfterEvent
	s.invokeHook(hookCtx)

	if next := s.queue.Peek(); next == nil || next.Timestamp() > s.config.FinishTime {
		s.finish()
	}
	return !s.finished
}

// StepUntil advances the simulation until the specified target virtual time is
// reached or the run finishes
func (s *Simulator) StepUntil(targetTime float64) float64 {
	for !s.finished && s.queue.Peek().Timestamp() <= targetTime {
		s.Step()
	}
	return s.virtualTime
}

// StepByDelta advances the simulation by the specified virtual time delta
func (s *Simulator) StepByDelta(delta float64) float64 {
	return s.StepUntil(s.virtualTime + delta)
}

// Run processes events until the horizon and returns the collector holding the
// terminal elements
func (s *Simulator) Run() *Collector {
	for s.Step() {
	}
	return s.collector
}

// Reset discards all progress and rebuilds the run from the same config and
// seed. Hooks and logger are kept.
func (s *Simulator) Reset() error {
	newSim, err := NewSimulator(s.config)
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	hooks := s.hooks
	logger := s.log
	*s = *newSim
	s.hooks = hooks
	s.log = logger
	return nil
}

// processEvent dispatches a single event
func (s *Simulator) processEvent(event Event) {
	switch e := event.(type) {
	case *ArrivalEvent:
		s.processArrival(e)
	case *DepartureEvent:
		s.processDeparture(e)
	default:
		panic(fmt.Sprintf("unknown event type: %T", e))
	}
}

// processArrival admits, queues or rejects the arriving element and schedules
// the next arrival
func (s *Simulator) processArrival(event *ArrivalEvent) {
	s.arrivals++
	e := event.Subject()
	e.enqueueTime = event.Timestamp()

	// The next arrival is drawn before any service time so the variate stream
	// is consumed in a fixed order
	interval := s.variates.mustNext(s.config.ArrivalRate)
	s.queue.Push(NewArrivalEvent(s.virtualTime+interval, s.newElement()))

	if !s.server.Busy() {
		s.startService(e)
		s.trace(event, "admitted to server")
		return
	}

	// Admitting e keeps busy + waiting <= K iff waiting <= K-2
	if s.waitLine.Len() <= s.config.Capacity-2 {
		if err := s.waitLine.Enqueue(e); err != nil {
			panic(fmt.Sprintf("BUG: %v with %d/%d waiting", err, s.waitLine.Len(), s.waitLine.Cap()))
		}
		s.trace(event, "queued")
		return
	}

	s.reject(e)
	s.trace(event, "rejected")
}

// processDeparture frees the server, pulls the head of the wait line into
// service and records the departed element
func (s *Simulator) processDeparture(event *DepartureEvent) {
	s.departures++
	e := event.Subject()
	if s.server.Occupant() != e {
		panic(fmt.Sprintf("BUG: departure of %s but server holds %v", e, s.server.Occupant()))
	}
	s.server.release()

	if next := s.waitLine.Dequeue(); next != nil {
		s.startService(next)
	}

	e.state = StateDeparted
	s.recordTerminal(e)
	s.trace(event, "departed")
}

// startService draws a service time, schedules the departure and fixes the
// element's sojourn time now rather than when it departs
func (s *Simulator) startService(e *Element) {
	serviceTime := s.variates.mustNext(s.config.ServiceRate)
	s.queue.Push(NewDepartureEvent(s.virtualTime+serviceTime, s.virtualTime, e))
	e.sojournTime = serviceTime + s.virtualTime - e.enqueueTime
	s.server.start(e)
}

// reject marks e as lost. Its sojourn time is exactly 0.
func (s *Simulator) reject(e *Element) {
	e.sojournTime = 0.0
	e.state = StateRejected
	s.recordTerminal(e)
}

// finish drains the wait line at the horizon. The element in service is only
// drained under DrainAll.
func (s *Simulator) finish() {
	s.finished = true

	drained := 0
	for _, e := range s.waitLine.Drain() {
		e.sojournTime = s.config.FinishTime - e.enqueueTime
		e.state = StateDrained
		s.recordTerminal(e)
		drained++
	}

	if s.config.DrainPolicy == DrainAll && s.server.Busy() {
		// The first arrival may land beyond the horizon; it never entered the window
		if e := s.server.Occupant(); e.enqueueTime <= s.config.FinishTime {
			s.server.release()
			e.sojournTime = s.config.FinishTime - e.enqueueTime
			e.state = StateDrained
			s.recordTerminal(e)
			drained++
		}
	}

	s.log.WithFields(logrus.Fields{
		"virtualTime": s.virtualTime,
		"events":      s.processed,
		"arrivals":    s.arrivals,
		"recorded":    s.collector.Len(),
		"drained":     drained,
		"inService":   s.server.Busy(),
	}).Debug("simulation finished")
}

func (s *Simulator) recordTerminal(e *Element) {
	if err := s.collector.Record(e); err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}
	s.invokeHook(HookCtx{Sim: s, Pos: HookPosElementTerminal, Now: s.virtualTime, Item: e})
}

func (s *Simulator) newElement() *Element {
	e := newElement(s.nextSeq)
	s.nextSeq++
	return e
}

// trace logs a processed event at trace level
func (s *Simulator) trace(event Event, outcome string) {
	if !s.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	s.log.WithFields(logrus.Fields{
		"t":       s.virtualTime,
		"event":   event.String(),
		"busy":    s.server.Busy(),
		"waiting": s.waitLine.Len(),
	}).Trace(outcome)
}

// Config returns a copy of the configuration, with the resolved random seed
func (s *Simulator) Config() SimConfig {
	return s.config
}

// Seed returns the random seed in use
func (s *Simulator) Seed() int64 {
	return s.config.RandomSeed
}

// VirtualTime returns the current virtual time
func (s *Simulator) VirtualTime() float64 {
	return s.virtualTime
}

// IsFinished returns true once the horizon has been reached
func (s *Simulator) IsFinished() bool {
	return s.finished
}

// Collector returns the statistics collector of this run
func (s *Simulator) Collector() *Collector {
	return s.collector
}

// Summary summarizes the elements recorded so far
func (s *Simulator) Summary() (Summary, error) {
	return s.collector.Summarize()
}

// Theory returns the closed-form metrics for this run's parameters
func (s *Simulator) Theory() TheoreticalMetrics {
	return TheoryFor(s.config)
}

// Server returns the service station (read-only use)
func (s *Simulator) Server() *Server {
	return &s.server
}

// WaitLineLen returns the number of waiting elements
func (s *Simulator) WaitLineLen() int {
	return s.waitLine.Len()
}

// Occupancy returns the number of elements in the system
func (s *Simulator) Occupancy() int {
	n := s.waitLine.Len()
	if s.server.Busy() {
		n++
	}
	return n
}

// Arrivals returns the number of arrival events processed
func (s *Simulator) Arrivals() int {
	return s.arrivals
}

// EventsProcessed returns the number of events processed
func (s *Simulator) EventsProcessed() int {
	return s.processed
}

// PendingEvents returns the number of scheduled events
func (s *Simulator) PendingEvents() int {
	return s.queue.Len()
}

// Snapshot is a JSON-friendly view of the live run
type Snapshot struct {
	VirtualTime float64 `json:"virtualTime"`
	Progress    float64 `json:"progress"` // Fraction of the window elapsed
	Busy        bool    `json:"busy"`
	Waiting     int     `json:"waiting"`
	Arrivals    int     `json:"arrivals"`
	Departures  int     `json:"departures"`
	Served      int     `json:"served"`
	Rejected    int     `json:"rejected"`
	Drained     int     `json:"drained"`
	Finished    bool    `json:"finished"`
}

// Snapshot returns the current state of the run
func (s *Simulator) Snapshot() Snapshot {
	progress := (s.virtualTime - s.config.StartTime) / s.config.Window()
	if progress > 1 {
		progress = 1
	}
	return Snapshot{
		VirtualTime: s.virtualTime,
		Progress:    progress,
		Busy:        s.server.Busy(),
		Waiting:     s.waitLine.Len(),
		Arrivals:    s.arrivals,
		Departures:  s.departures,
		Served:      s.collector.served,
		Rejected:    s.collector.rejected,
		Drained:     s.collector.drained,
		Finished:    s.finished,
	}
}
