package simulator

import (
	"encoding/json"
	"fmt"
)

// ElementState is the lifecycle position of a simulated customer
type ElementState int

const (
	StateArriving ElementState = iota
	StateWaiting
	StateInService
	StateDeparted // served and left the system
	StateRejected // refused at arrival, system at capacity
	StateDrained  // still waiting when the horizon closed
)

func (s ElementState) String() string {
	switch s {
	case StateArriving:
		return "arriving"
	case StateWaiting:
		return "waiting"
	case StateInService:
		return "in_service"
	case StateDeparted:
		return "departed"
	case StateRejected:
		return "rejected"
	case StateDrained:
		return "drained"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalJSON implements json.Marshaler for ElementState
func (s ElementState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// IsTerminal reports whether the element has left the system for good.
func (s ElementState) IsTerminal() bool {
	return s == StateDeparted || s == StateRejected || s == StateDrained
}

// Element is one simulated customer (packet).
type Element struct {
	seq         int          // Monotonic arrival index
	enqueueTime float64      // Time it started waiting for service
	sojournTime float64      // Time spent in the system (0 for rejected elements)
	state       ElementState // Lifecycle state; terminal tag once recorded
	recorded    bool         // Set by Collector.Record
}

func newElement(seq int) *Element {
	return &Element{seq: seq, state: StateArriving}
}

func (e *Element) Seq() int             { return e.seq }
func (e *Element) EnqueueTime() float64 { return e.enqueueTime }
func (e *Element) SojournTime() float64 { return e.sojournTime }
func (e *Element) State() ElementState  { return e.state }

func (e *Element) String() string {
	return fmt.Sprintf("Element(#%d, %s, enq=%.3f, sojourn=%.3f)",
		e.seq, e.state, e.enqueueTime, e.sojournTime)
}

// ElementRecord is an immutable copy of a terminal element, safe to hand out.
type ElementRecord struct {
	Seq         int          `json:"seq"`
	EnqueueTime float64      `json:"enqueueTime"`
	SojournTime float64      `json:"sojournTime"`
	State       ElementState `json:"state"`
}

func (e *Element) record() ElementRecord {
	return ElementRecord{
		Seq:         e.seq,
		EnqueueTime: e.enqueueTime,
		SojournTime: e.sojournTime,
		State:       e.state,
	}
}
