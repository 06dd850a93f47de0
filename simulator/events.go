package simulator

import (
	"encoding/json"
	"fmt"
)

// EventType represents the type of simulation event
type EventType int

const (
	EventTypeArrival EventType = iota
	EventTypeDeparture
)

func (et EventType) String() string {
	switch et {
	case EventTypeArrival:
		return "arrival"
	case EventTypeDeparture:
		return "departure"
	default:
		return "unknown"
	}
}

// ParseEventType parses a string into an EventType
func ParseEventType(s string) (EventType, error) {
	switch s {
	case "arrival":
		return EventTypeArrival, nil
	case "departure":
		return EventTypeDeparture, nil
	default:
		return EventTypeArrival, fmt.Errorf("invalid event type: %s (must be 'arrival' or 'departure')", s)
	}
}

// MarshalJSON implements json.Marshaler for EventType
func (et EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(et.String())
}

// UnmarshalJSON implements json.Unmarshaler for EventType
func (et *EventType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEventType(s)
	if err != nil {
		return err
	}
	*et = parsed
	return nil
}

// Event is the base interface for all simulation events
type Event interface {
	Timestamp() float64 // Absolute virtual time
	Type() EventType
	Subject() *Element // The element the event concerns
	String() string
}

// ArrivalEvent is a customer reaching the system
type ArrivalEvent struct {
	timestamp float64
	element   *Element
}

func NewArrivalEvent(timestamp float64, element *Element) *ArrivalEvent {
	return &ArrivalEvent{
		timestamp: timestamp,
		element:   element,
	}
}

func (e *ArrivalEvent) Timestamp() float64 { return e.timestamp }
func (e *ArrivalEvent) Type() EventType    { return EventTypeArrival }
func (e *ArrivalEvent) Subject() *Element  { return e.element }
func (e *ArrivalEvent) String() string {
	return fmt.Sprintf("Arrival(t=%.3f, #%d)", e.timestamp, e.element.seq)
}

// DepartureEvent is the service completion of the element occupying the server
type DepartureEvent struct {
	timestamp float64
	startTime float64 // When service started
	element   *Element
}

func NewDepartureEvent(timestamp, startTime float64, element *Element) *DepartureEvent {
	return &DepartureEvent{
		timestamp: timestamp,
		startTime: startTime,
		element:   element,
	}
}

func (e *DepartureEvent) Timestamp() float64 { return e.timestamp }
func (e *DepartureEvent) StartTime() float64 { return e.startTime }
func (e *DepartureEvent) Type() EventType    { return EventTypeDeparture }
func (e *DepartureEvent) Subject() *Element  { return e.element }
func (e *DepartureEvent) String() string {
	return fmt.Sprintf("Departure(t=%.3f, #%d, service=%.3f)",
		e.timestamp, e.element.seq, e.timestamp-e.startTime)
}
