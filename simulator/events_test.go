package simulator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventType_JSON(t *testing.T) {
	data, err := json.Marshal(EventTypeDeparture)
	require.NoError(t, err)
	require.Equal(t, `"departure"`, string(data))

	var et EventType
	require.NoError(t, json.Unmarshal([]byte(`"arrival"`), &et))
	require.Equal(t, EventTypeArrival, et)

	require.Error(t, json.Unmarshal([]byte(`"flush"`), &et))
}

func TestEvents_Accessors(t *testing.T) {
	e := newElement(7)

	arrival := NewArrivalEvent(3.5, e)
	require.Equal(t, 3.5, arrival.Timestamp())
	require.Equal(t, EventTypeArrival, arrival.Type())
	require.Same(t, e, arrival.Subject())
	require.Equal(t, "Arrival(t=3.500, #7)", arrival.String())

	departure := NewDepartureEvent(5.0, 4.0, e)
	require.Equal(t, 4.0, departure.StartTime())
	require.Equal(t, EventTypeDeparture, departure.Type())
	require.Equal(t, "Departure(t=5.000, #7, service=1.000)", departure.String())
}

func TestElementRecord_JSON(t *testing.T) {
	e := newElement(2)
	e.enqueueTime = 1.5
	e.sojournTime = 0
	e.state = StateRejected

	data, err := json.Marshal(e.record())
	require.NoError(t, err)
	require.JSONEq(t, `{"seq":2,"enqueueTime":1.5,"sojournTime":0,"state":"rejected"}`, string(data))

	require.True(t, StateDrained.IsTerminal())
	require.False(t, StateInService.IsTerminal())
	require.Equal(t, "unknown(42)", ElementState(42).String())
}
