package simulator

import (
	"errors"
	"fmt"
	"sort"
)

// Summary holds the empirical metrics of one run
type Summary struct {
	MeanCount   float64 `json:"meanCount"`   // Σ sojourn / observation window
	MeanSojourn float64 `json:"meanSojourn"` // Σ sojourn / terminal elements
	LossRate    float64 `json:"lossRate"`    // rejected / terminal elements

	Elements int     `json:"elements"` // Terminal elements recorded
	Served   int     `json:"served"`   // Departed after service
	Rejected int     `json:"rejected"` // Refused at arrival (sojourn exactly 0)
	Drained  int     `json:"drained"`  // Finalized at the horizon
	Window   float64 `json:"window"`   // FinishTime - StartTime

	// Sojourn distribution of served elements only
	P50ServedSojourn float64 `json:"p50ServedSojourn"`
	P99ServedSojourn float64 `json:"p99ServedSojourn"`
}

// Collector accumulates terminal elements and derives the empirical metrics
// once the run is over
type Collector struct {
	window     float64
	records    []ElementRecord
	sumSojourn float64 // running sum in record order
	served     int
	rejected   int
	drained    int
}

// NewCollector creates a collector for the window [startTime, finishTime]
func NewCollector(startTime, finishTime float64) *Collector {
	return &Collector{
		window:  finishTime - startTime,
		records: make([]ElementRecord, 0, 1024),
	}
}

// Record appends a terminal element. The element is copied, later mutations
// are not observed.
func (c *Collector) Record(e *Element) error {
	if e == nil {
		return errors.New("record: nil element")
	}
	if !e.state.IsTerminal() {
		return fmt.Errorf("record: element #%d is %s, not terminal", e.seq, e.state)
	}
	if e.recorded {
		return fmt.Errorf("record: element #%d already recorded", e.seq)
	}
	e.recorded = true

	c.records = append(c.records, e.record())
	c.sumSojourn += e.sojournTime
	switch e.state {
	case StateDeparted:
		c.served++
	case StateRejected:
		c.rejected++
	case StateDrained:
		c.drained++
	}
	return nil
}

// Len returns the number of recorded elements
func (c *Collector) Len() int {
	return len(c.records)
}

// Summarize computes the aggregate metrics over every recorded element.
// It returns ErrNoElements when nothing was recorded.
func (c *Collector) Summarize() (Summary, error) {
	n := len(c.records)
	if n == 0 {
		return Summary{Window: c.window}, ErrNoElements
	}

	served := make([]float64, 0, c.served)
	for _, r := range c.records {
		if r.State == StateDeparted {
			served = append(served, r.SojournTime)
		}
	}
	sort.Float64s(served)

	return Summary{
		MeanCount:        c.sumSojourn / c.window,
		MeanSojourn:      c.sumSojourn / float64(n),
		LossRate:         float64(c.rejected) / float64(n),
		Elements:         n,
		Served:           c.served,
		Rejected:         c.rejected,
		Drained:          c.drained,
		Window:           c.window,
		P50ServedSojourn: percentile(served, 0.50),
		P99ServedSojourn: percentile(served, 0.99),
	}, nil
}

// Elements returns a copy of the recorded elements in record order
func (c *Collector) Elements() []ElementRecord {
	out := make([]ElementRecord, len(c.records))
	copy(out, c.records)
	return out
}

// SojournTimes returns the sojourn times in record order
func (c *Collector) SojournTimes() []float64 {
	out := make([]float64, len(c.records))
	for i, r := range c.records {
		out[i] = r.SojournTime
	}
	return out
}

// ZeroSojournCount counts recorded elements whose sojourn time is exactly 0,
// the numeric rejection marker
func (c *Collector) ZeroSojournCount() int {
	count := 0
	for _, r := range c.records {
		if r.SojournTime == 0 {
			count++
		}
	}
	return count
}

func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if p <= 0 {
		return sortedValues[0]
	}
	if p >= 1 {
		return sortedValues[len(sortedValues)-1]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(len(sortedValues)-1)
	lowerIdx := int(rank)
	upperIdx := lowerIdx + 1
	if upperIdx >= len(sortedValues) {
		return sortedValues[lowerIdx]
	}

	fraction := rank - float64(lowerIdx)
	return sortedValues[lowerIdx]*(1-fraction) + sortedValues[upperIdx]*fraction
}
