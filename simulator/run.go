package simulator

import "fmt"

// RunResult is everything a caller needs from one completed run
type RunResult struct {
	Config     SimConfig          `json:"config"`
	Seed       int64              `json:"seed"`
	Empirical  Summary            `json:"empirical"`
	Theory     TheoreticalMetrics `json:"theory"`
	Comparison Comparison         `json:"comparison"`
	Events     int                `json:"events"`   // Events processed
	Arrivals   int                `json:"arrivals"` // Arrival events processed
}

// Simulate runs config to completion and summarizes it. Hooks, if any, are
// attached before the first event.
func Simulate(config SimConfig, hooks ...Hook) (RunResult, error) {
	sim, err := NewSimulator(config)
	if err != nil {
		return RunResult{}, err
	}
	for _, h := range hooks {
		sim.AcceptHook(h)
	}
	return sim.Result()
}

// Result runs the simulator to completion, if it is not already finished, and
// returns the summarized outcome
func (s *Simulator) Result() (RunResult, error) {
	s.Run()

	summary, err := s.collector.Summarize()
	if err != nil {
		return RunResult{}, fmt.Errorf("summarize run (seed %d): %w", s.Seed(), err)
	}
	theory := s.Theory()
	return RunResult{
		Config:     s.config,
		Seed:       s.Seed(),
		Empirical:  summary,
		Theory:     theory,
		Comparison: Compare(summary, theory),
		Events:     s.processed,
		Arrivals:   s.arrivals,
	}, nil
}
