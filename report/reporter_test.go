package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) simulator.RunResult {
	result, err := simulator.Simulate(simulator.SimConfig{
		ArrivalRate: 0.8, ServiceRate: 1, Capacity: 50, FinishTime: 20000, RandomSeed: 5,
	})
	require.NoError(t, err)
	return result
}

func TestReporter_Write(t *testing.T) {
	var buf bytes.Buffer
	result := sampleResult(t)

	require.NoError(t, NewReporter(&buf).Write(result))

	out := buf.String()
	for _, label := range []string{
		"Parameters", "λ=0.8", "μ=1", "K=50", "seed=5", "drain=waitline",
		"Mean number in system", "Mean sojourn time", "Loss rate",
		"empirical", "theoretical",
	} {
		require.Contains(t, out, label)
	}
}

func TestReporter_GroupsLargeCounts(t *testing.T) {
	var buf bytes.Buffer
	result := simulator.RunResult{
		Config:    simulator.DefaultConfig(),
		Empirical: simulator.Summary{Elements: 1234567, Served: 1234000, Rejected: 567},
	}
	require.NoError(t, NewReporter(&buf).Write(result))
	require.Contains(t, buf.String(), "1,234,567")
}

func TestWriteSweepTable(t *testing.T) {
	var buf bytes.Buffer
	results := []simulator.RunResult{sampleResult(t), sampleResult(t)}

	require.NoError(t, WriteSweepTable(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "meanCount")
	require.Contains(t, lines[1], "0.80")
}
