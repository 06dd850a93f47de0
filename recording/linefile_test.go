package recording

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(simulator.Summary{MeanCount: 4.25, MeanSojourn: 5.5, LossRate: 0})
	require.Equal(t, "4.25 5.5 0\n", line)
}

func TestLineFile_AppendsNeverTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	sink := NewLineFile(path)
	require.Equal(t, path, sink.Path())

	require.NoError(t, sink.Write(simulator.RunResult{
		Empirical: simulator.Summary{MeanCount: 1, MeanSojourn: 2, LossRate: 0.5},
	}))
	require.NoError(t, sink.Write(simulator.RunResult{
		Empirical: simulator.Summary{MeanCount: 3, MeanSojourn: 4, LossRate: 0.25},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Equal(t, []string{"previous run", "1 2 0.5", "3 4 0.25"}, lines)
}

func TestLineFile_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.csv")

	result, err := simulator.Simulate(simulator.SimConfig{
		ArrivalRate: 0.5, ServiceRate: 1, Capacity: 5, FinishTime: 500, RandomSeed: 3,
	})
	require.NoError(t, err)
	require.NoError(t, NewLineFile(path).Write(result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, FormatLine(result.Empirical), string(data))
}

func TestNewLineFile_DefaultPath(t *testing.T) {
	require.Equal(t, DefaultLineFile, NewLineFile("").Path())
}
