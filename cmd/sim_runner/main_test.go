package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestWriteResult(t *testing.T) {
	result, err := simulator.Simulate(simulator.SimConfig{
		ArrivalRate: 0.5, ServiceRate: 1, Capacity: 5, FinishTime: 1000, RandomSeed: 1,
	})
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, result, "json"))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Contains(t, decoded, "empirical")
		require.Contains(t, decoded, "theory")
		require.Equal(t, float64(1), decoded["seed"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, result, "text"))
		require.Contains(t, buf.String(), "Mean sojourn time")
	})

	t.Run("unknown", func(t *testing.T) {
		var buf bytes.Buffer
		require.Error(t, writeResult(&buf, result, "xml"))
	})
}

func TestRunOnceFlushesRecorderOnReturn(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs")
	out := filepath.Join(dir, "out.csv")
	settings := map[string]any{"db": db, "out": out, "format": "json", "trace": true}
	for key, value := range settings {
		viper.Set(key, value)
	}
	t.Cleanup(func() {
		for key := range settings {
			viper.Set(key, nil)
		}
	})

	config := simulator.SimConfig{ArrivalRate: 1.2, ServiceRate: 1, Capacity: 3, FinishTime: 200, RandomSeed: 9}
	var buf bytes.Buffer
	require.NoError(t, runOnce(&buf, config))

	var result simulator.RunResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))

	conn, err := sql.Open("sqlite3", db+".sqlite3")
	require.NoError(t, err)
	defer conn.Close()

	count := func(query string) int {
		var n int
		require.NoError(t, conn.QueryRow(query).Scan(&n))
		return n
	}
	require.Equal(t, 1, count("SELECT COUNT(*) FROM runs"))
	require.Equal(t, result.Empirical.Elements, count("SELECT COUNT(*) FROM elements"))
	require.Equal(t, result.Events, count("SELECT COUNT(*) FROM events"))

	line, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(line)), "\n"), 1)
}
