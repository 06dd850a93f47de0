package report

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/stretchr/testify/require"
)

func TestPrompter_ReadsInOrder(t *testing.T) {
	in := strings.NewReader("0.8\n1.0\n50\n10000\n0\n")
	var out bytes.Buffer

	config, err := NewPrompter(in, &out).Prompt()
	require.NoError(t, err)
	require.Equal(t, 0.8, config.ArrivalRate)
	require.Equal(t, 1.0, config.ServiceRate)
	require.Equal(t, 50, config.Capacity)
	require.Equal(t, 10000.0, config.FinishTime)
	require.Equal(t, 0.0, config.StartTime)
	require.Equal(t, simulator.DrainWaitLine, config.DrainPolicy)

	prompts := out.String()
	require.Less(t, strings.Index(prompts, "arrival"), strings.Index(prompts, "service"))
	require.Less(t, strings.Index(prompts, "finish"), strings.Index(prompts, "start"))
	require.NotContains(t, prompts, "Restart")
}

func TestPrompter_RestartsOnBadInput(t *testing.T) {
	input := strings.Join([]string{
		// unparsable K: restart before finish time is asked
		"0.5", "1", "many",
		// parses but fails validation: finish <= start
		"0.5", "1", "10", "5", "5",
		// valid
		" 0.9 ", "1.5", "3", "200", "100",
	}, "\n") + "\n"
	var out bytes.Buffer

	config, err := NewPrompter(strings.NewReader(input), &out).Prompt()
	require.NoError(t, err)
	require.Equal(t, 0.9, config.ArrivalRate)
	require.Equal(t, 1.5, config.ServiceRate)
	require.Equal(t, 3, config.Capacity)
	require.Equal(t, 200.0, config.FinishTime)
	require.Equal(t, 100.0, config.StartTime)

	require.Equal(t, 2, strings.Count(out.String(), "Restart please"))
	require.Equal(t, 3, strings.Count(out.String(), "Enter parameters"))
}

func TestPrompter_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := NewPrompter(strings.NewReader("0.5\n1\n"), &out).Prompt()
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestPrompter_MaxAttempts(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("x\ny\nz\n"), &out)
	p.MaxAttempts = 2

	_, err := p.Prompt()
	require.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestPrompter_KeepsDefaultsForUnpromptedFields(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("1\n2\n3\n40\n0\n"), &out)
	p.Defaults.RandomSeed = 99
	p.Defaults.DrainPolicy = simulator.DrainAll

	config, err := p.Prompt()
	require.NoError(t, err)
	require.Equal(t, int64(99), config.RandomSeed)
	require.Equal(t, simulator.DrainAll, config.DrainPolicy)
}
