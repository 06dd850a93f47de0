package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func smallPlan() Plan {
	plan := DefaultPlan()
	plan.Capacity = 10
	plan.FinishTime = 2000
	plan.Seed = 1
	plan.Parallelism = 3
	return plan
}

func TestRun_DeliversResultsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)

	var delivered []float64
	sink.EXPECT().
		Write(gomock.Any()).
		DoAndReturn(func(result simulator.RunResult) error {
			delivered = append(delivered, result.Theory.Rho)
			return nil
		}).
		Times(7)

	results, err := Run(context.Background(), smallPlan(), sink)
	require.NoError(t, err)
	require.Len(t, results, 7)

	require.Len(t, delivered, 7)
	for i := 1; i < len(delivered); i++ {
		require.Greater(t, delivered[i], delivered[i-1], "sink must see increasing ρ")
	}
	for i, result := range results {
		require.Equal(t, int64(1+i), result.Seed)
		require.Greater(t, result.Empirical.Elements, 0)
	}
}

func TestRun_MatchesSequentialRuns(t *testing.T) {
	plan := smallPlan()
	results, err := Run(context.Background(), plan)
	require.NoError(t, err)

	points, err := plan.Points()
	require.NoError(t, err)
	for i, config := range points {
		sequential, err := simulator.Simulate(config)
		require.NoError(t, err)
		require.Equal(t, sequential, results[i], "point %d differs when run concurrently", i)
	}
}

func TestRun_SinkErrorStopsDelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := NewMockSink(ctrl)
	second := NewMockSink(ctrl)

	boom := errors.New("disk full")
	gomock.InOrder(
		first.EXPECT().Write(gomock.Any()).Return(nil),
		second.EXPECT().Write(gomock.Any()).Return(nil),
		first.EXPECT().Write(gomock.Any()).Return(boom),
	)

	_, err := Run(context.Background(), smallPlan(), first, second)
	require.ErrorIs(t, err, boom)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl) // no calls expected

	_, err := Run(ctx, smallPlan(), sink)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidPlan(t *testing.T) {
	plan := smallPlan()
	plan.RhoStep = 0
	_, err := Run(context.Background(), plan, SinkFunc(func(simulator.RunResult) error {
		t.Fatal("sink must not be called")
		return nil
	}))
	require.Error(t, err)
}
