package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTheory_SingleSlot(t *testing.T) {
	// With K = 1 both N and P_K reduce to ρ/(1+ρ)
	for _, rho := range []float64{0.2, 0.5, 0.9, 1.0, 1.7, 3.0} {
		th := ComputeTheory(rho, 1.0, 1)
		want := rho / (1 + rho)
		require.InDelta(t, want, th.LossProbability, 1e-12, "P_K at ρ=%.2f", rho)
		require.InDelta(t, want, th.MeanCount, 1e-12, "N at ρ=%.2f", rho)
	}
}

func TestComputeTheory_RhoOne(t *testing.T) {
	th := ComputeTheory(2.0, 2.0, 50)
	require.Equal(t, 1.0, th.Rho)
	require.InDelta(t, 1.0/51.0, th.LossProbability, 1e-15)
	require.InDelta(t, 25.0, th.MeanCount, 1e-15)
	require.InDelta(t, 2.0*(1-1.0/51.0), th.Throughput, 1e-12)
	require.InDelta(t, 25.0/th.Throughput, th.MeanSojourn, 1e-12)
}

func TestComputeTheory_NearRhoOneIsContinuous(t *testing.T) {
	at := ComputeTheory(1.0, 1.0, 50)
	below := ComputeTheory(0.999999, 1.0, 50)
	above := ComputeTheory(1.000001, 1.0, 50)

	require.InDelta(t, at.MeanCount, below.MeanCount, 1e-3)
	require.InDelta(t, at.MeanCount, above.MeanCount, 1e-3)
	require.InDelta(t, at.LossProbability, below.LossProbability, 1e-5)
	require.InDelta(t, at.LossProbability, above.LossProbability, 1e-5)
}

func TestComputeTheory_LightLoadLargeK(t *testing.T) {
	// Approaches M/M/1: N = ρ/(1-ρ) = 4, W = 1/(μ-λ) = 5
	th := ComputeTheory(0.8, 1.0, 50)
	require.InDelta(t, 4.0, th.MeanCount, 0.01)
	require.InDelta(t, 5.0, th.MeanSojourn, 0.01)
	require.Less(t, th.LossProbability, 1e-5)
	require.Greater(t, th.LossProbability, 0.0)
}

func TestComputeTheory_OverloadStaysFinite(t *testing.T) {
	// ρ^K overflows for ρ = 2, K = 2000; the result must not
	th := ComputeTheory(2.0, 1.0, 2000)
	require.False(t, math.IsNaN(th.MeanCount) || math.IsInf(th.MeanCount, 0))
	require.InDelta(t, 0.5, th.LossProbability, 1e-12, "P_K → 1 - 1/ρ")
	require.InDelta(t, 1999.0, th.MeanCount, 1e-9, "N → K - 1/(ρ-1)")
	require.InDelta(t, 1.0, th.Throughput, 1e-12, "throughput saturates at μ")
}

func TestCompare(t *testing.T) {
	empirical := Summary{MeanCount: 4.4, MeanSojourn: 4.5, LossRate: 0.01}
	theory := TheoreticalMetrics{MeanCount: 4.0, MeanSojourn: 5.0, LossProbability: 0.0}

	cmp := Compare(empirical, theory)
	require.InDelta(t, 0.1, cmp.MeanCountError, 1e-12)
	require.InDelta(t, 0.1, cmp.MeanSojournError, 1e-12)
	require.InDelta(t, 0.01, cmp.LossRateError, 1e-12)
}
