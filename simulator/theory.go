package simulator

import "math"

// TheoreticalMetrics is the closed-form birth-death solution of M/M/1/K
type TheoreticalMetrics struct {
	Rho             float64 `json:"rho"`             // λ/μ
	MeanCount       float64 `json:"meanCount"`       // N, mean number in system
	MeanSojourn     float64 `json:"meanSojourn"`     // W = N / (λ(1-P_K))
	LossProbability float64 `json:"lossProbability"` // P_K, probability an arrival finds the system full
	Throughput      float64 `json:"throughput"`      // λ(1-P_K), admitted arrival rate
}

// ComputeTheory evaluates N, W and P_K for the given rates and capacity.
//
// With ρ = λ/μ:
//
//	P_K = (1-ρ)ρ^K / (1-ρ^(K+1))
//	N   = ρ/(1-ρ) - (K+1)ρ^(K+1) / (1-ρ^(K+1))
//
// The normalizing sum covers states 0..K, so the denominator is 1-ρ^(K+1) and
// not 1-ρ^K. Only that form gives ρ/(1+ρ) at K = 1.
//
// Both are evaluated through ρ^-K so that large K with ρ > 1 stays finite. At
// ρ = 1 the limits P_K = 1/(K+1) and N = K/2 are used.
func ComputeTheory(lambda, mu float64, k int) TheoreticalMetrics {
	rho := lambda / mu
	kf := float64(k)

	var pk, n float64
	if rho == 1.0 {
		pk = 1.0 / (kf + 1.0)
		n = kf / 2.0
	} else {
		pk = (1.0 - rho) / (math.Pow(rho, -kf) - rho)
		n = rho/(1.0-rho) - (kf+1.0)/(math.Pow(rho, -(kf+1.0))-1.0)
	}

	throughput := lambda * (1.0 - pk)
	return TheoreticalMetrics{
		Rho:             rho,
		MeanCount:       n,
		MeanSojourn:     n / throughput,
		LossProbability: pk,
		Throughput:      throughput,
	}
}

// TheoryFor evaluates ComputeTheory for a run configuration
func TheoryFor(config SimConfig) TheoreticalMetrics {
	return ComputeTheory(config.ArrivalRate, config.ServiceRate, config.Capacity)
}

// Comparison lines up empirical and theoretical values
type Comparison struct {
	MeanCountError   float64 `json:"meanCountError"`   // relative
	MeanSojournError float64 `json:"meanSojournError"` // relative
	LossRateError    float64 `json:"lossRateError"`    // absolute, P_K is often ~0
}

// Compare returns the deviation of an empirical summary from theory
func Compare(empirical Summary, theory TheoreticalMetrics) Comparison {
	return Comparison{
		MeanCountError:   relativeError(empirical.MeanCount, theory.MeanCount),
		MeanSojournError: relativeError(empirical.MeanSojourn, theory.MeanSojourn),
		LossRateError:    math.Abs(empirical.LossRate - theory.LossProbability),
	}
}

func relativeError(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}
