package sweep

import (
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/miretskiy/mm1ksim/simulator"
	"gopkg.in/yaml.v3"
)

// Plan describes a utilization sweep: one run per ρ in [RhoStart, RhoEnd],
// with the arrival rate derived as λ = ρμ.
type Plan struct {
	RhoStart    float64               `json:"rhoStart" yaml:"rhoStart"`
	RhoEnd      float64               `json:"rhoEnd" yaml:"rhoEnd"`
	RhoStep     float64               `json:"rhoStep" yaml:"rhoStep"`
	ServiceRate float64               `json:"serviceRate" yaml:"serviceRate"` // μ, fixed across points
	Capacity    int                   `json:"capacity" yaml:"capacity"`
	StartTime   float64               `json:"startTime" yaml:"startTime"`
	FinishTime  float64               `json:"finishTime" yaml:"finishTime"`
	Seed        int64                 `json:"seed" yaml:"seed"` // Base seed; point i uses Seed+i (0 = random per point)
	DrainPolicy simulator.DrainPolicy `json:"drainPolicy" yaml:"drainPolicy"`
	Parallelism int                   `json:"parallelism" yaml:"parallelism"` // Concurrent runs (0 = NumCPU)
}

// DefaultPlan is the reference sweep: ρ = 0.70..1.00 step 0.05, μ = 1, K = 50,
// horizon [0, 100000]
func DefaultPlan() Plan {
	return Plan{
		RhoStart:    0.70,
		RhoEnd:      1.00,
		RhoStep:     0.05,
		ServiceRate: 1.0,
		Capacity:    50,
		StartTime:   0,
		FinishTime:  100000,
	}
}

// rhoDigits bounds the precision of generated ρ values so accumulated step
// error cannot push the last point past RhoEnd
const rhoDigits = 1e9

// Points expands the plan into one validated configuration per ρ value
func (p Plan) Points() ([]simulator.SimConfig, error) {
	if !(p.RhoStep > 0) {
		return nil, simulator.ErrInvalidConfig("rhoStep must be > 0")
	}
	if !(p.RhoStart > 0) || p.RhoEnd < p.RhoStart {
		return nil, simulator.ErrInvalidConfig("rho range must satisfy 0 < rhoStart <= rhoEnd")
	}

	n := int(math.Floor((p.RhoEnd-p.RhoStart)/p.RhoStep+1e-9)) + 1
	points := make([]simulator.SimConfig, 0, n)
	for i := 0; i < n; i++ {
		rho := math.Round((p.RhoStart+float64(i)*p.RhoStep)*rhoDigits) / rhoDigits

		config := simulator.SimConfig{
			ArrivalRate: rho * p.ServiceRate,
			ServiceRate: p.ServiceRate,
			Capacity:    p.Capacity,
			StartTime:   p.StartTime,
			FinishTime:  p.FinishTime,
			DrainPolicy: p.DrainPolicy,
		}
		if p.Seed != 0 {
			config.RandomSeed = p.Seed + int64(i)
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("sweep point %d (rho=%.4f): %w", i, rho, err)
		}
		points = append(points, config)
	}
	return points, nil
}

func (p Plan) parallelism() int {
	if p.Parallelism > 0 {
		return p.Parallelism
	}
	return runtime.NumCPU()
}

// LoadPlan reads a YAML plan on top of DefaultPlan
func LoadPlan(path string) (Plan, error) {
	plan := DefaultPlan()

	data, err := os.ReadFile(path)
	if err != nil {
		return plan, fmt.Errorf("failed to read plan file: %w", err)
	}
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if _, err := plan.Points(); err != nil {
		return plan, fmt.Errorf("invalid plan: %w", err)
	}
	return plan, nil
}
