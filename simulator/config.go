package simulator

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DrainPolicy decides which unfinished elements are finalized when the
// observation horizon closes
type DrainPolicy int

const (
	DrainWaitLine DrainPolicy = iota // Only waiting elements are drained; the one in service is left out
	DrainAll                         // Waiting elements and the one in service are drained
)

// String returns the string representation of DrainPolicy
func (dp DrainPolicy) String() string {
	switch dp {
	case DrainWaitLine:
		return "waitline"
	case DrainAll:
		return "all"
	default:
		return "waitline"
	}
}

// ParseDrainPolicy parses a string into DrainPolicy
func ParseDrainPolicy(s string) (DrainPolicy, error) {
	switch s {
	case "waitline", "":
		return DrainWaitLine, nil
	case "all":
		return DrainAll, nil
	default:
		return DrainWaitLine, fmt.Errorf("invalid drain policy: %s (must be 'waitline' or 'all')", s)
	}
}

// MarshalJSON implements json.Marshaler for DrainPolicy
func (dp DrainPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(dp.String())
}

// UnmarshalJSON implements json.Unmarshaler for DrainPolicy
func (dp *DrainPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDrainPolicy(s)
	if err != nil {
		return err
	}
	*dp = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for DrainPolicy
func (dp DrainPolicy) MarshalYAML() (interface{}, error) {
	return dp.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for DrainPolicy
func (dp *DrainPolicy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDrainPolicy(s)
	if err != nil {
		return err
	}
	*dp = parsed
	return nil
}

// SimConfig holds the parameters of one M/M/1/K run
type SimConfig struct {
	ArrivalRate float64 `json:"arrivalRate" yaml:"arrivalRate"` // λ, mean arrivals per unit time
	ServiceRate float64 `json:"serviceRate" yaml:"serviceRate"` // μ, mean service completions per unit time
	Capacity    int     `json:"capacity" yaml:"capacity"`       // K, one in service plus K-1 waiting
	StartTime   float64 `json:"startTime" yaml:"startTime"`     // Start of the observation window
	FinishTime  float64 `json:"finishTime" yaml:"finishTime"`   // End of the observation window

	RandomSeed  int64       `json:"randomSeed" yaml:"randomSeed"`   // Random seed for reproducibility (0 = random seed)
	DrainPolicy DrainPolicy `json:"drainPolicy" yaml:"drainPolicy"` // What to finalize at the horizon (default "waitline")
}

// DefaultConfig returns the reference run: ρ = 0.5, K = 100, horizon 10000
func DefaultConfig() SimConfig {
	return SimConfig{
		ArrivalRate: 0.5,
		ServiceRate: 1.0,
		Capacity:    100,
		StartTime:   0.0,
		FinishTime:  10000.0,
		RandomSeed:  0,
		DrainPolicy: DrainWaitLine,
	}
}

// Rho returns the offered load λ/μ
func (c *SimConfig) Rho() float64 {
	return c.ArrivalRate / c.ServiceRate
}

// Window returns the length of the observation window
func (c *SimConfig) Window() float64 {
	return c.FinishTime - c.StartTime
}

// Validate checks the parameters before a run starts. Nothing is clamped.
func (c *SimConfig) Validate() error {
	if !isFinite(c.ArrivalRate) || c.ArrivalRate <= 0 {
		return ErrInvalidConfig("arrivalRate must be > 0")
	}
	if !isFinite(c.ServiceRate) || c.ServiceRate <= 0 {
		return ErrInvalidConfig("serviceRate must be > 0")
	}
	if c.Capacity < 1 {
		return ErrInvalidConfig("capacity must be >= 1")
	}
	if !isFinite(c.StartTime) || !isFinite(c.FinishTime) {
		return ErrInvalidConfig("startTime and finishTime must be finite")
	}
	if c.FinishTime <= c.StartTime {
		return ErrInvalidConfig("finishTime must be > startTime")
	}
	if c.DrainPolicy != DrainWaitLine && c.DrainPolicy != DrainAll {
		return ErrInvalidConfig(fmt.Sprintf("unknown drainPolicy %d", int(c.DrainPolicy)))
	}
	return nil
}

// LoadConfig reads a YAML (or JSON) configuration file on top of DefaultConfig
func LoadConfig(path string) (SimConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
