package sweep

import (
	"context"
	"fmt"

	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// Sink consumes completed runs, in ρ order
type Sink interface {
	Write(result simulator.RunResult) error
}

// SinkFunc adapts a plain function to the Sink interface
type SinkFunc func(result simulator.RunResult) error

// Write calls f(result)
func (f SinkFunc) Write(result simulator.RunResult) error {
	return f(result)
}

// Run simulates every point of the plan concurrently and then hands the
// results to each sink in ρ order. Every point owns its engine and random
// source, so runs share no state. The first failing point or a cancelled ctx
// stops scheduling of the remaining points.
func Run(ctx context.Context, plan Plan, sinks ...Sink) ([]simulator.RunResult, error) {
	points, err := plan.Points()
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("component", "sweep")
	log.WithFields(logrus.Fields{
		"points":      len(points),
		"parallelism": plan.parallelism(),
	}).Info("sweep started")

	results := make([]simulator.RunResult, len(points))
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(plan.parallelism())

	for i, config := range points {
		i, config := i, config
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := simulator.Simulate(config)
			if err != nil {
				return fmt.Errorf("sweep point %d (rho=%.4f): %w", i, config.Rho(), err)
			}
			results[i] = result
			log.WithFields(logrus.Fields{
				"rho":       config.Rho(),
				"seed":      result.Seed,
				"meanCount": result.Empirical.MeanCount,
			}).Debug("sweep point done")
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	for _, result := range results {
		for _, sink := range sinks {
			if err := sink.Write(result); err != nil {
				return results, fmt.Errorf("sink failed at rho=%.4f: %w", result.Theory.Rho, err)
			}
		}
	}

	log.Info("sweep finished")
	return results, nil
}
