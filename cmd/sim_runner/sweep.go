package main

import (
	"os"
	"strings"

	"github.com/miretskiy/mm1ksim/recording"
	"github.com/miretskiy/mm1ksim/report"
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/miretskiy/mm1ksim/sweep"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var planFile string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one simulation per utilization level and compare each with theory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd)
	},
}

// runSweep runs the plan and writes one report per point plus a summary table
func runSweep(cmd *cobra.Command) (err error) {
	plan, err := loadPlan(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sinks := []sweep.Sink{report.NewReporter(out)}
	if path := viper.GetString("out"); path != "" {
		sinks = append(sinks, recording.NewLineFile(path))
	}
	if db := viper.GetString("db"); db != "" {
		recorder, openErr := recording.NewSQLiteRecorder(db)
		if openErr != nil {
			return openErr
		}
		defer closeRecorder(recorder, &err)
		sinks = append(sinks, recorder)
	}

	results, err := sweep.Run(cmd.Context(), plan, sinks...)
	if err != nil {
		return err
	}
	return report.WriteSweepTable(out, results)
}

func init() {
	flags := sweepCmd.Flags()
	defaults := sweep.DefaultPlan()
	flags.StringVar(&planFile, "plan", "", "sweep plan file (YAML)")
	flags.Float64("rho-start", defaults.RhoStart, "first utilization level")
	flags.Float64("rho-end", defaults.RhoEnd, "last utilization level")
	flags.Float64("rho-step", defaults.RhoStep, "utilization step")
	flags.Int("parallelism", 0, "concurrent runs (0 = number of CPUs)")
}

// loadPlan starts from --plan (or the default plan) and applies the flags the
// user set explicitly
func loadPlan(cmd *cobra.Command) (sweep.Plan, error) {
	plan := sweep.DefaultPlan()
	if planFile != "" {
		var err error
		if plan, err = sweep.LoadPlan(planFile); err != nil {
			return plan, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("rho-start") {
		plan.RhoStart, _ = flags.GetFloat64("rho-start")
	}
	if flags.Changed("rho-end") {
		plan.RhoEnd, _ = flags.GetFloat64("rho-end")
	}
	if flags.Changed("rho-step") {
		plan.RhoStep, _ = flags.GetFloat64("rho-step")
	}
	if flags.Changed("parallelism") {
		plan.Parallelism, _ = flags.GetInt("parallelism")
	}

	// Shared run parameters come from the root flags, env or config file
	for key, apply := range map[string]func(){
		"serviceRate": func() { plan.ServiceRate = viper.GetFloat64("serviceRate") },
		"capacity":    func() { plan.Capacity = viper.GetInt("capacity") },
		"startTime":   func() { plan.StartTime = viper.GetFloat64("startTime") },
		"finishTime":  func() { plan.FinishTime = viper.GetFloat64("finishTime") },
		"randomSeed":  func() { plan.Seed = viper.GetInt64("randomSeed") },
	} {
		if explicitlySet(cmd, key) {
			apply()
		}
	}
	if explicitlySet(cmd, "drainPolicy") {
		policy, err := simulator.ParseDrainPolicy(viper.GetString("drainPolicy"))
		if err != nil {
			return plan, err
		}
		plan.DrainPolicy = policy
	}

	logrus.WithFields(logrus.Fields{
		"rhoStart": plan.RhoStart,
		"rhoEnd":   plan.RhoEnd,
		"rhoStep":  plan.RhoStep,
		"capacity": plan.Capacity,
		"finish":   plan.FinishTime,
	}).Debug("sweep plan resolved")
	return plan, nil
}

var rootFlagForKey = map[string]string{
	"serviceRate": "mu",
	"capacity":    "capacity",
	"startTime":   "start",
	"finishTime":  "finish",
	"randomSeed":  "seed",
	"drainPolicy": "drain",
}

// explicitlySet reports whether key was given by flag, environment or config
// file rather than left at its flag default
func explicitlySet(cmd *cobra.Command, key string) bool {
	if f := cmd.Flags().Lookup(rootFlagForKey[key]); f != nil && f.Changed {
		return true
	}
	if _, ok := os.LookupEnv("MM1K_" + strings.ToUpper(key)); ok {
		return true
	}
	return viper.InConfig(key)
}
