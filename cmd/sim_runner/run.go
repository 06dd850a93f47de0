package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/miretskiy/mm1ksim/recording"
	"github.com/miretskiy/mm1ksim/report"
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and compare it with theory",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadSimConfig()
		if err != nil {
			return err
		}
		return runOnce(cmd.OutOrStdout(), config)
	},
}

func init() {
	runCmd.Flags().String("format", "auto", "output format (auto, text, json); auto is text on a terminal")
	runCmd.Flags().Bool("trace", false, "record every event when --db is set")
	viper.BindPFlag("format", runCmd.Flags().Lookup("format"))
	viper.BindPFlag("trace", runCmd.Flags().Lookup("trace"))
}

// runOnce simulates config and hands the result to every configured output
func runOnce(w io.Writer, config simulator.SimConfig) (err error) {
	sim, err := simulator.NewSimulator(config)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"rho": config.Rho(), "seed": sim.Seed()})
	sim.SetLogger(log)

	var recorder *recording.SQLiteRecorder
	runID := recording.NewRunID()
	if db := viper.GetString("db"); db != "" {
		recorder, err = recording.NewSQLiteRecorder(db)
		if err != nil {
			return err
		}
		defer closeRecorder(recorder, &err)
		if viper.GetBool("trace") {
			sim.AcceptHook(recording.NewEventTracer(recorder, runID))
		}
	}

	started := time.Now()
	result, err := sim.Result()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"events":  result.Events,
		"elapsed": time.Since(started),
	}).Info("simulation completed")

	if err := writeResult(w, result, viper.GetString("format")); err != nil {
		return err
	}

	if out := viper.GetString("out"); out != "" {
		if err := recording.NewLineFile(out).Write(result); err != nil {
			return err
		}
	}

	if recorder != nil {
		if err := recorder.RecordRun(runID, result); err != nil {
			return err
		}
		if err := recorder.RecordElements(runID, sim.Collector().Elements()); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"db": recorder.Name(), "runID": runID}).Info("run recorded")
	}
	return nil
}

// closeRecorder flushes and closes r, joining its error into *err
func closeRecorder(r *recording.SQLiteRecorder, err *error) {
	*err = errors.Join(*err, r.Close())
}

func writeResult(w io.Writer, result simulator.RunResult, format string) error {
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			format = "text"
		}
	}

	switch format {
	case "text":
		return report.NewReporter(w).Write(result)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return fmt.Errorf("unknown format %q (must be auto, text or json)", format)
	}
}
