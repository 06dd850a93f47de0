package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mm1k",
	Short: "M/M/1/K queue simulator",
	Long: `Discrete event simulation of a single server queue with Poisson arrivals,
exponential service and room for K customers, compared against the
closed-form birth-death solution.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(promptCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	// Flushes recorders registered with atexit
	atexit.Exit(0)
}

func init() {
	cobra.OnInitialize(initConfig)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	defaults := simulator.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("out", "out.csv", "append one result line per run to this file (empty disables)")
	flags.String("db", "", "record runs into <db>.sqlite3")

	flags.Float64("lambda", defaults.ArrivalRate, "mean arrival rate λ")
	flags.Float64("mu", defaults.ServiceRate, "mean service rate μ")
	flags.Int("capacity", defaults.Capacity, "system capacity K")
	flags.Float64("start", defaults.StartTime, "start of the observation window")
	flags.Float64("finish", defaults.FinishTime, "end of the observation window")
	flags.Int64("seed", defaults.RandomSeed, "random seed (0 = random)")
	flags.String("drain", defaults.DrainPolicy.String(), "horizon drain policy (waitline, all)")

	// Flag names differ from the config file keys
	for key, flag := range map[string]string{
		"log-level":   "log-level",
		"out":         "out",
		"db":          "db",
		"arrivalRate": "lambda",
		"serviceRate": "mu",
		"capacity":    "capacity",
		"startTime":   "start",
		"finishTime":  "finish",
		"randomSeed":  "seed",
		"drainPolicy": "drain",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env")
	}

	viper.SetEnvPrefix("MM1K")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if strings.HasSuffix(cfgFile, ".json") {
			viper.SetConfigType("json")
		}
		if err := viper.ReadInConfig(); err != nil {
			logrus.WithError(err).Fatal("failed to read config file")
		}
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

// loadSimConfig resolves flags, MM1K_* environment variables and the config
// file, in that order of precedence, into a validated run configuration
func loadSimConfig() (simulator.SimConfig, error) {
	policy, err := simulator.ParseDrainPolicy(viper.GetString("drainPolicy"))
	if err != nil {
		return simulator.SimConfig{}, err
	}

	config := simulator.SimConfig{
		ArrivalRate: viper.GetFloat64("arrivalRate"),
		ServiceRate: viper.GetFloat64("serviceRate"),
		Capacity:    viper.GetInt("capacity"),
		StartTime:   viper.GetFloat64("startTime"),
		FinishTime:  viper.GetFloat64("finishTime"),
		RandomSeed:  viper.GetInt64("randomSeed"),
		DrainPolicy: policy,
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
