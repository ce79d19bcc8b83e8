// Package cmd provides the command-line interface for cachesim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const (
	envLogLevel      = "CACHESIM_LOG_LEVEL"
	envRecord        = "CACHESIM_RECORD"
	envMonitorPort   = "CACHESIM_MONITOR_PORT"
	envClickHouseDSN = "CACHESIM_CLICKHOUSE_DSN"

	defaultEnvFile = ".env"
)

var logger = logrus.New()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim replays memory traces through a set-associative cache.",
	Long: `cachesim replays memory traces through a set-associative cache ` +
		`with FIFO replacement and prefetch on miss, and reports the ` +
		`number of hits and misses.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warning",
		"Log level (panic, fatal, error, warning, info, debug, trace). "+
			"Overrides "+envLogLevel+".")
	rootCmd.PersistentFlags().String("env-file", "",
		"Load environment variables from this file instead of "+
			defaultEnvFile+".")

	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(cmd); err != nil {
		return err
	}

	levelName, _ := cmd.Flags().GetString("log-level")
	if !cmd.Flags().Changed("log-level") {
		if env, ok := os.LookupEnv(envLogLevel); ok {
			levelName = env
		}
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return err
	}

	logger.SetLevel(level)

	return nil
}

// loadEnvFile loads variables that are not already set. A missing default
// file is not an error; a missing explicit file is.
func loadEnvFile(cmd *cobra.Command) error {
	filename, _ := cmd.Flags().GetString("env-file")
	if filename == "" {
		err := godotenv.Load(defaultEnvFile)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("loading %s: %w", defaultEnvFile, err)
		}

		logger.Debugf("Loaded environment from %s", defaultEnvFile)

		return nil
	}

	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("loading %s: %w", filename, err)
	}

	logger.Debugf("Loaded environment from %s", filename)

	return nil
}
