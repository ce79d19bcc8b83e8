package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/simulation"
)

// autoRecordName asks the recorder to generate a database name.
const autoRecordName = "auto"

var simulateCmd = &cobra.Command{
	Use: "simulate <cache size> <block size> <associativity> " +
		"<prefetch size> <trace file>",
	Short: "Replay a trace and report cache hits and misses.",
	Long: `Replay a trace and report cache hits and misses.

Sizes are in bytes and must be powers of two. Associativity is one of
"direct", "full" (or "assoc"), or "set:N" (or "assoc:N").`,
	Args: cobra.ExactArgs(5),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("record", "",
		"Record every access into an SQLite database, --record=<name>. "+
			"Without a name, a unique one is generated. Overrides "+
			envRecord+".")
	simulateCmd.Flags().Lookup("record").NoOptDefVal = autoRecordName
	simulateCmd.Flags().String("record-clickhouse", "",
		"Record every access into the ClickHouse database given by this DSN "+
			"instead of SQLite. Overrides "+envClickHouseDSN+".")
	simulateCmd.Flags().Bool("monitor", false,
		"Serve simulation progress and statistics over HTTP.")
	simulateCmd.Flags().Int("port", 0,
		"Port of the monitor. 0 picks a free port. Overrides "+
			envMonitorPort+".")
	simulateCmd.Flags().Bool("open-browser", false,
		"Open the monitor page in a browser.")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cacheBuilder, err := parseCacheArgs(args[:4])
	if err != nil {
		return err
	}

	traceFile, err := trace.Open(args[4])
	if err != nil {
		return err
	}
	defer traceFile.Close()

	simBuilder := simulation.MakeBuilder().WithCacheBuilder(cacheBuilder)

	recorder, err := openRecorder(cmd)
	if err != nil {
		return err
	}

	if recorder != nil {
		defer closeRecorder(recorder)

		simBuilder = simBuilder.WithDataRecorder(recorder)
	}

	if monitorEnabled, _ := cmd.Flags().GetBool("monitor"); monitorEnabled {
		monitor, err := startMonitor(cmd)
		if err != nil {
			return err
		}
		defer monitor.Close()

		simBuilder = simBuilder.WithMonitor(monitor)
	}

	sim, err := simBuilder.Build()
	if err != nil {
		return err
	}

	g := sim.Cache().Geometry()
	logger.WithFields(logrus.Fields{
		"sets":     g.NumSets,
		"ways":     g.Ways,
		"prefetch": sim.Cache().PrefetchSize(),
	}).Info("Cache built")

	result, err := sim.RunSeeker(args[4], traceFile)
	if err != nil {
		return err
	}

	logger.WithField("hit_rate", result.Stats.HitRate()).Info("Trace replayed")

	printResult(cmd.OutOrStdout(), result)

	return nil
}

func parseCacheArgs(args []string) (cache.Builder, error) {
	cacheSize, err := parseSize("cache size", args[0])
	if err != nil {
		return cache.Builder{}, err
	}

	blockSize, err := parseSize("block size", args[1])
	if err != nil {
		return cache.Builder{}, err
	}

	prefetchSize, err := strconv.Atoi(args[3])
	if err != nil {
		return cache.Builder{}, fmt.Errorf("%w: prefetch size %q",
			cache.ErrInvalidConfig, args[3])
	}

	b := cache.MakeBuilder().
		WithCacheSize(cacheSize).
		WithBlockSize(blockSize).
		WithAssociativity(args[2]).
		WithPrefetchSize(prefetchSize)

	if _, err := b.Geometry(); err != nil {
		return cache.Builder{}, err
	}

	return b, nil
}

func parseSize(name, arg string) (uint64, error) {
	size, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", cache.ErrInvalidConfig, name, arg)
	}

	return size, nil
}

// openRecorder returns nil if nothing should be recorded.
func openRecorder(cmd *cobra.Command) (datarecording.DataRecorder, error) {
	dsn, _ := cmd.Flags().GetString("record-clickhouse")
	if !cmd.Flags().Changed("record-clickhouse") {
		dsn = os.Getenv(envClickHouseDSN)
	}

	recordName, err := resolveRecordName(cmd)
	if err != nil {
		return nil, err
	}

	if dsn != "" && recordName != "" {
		return nil, errors.New(
			"cannot record into SQLite and ClickHouse at the same time")
	}

	if dsn != "" {
		logger.Info("Recording into ClickHouse")
		return datarecording.NewClickHouse(dsn)
	}

	if recordName == "" {
		return nil, nil
	}

	if recordName == autoRecordName {
		recordName = ""
	}

	return datarecording.New(recordName)
}

// resolveRecordName returns an empty string if nothing should be recorded.
func resolveRecordName(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("record") {
		return cmd.Flags().GetString("record")
	}

	env := os.Getenv(envRecord)
	switch env {
	case "", "0", "false":
		return "", nil
	case "1", "true":
		return autoRecordName, nil
	}

	return env, nil
}

func startMonitor(cmd *cobra.Command) (*monitoring.Monitor, error) {
	port, _ := cmd.Flags().GetInt("port")
	if !cmd.Flags().Changed("port") {
		if env, ok := os.LookupEnv(envMonitorPort); ok {
			p, err := strconv.Atoi(env)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", envMonitorPort, err)
			}

			port = p
		}
	}

	monitor := monitoring.NewMonitor().WithPortNumber(port)

	url, err := monitor.StartServer()
	if err != nil {
		return nil, err
	}

	logger.Infof("Monitoring simulation at %s", url)

	if open, _ := cmd.Flags().GetBool("open-browser"); open {
		if err := monitoring.OpenInBrowser(url); err != nil {
			logger.WithError(err).Warn("Cannot open browser")
		}
	}

	return monitor, nil
}

func closeRecorder(recorder datarecording.DataRecorder) {
	if err := recorder.Close(); err != nil {
		logger.WithError(err).Error("Cannot close the database")
	}
}

func printResult(w io.Writer, result simulation.Result) {
	label := color.New(color.FgCyan, color.Bold)
	hits := color.New(color.FgGreen)
	misses := color.New(color.FgRed)

	fmt.Fprintf(w, "%s %s\n",
		label.Sprint("Cache Hits:"), hits.Sprint(result.Hits))
	fmt.Fprintf(w, "%s %s\n",
		label.Sprint("Cache Misses:"), misses.Sprint(result.Misses))
}
