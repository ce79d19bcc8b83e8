package cmd

import (
	"errors"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/mem/trace"
)

var gentraceCmd = &cobra.Command{
	Use:   "gentrace <trace file>",
	Short: "Generate a random trace.",
	Long: `Generate a trace of uniformly random 32-bit addresses, each read ` +
		`or written with equal probability, terminated by ` +
		trace.EOFMarker + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runGentrace,
}

func init() {
	rootCmd.AddCommand(gentraceCmd)

	gentraceCmd.Flags().Int("accesses", 1000, "Number of accesses.")
	gentraceCmd.Flags().Int64("seed", 0,
		"Seed of the random generator. 0 uses the current time.")
}

func runGentrace(cmd *cobra.Command, args []string) error {
	numAccesses, _ := cmd.Flags().GetInt("accesses")
	if numAccesses < 0 {
		return errors.New("the number of accesses cannot be negative")
	}

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}

	err = trace.Generate(f, numAccesses, rand.New(rand.NewSource(seed)))
	if err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"file":     args[0],
		"accesses": numAccesses,
		"seed":     seed,
	}).Info("Trace generated")

	return nil
}
