// Command schedsim-cli replays a recorded JSON trace of scheduler events
// against a single schedsim.Scheduler and prints the resulting statistics.
//
// It is the peripheral harness spec.md describes as an external
// collaborator: argument handling, trace parsing and textual output live
// here, never in the core.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-foundations/schedsim"
	"github.com/go-foundations/schedsim/internal/trace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var tracePath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "schedsim-cli",
		Short: "Replay a recorded scheduler trace and report statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(tracePath, verbose)
		},
	}

	cmd.Flags().StringVarP(&tracePath, "trace", "t", "", "path to a JSON trace file (required)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every handler invocation at debug level")
	_ = cmd.MarkFlagRequired("trace")

	return cmd
}

func runTrace(tracePath string, verbose bool) error {
	runID := uuid.New()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("run_id", runID.String()).Logger()

	f, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("schedsim-cli: %w", err)
	}
	defer f.Close()

	tf, err := trace.ParseFile(f)
	if err != nil {
		return fmt.Errorf("schedsim-cli: %w", err)
	}

	log.Info().Int("cores", tf.Cores).Str("scheme", tf.Scheme.String()).Int("events", len(tf.Events)).Msg("starting simulation")

	sched := schedsim.NewScheduler(tf.Cores, tf.Scheme)
	defer sched.CleanUp()

	err = trace.Run(sched, tf, func(d trace.Decision) {
		log.Info().
			Str("kind", string(d.Event.Kind)).
			Int("time", d.Event.Time).
			Int("result", d.Result).
			Msg("decision")
		log.Debug().
			Str("kind", string(d.Event.Kind)).
			Int("time", d.Event.Time).
			Int("result", d.Result).
			Str("debug_queue", sched.DebugQueue()).
			Msg("handled event")
	})
	if err != nil {
		return fmt.Errorf("schedsim-cli: %w", err)
	}

	fmt.Printf("average waiting time:    %.2f\n", sched.AverageWaitingTime())
	fmt.Printf("average turnaround time: %.2f\n", sched.AverageTurnaroundTime())
	fmt.Printf("average response time:   %.2f\n", sched.AverageResponseTime())
	fmt.Printf("final queue: %s\n", sched.DebugQueue())

	return nil
}
