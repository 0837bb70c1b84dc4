package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/data/trace"
	"github.com/penwyp/go-mouse-recorder/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var (
	inspectOutput string
	inspectFollow bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show statistics for the trace file",
	Long: `Reads the trace and reports event counts per kind, duration, the bounding
box of recorded positions, file size and validation results (monotonic
timestamps, alternating button edges).

With --follow, rows are streamed as a running recording appends them.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "table",
		"Output format (table, json, summary, csv)")
	inspectCmd.Flags().BoolVarP(&inspectFollow, "follow", "f", false,
		"Stream rows as they are appended")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := loadedConfig.TracePath
	out := cmd.OutOrStdout()

	if inspectFollow {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", model.ErrTraceNotFound, path)
		}
		return trace.Follow(ctx, path, func(ev model.Event) error {
			_, err := fmt.Fprintln(out, trace.FormatEvent(ev))
			return err
		})
	}

	f, err := formatter.New(inspectOutput)
	if err != nil {
		return err
	}

	events, err := trace.ReadAll(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", model.ErrIO, path, err)
	}

	return f.Format(out, formatter.BuildTraceStats(path, info.Size(), events))
}
