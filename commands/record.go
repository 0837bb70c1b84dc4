package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/application/recorder"
	"github.com/penwyp/go-mouse-recorder/internal/backend"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
	"github.com/spf13/cobra"
)

var (
	recordInterval time.Duration
	recordDuration time.Duration
	recordBackend  string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record pointer activity into the trace file",
	Long: `Starts a capture session. The trace file is truncated and rewritten.

Backends:
- terminal: xterm SGR mouse reports from the controlling terminal (positions in cells)
- scripted: a built-in demonstration path, useful to try playback without a pointer

The session ends on q, Ctrl+C, SIGINT, or when --duration elapses.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().DurationVar(&recordInterval, "interval", 0,
		"Polling interval (default 5ms or the config value)")
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 0,
		"Stop after this long (0 = until stopped)")
	recordCmd.Flags().StringVar(&recordBackend, "backend", "terminal",
		"Capture backend (terminal, scripted)")
}

// recordSource is a capture source plus the channel that signals a user stop
// and the cleanup to run before printing.
type recordSource struct {
	source  backend.Source
	stop    <-chan struct{}
	release func()
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg := *loadedConfig
	if recordInterval < 0 {
		return fmt.Errorf("interval must be positive, got %v", recordInterval)
	}
	if recordInterval > 0 {
		cfg.PollInterval = recordInterval
	}

	src, err := openRecordSource(recordBackend)
	if err != nil {
		return err
	}

	controller, err := recorder.NewController(&cfg, recorder.Dependencies{Source: src.source})
	if err != nil {
		src.release()
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	sessionID, err := controller.BeginRecording(ctx)
	if err != nil {
		src.release()
		return err
	}
	if recordBackend == "terminal" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s press q or Ctrl+C to stop.\r\n", util.FormatHeaderTitle("Recording..."))
	}

	waitForStop(ctx, controller, src.stop, recordDuration)

	result, err := controller.EndRecording()
	src.release()
	if err != nil {
		return fmt.Errorf("recording %s failed: %w", sessionID, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recording saved to: %s\n", cfg.TracePath)
	fmt.Fprintf(out, "Events: %s (wheel %s), duration %s\n",
		util.FormatNumber(result.Events), util.FormatNumber(result.Wheel), util.FormatDuration(result.Duration))
	return nil
}

func waitForStop(ctx context.Context, c *recorder.Controller, stop <-chan struct{}, limit time.Duration) {
	var timeout <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		util.LogInfo("Recording interrupted")
	case <-stop:
		util.LogInfo("Recording stopped by user")
	case <-timeout:
		util.LogInfo("Recording duration reached", util.F("duration", limit.String()))
	case <-c.RecordingDone():
		util.LogWarn("Recording ended on its own")
	}
}

func openRecordSource(name string) (*recordSource, error) {
	switch name {
	case "terminal":
		t := backend.NewTerminal(os.Stdin, os.Stdout)
		if err := t.Open(); err != nil {
			return nil, err
		}
		return &recordSource{
			source: t,
			stop:   t.Quit(),
			release: func() {
				if err := t.Close(); err != nil {
					util.LogWarnf("Failed to restore terminal: %v", err)
				}
			},
		}, nil

	case "scripted":
		s := backend.NewScripted(demoSamples()...)
		done := make(chan struct{})
		go func() {
			<-s.Exhausted()
			s.EmitWheel(-120)
			s.EmitWheel(-120)
			s.EmitWheel(120)
			close(done)
		}()
		return &recordSource{source: s, stop: done, release: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown capture backend %q (terminal, scripted)", name)
	}
}

// demoSamples traces a short diagonal, a left click and a right click.
func demoSamples() []backend.Sample {
	var samples []backend.Sample
	for i := 0; i <= 20; i++ {
		samples = append(samples, backend.Sample{Point: model.Point{X: 100 + i*5, Y: 100 + i*3}})
	}
	end := model.Point{X: 200, Y: 160}
	for i := 0; i < 10; i++ {
		samples = append(samples, backend.Sample{Point: end, Left: true})
	}
	for i := 0; i < 10; i++ {
		samples = append(samples, backend.Sample{Point: end})
	}
	for i := 0; i < 10; i++ {
		samples = append(samples, backend.Sample{Point: end, Right: true})
	}
	samples = append(samples, backend.Sample{Point: end})
	return samples
}
