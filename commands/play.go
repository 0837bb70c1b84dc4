package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/penwyp/go-mouse-recorder/internal/application/recorder"
	"github.com/penwyp/go-mouse-recorder/internal/backend"
	"github.com/penwyp/go-mouse-recorder/internal/util"
	"github.com/spf13/cobra"
)

var (
	playBackend      string
	playScreenWidth  int
	playScreenHeight int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Replay the trace file",
	Long: `Replays every event in the trace in order, waiting the recorded gap
before each one. Wheel events replay one notch in the recorded direction.

Backends:
- uinput: a virtual pointer device through /dev/uinput (linux, needs write access)
- dry-run: prints each injected operation with its offset`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playBackend, "backend", "uinput",
		"Playback backend (uinput, dry-run)")
	playCmd.Flags().IntVar(&playScreenWidth, "screen-width", 0,
		"Absolute axis width for uinput (default 1920 or the config value)")
	playCmd.Flags().IntVar(&playScreenHeight, "screen-height", 0,
		"Absolute axis height for uinput (default 1080 or the config value)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := *loadedConfig
	if playScreenWidth > 0 {
		cfg.ScreenWidth = playScreenWidth
	}
	if playScreenHeight > 0 {
		cfg.ScreenHeight = playScreenHeight
	}

	out := cmd.OutOrStdout()
	injector, release, err := openInjector(playBackend, &cfg, out)
	if err != nil {
		return err
	}
	defer release()

	controller, err := recorder.NewController(&cfg, recorder.Dependencies{Injector: injector})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	run, err := controller.BeginPlayback(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Playing %d events from %s\n", run.Events, cfg.TracePath)

	result, err := run.Wait()
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(out, "Playback stopped after %d of %d events.\n", result.Events, run.Events)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Playback complete.")
	util.LogInfo("Playback summary",
		util.F("events", result.Events),
		util.F("injected", result.Injected),
		util.F("slept", util.FormatDuration(result.Slept)))
	return nil
}

func openInjector(name string, cfg *recorder.Config, out io.Writer) (backend.Injector, func(), error) {
	switch name {
	case "uinput":
		u, err := backend.OpenUinput(cfg.ScreenWidth, cfg.ScreenHeight)
		if err != nil {
			return nil, nil, err
		}
		return u, func() {
			if err := u.Close(); err != nil {
				util.LogWarnf("Failed to destroy uinput device: %v", err)
			}
		}, nil
	case "dry-run":
		return backend.NewDryRun(out), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown playback backend %q (uinput, dry-run)", name)
	}
}
