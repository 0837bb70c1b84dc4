package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-mouse-recorder/internal/application/recorder"
	"github.com/penwyp/go-mouse-recorder/internal/core/constants"
	"github.com/penwyp/go-mouse-recorder/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Session inputs
	tracePath  string
	configPath string

	rootCmd = &cobra.Command{
		Use:   "go-mouse-recorder",
		Short: "Record and replay pointer activity",
		Long: `go-mouse-recorder captures pointer movement, button edges and wheel rotation
into a plain-text trace and replays it through a synthetic input device.

Examples:
  go-mouse-recorder record                          # Record from this terminal until q or Ctrl+C
  go-mouse-recorder record --duration 30s           # Record for 30 seconds
  go-mouse-recorder play                            # Replay through /dev/uinput
  go-mouse-recorder play --backend dry-run          # Print the replay schedule instead
  go-mouse-recorder inspect -o summary              # Show trace statistics
  go-mouse-recorder inspect --follow                # Stream rows while a recording runs`,
		SilenceUsage:      true,
		PersistentPreRunE: initRuntime,
	}

	// loadedConfig is populated by initRuntime before any subcommand runs.
	loadedConfig *recorder.Config
)

const (
	defaultConfigFile = "~/.go-mouse-recorder/config.yaml"
)

// logFilePath is a variable so tests can keep logs out of the home directory.
var logFilePath = "~/.go-mouse-recorder/logs/app.log"

func init() {
	rootCmd.PersistentFlags().StringVar(&tracePath, "trace", "",
		"Trace file path (default "+constants.DefaultTraceFile+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigFile,
		"Config file path (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

func initRuntime(cmd *cobra.Command, args []string) error {
	// Determine log level based on debug flag
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	// Initialize logging
	logFile := expandPath(logFilePath)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(logLevel, logFile, debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := recorder.LoadConfig(expandPath(configPath))
	if err != nil {
		return err
	}
	if tracePath != "" {
		cfg.TracePath = tracePath
	}
	cfg.TracePath = expandPath(cfg.TracePath)
	loadedConfig = cfg

	util.LogDebugf("Command %s using trace %s", cmd.Name(), cfg.TracePath)
	return nil
}

func Execute() error {
	defer util.CloseLogger()
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
