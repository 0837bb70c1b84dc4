package constants

import "time"

const (
	// Capture defaults
	DefaultPollInterval = 5 * time.Millisecond
	DefaultQueueSize    = 1024

	// Wheel notch as reported by the host for one detent
	WheelDelta = 120

	// Trace format
	TraceHeader          = "time_seconds:X:Y:event:data"
	TraceFieldSeparator  = ":"
	TraceFieldCount      = 5
	TraceTimestampDigits = 4

	// Default trace location, relative to the working directory
	DefaultTraceFile = "mouse_trace.txt"

	// Default synthetic screen used by the uinput injector
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)
