package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/scalpel-dev/scalpel/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// StdioMode tracks whether a stdio transport (JSON process or MCP) owns
// stdout; debug output is suppressed entirely in that case so it can never
// corrupt the protocol stream.
var StdioMode = false

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
)

// SetStdioMode marks stdout as owned by a wire protocol.
func SetStdioMode(enabled bool) {
	StdioMode = enabled
}

// SetDebugOutput sets a custom writer for debug output. Pass nil to restore
// the default (stderr).
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// IsDebugEnabled reports whether debug logging is active.
func IsDebugEnabled() bool {
	if StdioMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	return os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
}

// Log writes a timestamped debug line for the given component.
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	debugMutex.Lock()
	defer debugMutex.Unlock()
	w := debugOutput
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", time.Now().Format("15:04:05.000"), component, fmt.Sprintf(format, args...))
}

// LogSlice logs slicer activity.
func LogSlice(format string, args ...interface{}) {
	Log("SLICE", format, args...)
}

// LogInline logs inliner activity.
func LogInline(format string, args ...interface{}) {
	Log("INLINE", format, args...)
}

// LogParse logs parser/grammar activity.
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogServer logs transport activity.
func LogServer(format string, args ...interface{}) {
	Log("SERVER", format, args...)
}
