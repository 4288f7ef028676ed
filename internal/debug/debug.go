// Package debug provides opt-in trace logging for the analysis pipeline:
// no logging framework, a package-level mutex-guarded writer, an
// env/build-flag gate.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be set at build time via
// -ldflags "-X github.com/sibyllinesoft/refactorlens/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	mu     sync.Mutex
	output io.Writer
)

// SetOutput sets the writer debug trace lines are written to. Pass nil to
// disable output entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("REFACTORLENS_DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Log writes a component-tagged debug line.
func Log(component, format string, args ...interface{}) {
	if !enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogDiscover traces file-discovery stage activity.
func LogDiscover(format string, args ...interface{}) { Log("DISCOVER", format, args...) }

// LogParse traces per-language adapter activity.
func LogParse(format string, args ...interface{}) { Log("PARSE", format, args...) }

// LogFeature traces feature-extraction stage activity.
func LogFeature(format string, args ...interface{}) { Log("FEATURE", format, args...) }

// LogPack traces impact-pack-builder activity.
func LogPack(format string, args ...interface{}) { Log("PACK", format, args...) }
