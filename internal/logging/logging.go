// Package logging wires a single structured logger shared by the CLI,
// the control/loader, and the bridge subsystems. The teacher's own decoder CLI
// logs with stdlib log/fmt since it has exactly one subsystem; this
// repo has several concurrent ones (audio engine, loader, bridge), so
// it adopts charmbracelet/log for leveled, subsystem-tagged output,
// the pattern seen in the rest of the retrieved pack.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds the root logger. debug raises the level to Debug;
// otherwise it defaults to Info. Output goes to stderr so stdout stays
// reserved for the JSON-RPC transport (internal/bridge).
func New(debug bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// Component returns a child logger tagged with a "component" field, so
// log lines from the control/loader and bridge are distinguishable
// without each package constructing its own logger.
func Component(base *log.Logger, name string) *log.Logger {
	return base.With("component", name)
}
