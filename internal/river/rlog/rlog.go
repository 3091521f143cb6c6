// Package rlog is the structured logger used by every river/internal
// package. It wraps charmbracelet/log the same way the rest of the
// retrieved Wayland-domain corpus does: one process-wide logger, per-site
// fields via With, level controlled by configuration.
package rlog

import (
	"os"

	"github.com/charmbracelet/log"
)

var root = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// Logger is the shared structured-logging handle. Components obtain one
// scoped to their name via For.
type Logger = *log.Logger

// SetLevel adjusts the process-wide minimum log level (e.g. from config).
func SetLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		root.Warnf("unknown log level %q, keeping %s", level, root.GetLevel())
		return
	}
	root.SetLevel(lvl)
}

// For returns a logger scoped to a component name, e.g. "transaction",
// "wm", "bind". Fields added with With on the returned logger show up on
// every line the component logs, matching §7's "logged at error level"
// style of error reporting (component-scoped, not global).
func For(component string) Logger {
	return root.With("component", component)
}
