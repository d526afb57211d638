package internal

import (
	"os"

	"github.com/charmbracelet/log"
)

// Log is the process-wide logger. Commands raise it to debug via --verbose.
var Log = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "ragchat",
})

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(log.DebugLevel)
	} else {
		Log.SetLevel(log.InfoLevel)
	}
}
