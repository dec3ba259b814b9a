package cli

import (
	"time"

	"github.com/briandowns/spinner"
)

// WithSpinner runs fn behind a terminal spinner carrying message as its
// suffix. Quiet mode skips the spinner entirely, which also keeps output
// clean when stdout is not a terminal.
func WithSpinner(message string, quiet bool, fn func() error) error {
	if quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()

	return fn()
}
