package panicerr

import (
	"github.com/sourcegraph/conc/panics"
)

// Safe wraps a function that returns an error, catching any panic and
// returning it as an error instead.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}
