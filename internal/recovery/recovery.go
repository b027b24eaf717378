// internal/recovery/recovery.go
package recovery

import (
	"errors"
	"fmt"
	"os"
	rtdebug "runtime/debug"

	"github.com/womat/debug"
)

// ErrPanic wraps a panic recovered by CaptureError
var ErrPanic = errors.New("recovered panic")

// HandlePanic should be deferred at the top of main().
// It logs panic details and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		report(r)
		os.Exit(1)
	}
}

// HandlePanicFunc logs panic details, calls cleanup and exits with code 1.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		report(r)
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}

// CaptureError turns a panic into an error stored in *errp. Defer it in
// goroutines whose failure should be returned rather than crash the process:
//
//	g.Go(func() (err error) {
//		defer recovery.CaptureError(&err)
//		...
//	})
func CaptureError(errp *error) {
	if r := recover(); r != nil {
		if debug.ErrorLog != nil {
			debug.ErrorLog.Printf("recovered: %v\n%s", r, rtdebug.Stack())
		}
		*errp = fmt.Errorf("%w: %v", ErrPanic, r)
	}
}

func report(r any) {
	_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, rtdebug.Stack())
	if debug.FatalLog != nil {
		debug.FatalLog.Printf("panic: %v", r)
	}
}
