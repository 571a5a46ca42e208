package bridge

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Sentinel error kinds naming each class of resolution/invocation failure.
// Dynamic context (an offending class name, a method signature) is layered
// on with errors.Wrapf so callers can still errors.Is against the sentinel
// while the ERROR_RESULT payload carries a human-readable detail string.
var (
	ErrUnknownCommand       = errors.New("bridge: unknown command tag")
	ErrClassNotFound        = errors.New("bridge: class not found")
	ErrMethodNotFound       = errors.New("bridge: method not found")
	ErrInvalidVirtualHandle = errors.New("bridge: invalid virtual handle")
	ErrNotAClass            = errors.New("bridge: handle does not address a class")
	ErrNotAMethod           = errors.New("bridge: handle does not address a method")
	ErrInvocationFailed     = errors.New("bridge: invocation failed")
)

// ioFault marks an error as a fatal I/O failure on the underlying stream,
// treated as unrecoverable rather than as a per-command error. The dispatch
// loop's error-catch-and-continue policy does not apply to these; they
// propagate out of Run instead of becoming an ERROR_RESULT frame.
type ioFault struct {
	err error
}

func (f *ioFault) Error() string { return f.err.Error() }
func (f *ioFault) Unwrap() error { return f.err }

func isFatalIOError(err error) bool {
	var f *ioFault
	return stderrors.As(err, &f)
}
