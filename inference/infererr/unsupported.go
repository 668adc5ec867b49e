package infererr

import (
	"github.com/pkg/errors"
)

// ErrUnsupported marks inference paths that are not implemented, such as lambda
// target typing. It is not a compile error: callers should report the call
// site as "feature not yet supported".
var ErrUnsupported = errors.New("unsupported by type inference")

// Unsupported returns an error wrapping ErrUnsupported with a stack trace
func Unsupported(format string, args ...any) error {
	return errors.Wrapf(ErrUnsupported, format, args...)
}

type bailout struct {
	err error
}

// Bail aborts the current inference run from arbitrarily deep inside the
// engine; the run's entry point turns it back into an error with Recover.
func Bail(format string, args ...any) {
	panic(bailout{err: Unsupported(format, args...)})
}

// Recover must be deferred by engine entry points. It stores the error of a
// Bail into errp and re-panics anything else.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if b, ok := r.(bailout); ok {
		*errp = b.err
		return
	}
	panic(r)
}

// IsUnsupported reports whether err comes from an unimplemented inference path
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
