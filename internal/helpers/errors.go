package helpers

import (
	"strings"

	"github.com/ztrue/tracerr"
)

// Error carries a stack trace for every failure that crosses a package
// boundary. Wrap at the point of failure, not at every return.
type Error struct {
	errs []tracerr.Error
}

var NilError = Error{}

func IsNil(err error) bool {
	if traceable, ok := err.(Error); ok {
		return traceable.First() == nil
	}
	if traceable, ok := err.(*Error); ok {
		return traceable.First() == nil
	}
	return err == nil
}

func (e Error) IsNil() bool {
	return IsNil(e)
}

func (e Error) First() tracerr.Error {
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[0]
}

func (e Error) Error() string {
	result := ""
	for _, err := range e.errs {
		result += Indent(tracerr.Sprint(err), ".  ") + "\n"
	}
	return result
}

func (e Error) String() string {
	result := ""
	for _, err := range e.errs {
		result += tracerr.SprintSource(err, 3) + "\n"
	}
	return result
}

// HasRoot reports whether any wrapped error's message contains the
// target's message. tracerr predates errors.Is chains so we match on
// the message instead.
func (e Error) HasRoot(target error) bool {
	if target == nil {
		return e.IsNil()
	}
	for _, err := range e.errs {
		if strings.Contains(err.Error(), target.Error()) {
			return true
		}
	}
	return false
}

func Wrap(err error) Error {
	if err == nil {
		return NilError
	}
	return Error{[]tracerr.Error{tracerr.Wrap(err)}}
}

func WrapReturn[T any](x T, err error) (T, Error) {
	return x, Wrap(err)
}

func Errorf(format string, args ...interface{}) Error {
	return Error{[]tracerr.Error{tracerr.Errorf(format, args...)}}
}

func Join(others ...Error) Error {
	result := Error{}
	for _, o := range others {
		if !IsNil(o) {
			result.errs = append(result.errs, o.errs...)
		}
	}
	return result
}

func Indent(s string, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
