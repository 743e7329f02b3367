package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuadrilateral means none of the ranked candidates approximated to
	// exactly four vertices.
	ErrNoQuadrilateral = errors.New("no quadrilateral found")

	// ErrInvalidSourcePath means a stored image path does not name a readable file.
	ErrInvalidSourcePath = errors.New("invalid source path")
)

// Kind categorises scan failures for callers that report them.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindProcessing   Kind = "processing"
)

// Error is returned by Scanner operations. Err is usually one of the package
// sentinels, so errors.Is works through it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func notFound(op string, err error) error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func invalidInput(op string, err error) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: err}
}

func processing(op string, err error) error {
	return &Error{Kind: KindProcessing, Op: op, Err: err}
}
