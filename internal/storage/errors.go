// ABOUTME: Typed errors for the workout store.
// ABOUTME: Classifies failures as fatal, not-found, transactional, or import.
package storage

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindFatal means the store could not be opened or migrated.
	KindFatal
	// KindNotFound means a referenced row does not exist.
	KindNotFound
	// KindTransaction means a write transaction was rolled back.
	KindTransaction
	// KindImport means the catalog import failed and will be retried.
	KindImport
)

func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindNotFound:
		return "not_found"
	case KindTransaction:
		return "transaction"
	case KindImport:
		return "import"
	default:
		return "unknown"
	}
}

var (
	ErrNotFound                 = errors.New("not found")
	ErrWorkoutNotFound          = fmt.Errorf("workout %w", ErrNotFound)
	ErrTemplateNotFound         = fmt.Errorf("template %w", ErrNotFound)
	ErrExerciseNotFound         = fmt.Errorf("exercise %w", ErrNotFound)
	ErrWorkoutExerciseNotFound  = fmt.Errorf("workout exercise %w", ErrNotFound)
	ErrTemplateExerciseNotFound = fmt.Errorf("template exercise %w", ErrNotFound)
	ErrSetNotFound              = fmt.Errorf("set %w", ErrNotFound)
)

// Error is a classified storage failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err. Unclassified errors that wrap
// ErrNotFound report KindNotFound.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindUnknown
}

// IsFatal reports whether err must abort startup.
func IsFatal(err error) bool {
	return KindOf(err) == KindFatal
}

func fatal(op string, err error) error {
	return &Error{Kind: KindFatal, Op: op, Err: err}
}

func notFound(op string, sentinel error, id any) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("%w: %v", sentinel, id)}
}

// txFailure classifies an error raised inside a write transaction. Not-found
// errors keep their kind so callers can still tell them apart.
func txFailure(op string, err error) error {
	var se *Error
	if errors.As(err, &se) && se.Kind != KindUnknown {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	}
	return &Error{Kind: KindTransaction, Op: op, Err: err}
}

// ImportError marks err as a catalog import failure.
func ImportError(op string, err error) error {
	return &Error{Kind: KindImport, Op: op, Err: err}
}
