package walk

import (
	"errors"
	"fmt"
)

type ErrorKind uint8

const (
	IOFailed      ErrorKind = iota // reading a directory stream or asking the backend about identity
	OpenDirFailed                  // a directory could not be opened for reading
	StatFailed                     // an entry's metadata could not be read
	LoopDetected                   // a followed link points at one of its own ancestors
	Unsupported                    // an option this platform cannot honour, fatal to the walk
)

func (k ErrorKind) String() string {
	switch k {
	case OpenDirFailed:
		return "open"
	case StatFailed:
		return "stat"
	case LoopDetected:
		return "loop"
	case Unsupported:
		return "unsupported"
	default:
		return "io"
	}
}

// Error is the type of every error a Walker reports.
type Error struct {
	Kind     ErrorKind
	Path     string
	Ancestor string // only for LoopDetected
	Depth    int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case LoopDetected:
		return fmt.Sprintf("filesystem loop: %s points to its ancestor %s", e.Path, e.Ancestor)
	case Unsupported:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsLoop reports whether err records a symbolic link loop.
func IsLoop(err error) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == LoopDetected
}

func pathError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
