package books

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no book has the requested ID
var ErrNotFound = errors.New("book not found")

// Op names the store operation an error came from
type Op string

const (
	OpCreate Op = "create"
	OpGet    Op = "get"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Reason is the validation rule a payload broke
type Reason string

const (
	ReasonMissingName              Reason = "missing name"
	ReasonReadPageExceedsPageCount Reason = "readPage exceeds pageCount"
)

// ValidationError reports a rejected create or update payload
type ValidationError struct {
	Op     Op
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s book: %s", e.Op, e.Reason)
}
