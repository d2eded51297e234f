package content

import (
	"errors"
	"fmt"
)

var (
	ErrNoFrontMatter      = errors.New("missing front-matter block")
	ErrInvalidFrontMatter = errors.New("invalid front-matter")
	ErrMissingTitle       = errors.New("front-matter title is required")
	ErrMissingDate        = errors.New("front-matter date is required")
	ErrInvalidDate        = errors.New("front-matter date is not a valid calendar date")
	ErrEmptyTag           = errors.New("front-matter tags must not be blank")
)

// DocumentError ties a parse failure to the document it came from.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
