package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrSizeNotFound       = errors.New("size not found")
	ErrCircuitOpen        = errors.New("composer circuit open")
	ErrComposerTimeout    = errors.New("composer request timed out")
	ErrNoImagesInOutput   = errors.New("no images in job output")
	ErrNoDocumentInOutput = errors.New("no document in job output")
)

// JobIncompleteError reports a job the composition service accepted but did
// not finish synchronously. Status and detail come from the vendor response;
// handlers expose only the status word to callers.
type JobIncompleteError struct {
	Status string
	Detail string
}

func (e *JobIncompleteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("composer job not completed: %s", e.Status)
	}
	return fmt.Sprintf("composer job not completed: %s (%s)", e.Status, e.Detail)
}
