package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks safety-filter rejections. They surface to the
	// caller as a blocked response, never as a 5xx.
	ErrValidation = errors.New("query rejected")
	// ErrRetrieval marks index lookup failures; the pipeline aborts with
	// a partial trace.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration marks generator timeouts or empty output; no partial
	// answer is returned.
	ErrGeneration = errors.New("generation failed")
	// ErrInternal marks unexpected failures in scoring/merging logic.
	ErrInternal = errors.New("internal failure")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
