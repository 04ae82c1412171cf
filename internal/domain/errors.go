package domain

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrInference      = errors.New("inference failed")

	ErrEmptyText       = errors.New("review text is empty")
	ErrGameNameTooLong = errors.New("game name too long")
	ErrInvalidGameName = errors.New("game name is empty")
)

// InferenceError reports a failure while scoring a text with a loaded model.
// It matches ErrInference with errors.Is.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed (model %s): %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) Is(target error) bool { return target == ErrInference }
