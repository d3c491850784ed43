package advisor

import (
	"errors"
	"fmt"
)

// Generation stages reported by GenerationError.
const (
	GenerationQuery  = "query"
	GenerationAdvice = "advice"
)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrEmptyGeneration = errors.New("backend returned empty text")
)

// GenerationError reports a failed or empty call to the text-generation backend.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
