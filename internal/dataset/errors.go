package dataset

import (
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error code constants for dataset loading.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeNotFound          = "E002" // Dataset path not found or unreadable
	ErrCodeUnsupportedFormat = "E003" // Unknown file extension
	ErrCodeDecodeFailed      = "E004" // YAML/JSON decode failed
	ErrCodeBuildFailed       = "E005" // CUE build failed
	ErrCodeSchema            = "E006" // Value does not satisfy #CrossTab
)

// LoadError represents an error that occurred while loading a dataset.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// cueLoadError converts a CUE error into a LoadError carrying the position
// of the first reported problem.
func cueLoadError(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	loadErr := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
