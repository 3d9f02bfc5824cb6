package model

import (
	"errors"
	"fmt"
)

// ResolutionError means the geocoder could not match the input to any
// location. It aborts the whole request; no Report is produced.
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not locate %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("could not locate %q", e.Query)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// QueryError means a single analyzer branch failed (malformed generated
// query, warehouse timeout). It is recoverable at the pipeline level:
// sibling branches proceed and the synthesizer notes the gap.
type QueryError struct {
	Analyzer string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s analyzer: %v", e.Analyzer, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// SynthesisError means the final report could not be composed.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("report synthesis: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// IsResolutionError reports whether err wraps a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// IsQueryError reports whether err wraps a QueryError, returning the
// analyzer name when it does.
func IsQueryError(err error) (string, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Analyzer, true
	}
	return "", false
}
