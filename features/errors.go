package features

import (
	"errors"
	"fmt"
)

// ErrMalformedMessage matches every structural parse failure.
var ErrMalformedMessage = errors.New("malformed message")

// Reason classifies a structural parse failure.
type Reason string

const (
	ReasonHeader    Reason = "header"
	ReasonMultipart Reason = "multipart"
	ReasonNesting   Reason = "nesting"
)

// ParseError reports why a message could not be turned into a FeatureRecord.
type ParseError struct {
	Reason Reason
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed message (%s)", e.Reason)
	}
	return fmt.Sprintf("malformed message (%s): %v", e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedMessage) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedMessage
}
