package domain

import (
	"errors"
	"fmt"
)

// Kind classifies the terminal failure modes of a summary run. Every engine
// error carries exactly one Kind so callers can report a precise message and
// exit status without string matching.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors outside the taxonomy.
	KindUnknown Kind = iota
	// KindMalformedMessage: structural or field-level decode failure.
	KindMalformedMessage
	// KindInvalidCoordinate: non-finite or out-of-range latitude/longitude.
	KindInvalidCoordinate
	// KindIncompatibleOverride: override names a different event than the alert.
	KindIncompatibleOverride
	// KindInsufficientRoster: empty or unreadable city roster.
	KindInsufficientRoster
	// KindDegenerateContour: no usable contour geometry, supplied or synthetic.
	KindDegenerateContour
)

func (k Kind) String() string {
	switch k {
	case KindMalformedMessage:
		return "malformed message"
	case KindInvalidCoordinate:
		return "invalid coordinate"
	case KindIncompatibleOverride:
		return "incompatible override"
	case KindInsufficientRoster:
		return "insufficient roster data"
	case KindDegenerateContour:
		return "degenerate contour input"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by all engine stages.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Errorf builds a kinded error. The format string supports %w wrapping.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
