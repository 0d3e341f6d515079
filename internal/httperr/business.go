package httperr

import "errors"

// Kind classifies a business error for transport mapping and retry policy.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindNotFound           Kind = "not_found"
	KindIllegalTransition  Kind = "illegal_transition"
	KindPreconditionFailed Kind = "precondition_failed"
	// KindNoRateConfigured is a fatal misconfiguration, not a user error.
	KindNoRateConfigured Kind = "no_rate_configured"
)

type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrInvalidArgument(code string) error {
	return BusinessError{Kind: KindInvalidArgument, Code: code}
}

func ErrNotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func ErrIllegalTransition(code string) error {
	return BusinessError{Kind: KindIllegalTransition, Code: code}
}

func ErrPreconditionFailed(code string) error {
	return BusinessError{Kind: KindPreconditionFailed, Code: code}
}

func ErrNoRateConfigured(code string) error {
	return BusinessError{Kind: KindNoRateConfigured, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
