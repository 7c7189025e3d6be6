// Package outcome defines the terminal results of a product or order
// decision and their fixed mapping onto HTTP status codes.
package outcome

import (
	"errors"
	"net/http"

	"github.com/example/dscommerce/internal/validation"
)

type Kind int

const (
	KindOK Kind = iota
	KindCreated
	KindNoContent
	KindUnprocessable
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

var kindNames = map[Kind]string{
	KindOK:            "ok",
	KindCreated:       "created",
	KindNoContent:     "no_content",
	KindUnprocessable: "unprocessable",
	KindUnauthorized:  "unauthorized",
	KindForbidden:     "forbidden",
	KindNotFound:      "not_found",
	KindConflict:      "conflict",
	KindInternal:      "internal",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Status is the contractual HTTP status for the kind. A dependent-resource
// conflict is reported as 400.
func (k Kind) Status() int {
	switch k {
	case KindOK:
		return http.StatusOK
	case KindCreated:
		return http.StatusCreated
	case KindNoContent:
		return http.StatusNoContent
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is the result of one decision: a success payload or a failure
// kind with its cause.
type Outcome struct {
	Kind    Kind
	Payload any
	Err     error
}

func (o Outcome) Status() int { return o.Kind.Status() }

func (o Outcome) Success() bool { return o.Kind <= KindNoContent }

// Violations returns the ordered violation list of an unprocessable outcome.
func (o Outcome) Violations() []validation.Violation {
	var ve *ValidationError
	if errors.As(o.Err, &ve) {
		return ve.Violations
	}
	return nil
}

func OK(payload any) Outcome      { return Outcome{Kind: KindOK, Payload: payload} }
func Created(payload any) Outcome { return Outcome{Kind: KindCreated, Payload: payload} }
func NoContent() Outcome          { return Outcome{Kind: KindNoContent} }

// Invalid builds an unprocessable outcome from a non-empty violation list.
func Invalid(violations []validation.Violation) Outcome {
	return Fail(&ValidationError{Violations: violations})
}

// Fail maps an error onto its outcome kind. Errors outside the taxonomy
// are infrastructure failures.
func Fail(err error) Outcome {
	return Outcome{Kind: KindOf(err), Err: err}
}

// KindOf classifies err against the taxonomy.
func KindOf(err error) Kind {
	var ve *ValidationError
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthorized
	case errors.Is(err, ErrInsufficientRole), errors.Is(err, ErrOwnershipViolation):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDependentResource):
		return KindConflict
	case errors.As(err, &ve):
		return KindUnprocessable
	default:
		return KindInternal
	}
}
