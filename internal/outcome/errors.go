package outcome

import (
	"errors"
	"fmt"

	"github.com/example/dscommerce/internal/authz"
	"github.com/example/dscommerce/internal/validation"
)

// Terminal decisions. None of them is retried.
var (
	ErrUnauthenticated    = errors.New("full authentication is required")
	ErrInsufficientRole   = errors.New("access denied")
	ErrNotFound           = errors.New("resource not found")
	ErrDependentResource  = errors.New("referential integrity violation")
	ErrOwnershipViolation = errors.New("access denied: resource belongs to another client")
)

// ValidationError carries the complete ordered list of violations.
type ValidationError struct {
	Violations []validation.Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid data"
	}
	return fmt.Sprintf("invalid data: %s: %s", e.Violations[0].Field, e.Violations[0].Message)
}

// DenialError converts a denied authorization decision into the matching
// taxonomy error. It returns nil for an allowed decision.
func DenialError(d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case authz.ReasonUnauthenticated:
		return ErrUnauthenticated
	case authz.ReasonNotOwner:
		return ErrOwnershipViolation
	default:
		return ErrInsufficientRole
	}
}
