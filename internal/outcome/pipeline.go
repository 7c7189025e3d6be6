package outcome

import (
	"context"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/authz"
)

// Check is one step of a decision. A nil error lets the pipeline continue;
// any other error ends it with the outcome that error maps to.
type Check func(ctx context.Context) error

// Pipeline runs its checks strictly in order. The order is the precedence
// between failures: an earlier check hides whatever a later one would report.
type Pipeline []Check

// Run evaluates the checks and, when all pass, returns final's outcome.
func (p Pipeline) Run(ctx context.Context, final func(ctx context.Context) Outcome) Outcome {
	for _, check := range p {
		if err := check(ctx); err != nil {
			return Fail(err)
		}
	}
	return final(ctx)
}

// Authorized checks the identity-level requirements of op for who.
func Authorized(who auth.Identity, op authz.Operation) Check {
	return func(context.Context) error {
		return DenialError(authz.Authorize(who, op, nil))
	}
}

// Owns checks the ownership requirement of op once the resource owner is
// known. owner is read when the check runs.
func Owns(who auth.Identity, op authz.Operation, owner func() int64) Check {
	return func(context.Context) error {
		id := owner()
		return DenialError(authz.Authorize(who, op, &id))
	}
}
