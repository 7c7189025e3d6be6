// Package authz holds the single decision table that says who may perform
// which operation on products and orders.
package authz

import "github.com/example/dscommerce/internal/auth"

type Operation int

const (
	ProductRead Operation = iota
	ProductCreate
	ProductUpdate
	ProductDelete
	OrderRead
)

func (op Operation) String() string {
	switch op {
	case ProductRead:
		return "product:read"
	case ProductCreate:
		return "product:create"
	case ProductUpdate:
		return "product:update"
	case ProductDelete:
		return "product:delete"
	case OrderRead:
		return "order:read"
	}
	return "unknown"
}

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonNotOwner         Reason = "not_owner"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision { return Decision{Reason: r} }

type rule struct {
	authenticated bool
	// anyOf lists the roles of which the caller must hold at least one.
	anyOf auth.Roles
	// ownerScoped operations admit non-admin callers only on resources they own.
	ownerScoped bool
}

var rules = map[Operation]rule{
	ProductRead:   {},
	ProductCreate: {authenticated: true, anyOf: auth.RoleAdmin},
	ProductUpdate: {authenticated: true, anyOf: auth.RoleAdmin},
	ProductDelete: {authenticated: true, anyOf: auth.RoleAdmin},
	OrderRead:     {authenticated: true, anyOf: auth.RoleBoth, ownerScoped: true},
}

// Authorize decides whether id may perform op. owner is the id of the
// client owning the target resource; a nil owner evaluates only the
// identity-level requirements, so callers can check those before the
// resource has been looked up and check ownership after.
func Authorize(id auth.Identity, op Operation, owner *int64) Decision {
	r, ok := rules[op]
	if !ok {
		return deny(ReasonInsufficientRole)
	}
	if !r.authenticated {
		return allow
	}
	// A verified token carrying no known role counts as no credential.
	if !id.Authenticated || id.Roles == 0 {
		return deny(ReasonUnauthenticated)
	}
	if id.Roles&r.anyOf == 0 {
		return deny(ReasonInsufficientRole)
	}
	if !r.ownerScoped || owner == nil || id.IsAdmin() {
		return allow
	}
	if *owner != id.SubjectID {
		return deny(ReasonNotOwner)
	}
	return allow
}
