package auth

import "strings"

// Roles is the set of roles held by a subject. A subject may hold both.
type Roles uint8

const (
	RoleClient Roles = 1 << iota
	RoleAdmin

	RoleBoth = RoleClient | RoleAdmin
)

// Authority names as carried in the token "authorities" claim.
const (
	AuthorityClient = "ROLE_CLIENT"
	AuthorityAdmin  = "ROLE_ADMIN"
)

// ParseRoles maps authority names to a role set. Unknown names are ignored.
func ParseRoles(authorities []string) Roles {
	var r Roles
	for _, a := range authorities {
		switch strings.ToUpper(strings.TrimSpace(a)) {
		case AuthorityClient, "CLIENT":
			r |= RoleClient
		case AuthorityAdmin, "ADMIN":
			r |= RoleAdmin
		}
	}
	return r
}

// Has reports whether every role in want is present.
func (r Roles) Has(want Roles) bool {
	return want != 0 && r&want == want
}

// Authorities returns the authority names for the set, client first.
func (r Roles) Authorities() []string {
	out := make([]string, 0, 2)
	if r.Has(RoleClient) {
		out = append(out, AuthorityClient)
	}
	if r.Has(RoleAdmin) {
		out = append(out, AuthorityAdmin)
	}
	return out
}

func (r Roles) String() string {
	switch r {
	case RoleClient:
		return "CLIENT"
	case RoleAdmin:
		return "ADMIN"
	case RoleBoth:
		return "CLIENT|ADMIN"
	default:
		return "NONE"
	}
}

// Identity is the authenticated subject of a request, or Anonymous.
type Identity struct {
	SubjectID     int64
	Username      string
	Roles         Roles
	Authenticated bool
}

// Anonymous is the identity of a request with a missing or invalid credential.
var Anonymous = Identity{}

func (i Identity) IsAdmin() bool { return i.Authenticated && i.Roles.Has(RoleAdmin) }

// IdentityFromClaims builds the Identity carried by validated claims.
func IdentityFromClaims(c *Claims) Identity {
	if c == nil {
		return Anonymous
	}
	return Identity{
		SubjectID:     c.UserID,
		Username:      c.Username,
		Roles:         ParseRoles(c.Authorities),
		Authenticated: true,
	}
}

// Resolve turns a raw token into an Identity. It fails closed: an empty,
// malformed, expired or tampered token yields Anonymous.
func (s *JWTService) Resolve(tokenString string) Identity {
	if tokenString == "" {
		return Anonymous
	}
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return Anonymous
	}
	return IdentityFromClaims(claims)
}
