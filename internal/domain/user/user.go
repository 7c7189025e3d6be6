package user

import "github.com/example/dscommerce/internal/auth"

// User is a registered subject able to obtain an access token.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Roles        auth.Roles
}
