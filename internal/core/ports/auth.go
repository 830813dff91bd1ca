package ports

import (
	"context"

	"github.com/magicstays/villa-api/internal/core/domain"
)

// UserRepository is the credential store: user identity records keyed by
// username.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Insert persists a new identity. A duplicate username is rejected by the
	// store's unique constraint and reported as domain.ErrUserExists.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Username string
	Password string
	Role     domain.Role
}

// LoginResult is the value result of a login attempt. A failed credential
// check is not an error: Token is empty and User is nil, and callers must
// test for that rather than an error value. Errors are reserved for
// infrastructure faults.
type LoginResult struct {
	User  *domain.User
	Role  domain.Role
	Token string
}

// Failed reports whether the attempt produced no usable token.
func (r *LoginResult) Failed() bool {
	return r == nil || r.Token == "" || r.User == nil
}

// AuthService issues and backs signed session tokens.
type AuthService interface {
	// IsUniqueUser reports whether no stored identity has this exact
	// username. Comparison is case-sensitive.
	IsUniqueUser(ctx context.Context, username string) (bool, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}
