package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no entity matches a filter.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicate is returned when a storage unique constraint rejects a write.
	ErrDuplicate = errors.New("entity already exists")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)
