package api

import (
	"time"

	"github.com/magicstays/villa-api/internal/core/domain"
)

// Capability names one operation a resource exposes. Guard tables map
// capabilities to access requirements so versions differ by configuration,
// not by duplicated handler logic.
type Capability string

const (
	CapList   Capability = "list"
	CapGet    Capability = "get"
	CapCreate Capability = "create"
	CapUpdate Capability = "update"
	CapPatch  Capability = "patch"
	CapDelete Capability = "delete"
)

// Requirement is the declarative access guard for one route: none, any
// authenticated token, or a token carrying one of the listed roles.
type Requirement struct {
	Auth  bool
	Roles []domain.Role
}

var (
	// Public routes run without any token check.
	Public = Requirement{}
	// Authenticated routes accept any valid token regardless of role.
	Authenticated = Requirement{Auth: true}
)

// RequireRole gates a route on a set of roles (implies authentication).
func RequireRole(roles ...domain.Role) Requirement {
	return Requirement{Auth: true, Roles: roles}
}

// Version is one API line. All lines share the same handlers; only prefix,
// guard table and read-route cache TTL vary.
type Version struct {
	Name     string
	Prefix   string
	Guards   map[Capability]Requirement
	CacheTTL time.Duration
}

// guard returns the requirement for a capability, defaulting to Public when
// the table has no entry.
func (v Version) guard(cap Capability) Requirement {
	if v.Guards == nil {
		return Public
	}
	return v.Guards[cap]
}

// DefaultVersions returns the live API lines: the legacy unguarded line and
// the guarded, cached v1/v2 lines.
func DefaultVersions() []Version {
	gated := map[Capability]Requirement{
		CapList:   RequireRole(domain.RoleAdmin),
		CapGet:    Authenticated,
		CapCreate: RequireRole(domain.RoleAdmin),
		CapUpdate: RequireRole(domain.RoleAdmin),
		CapPatch:  RequireRole(domain.RoleAdmin),
		CapDelete: RequireRole(domain.RoleAdmin),
	}

	return []Version{
		{Name: "legacy", Prefix: "/api"},
		{Name: "v1", Prefix: "/api/v1", Guards: gated, CacheTTL: 30 * time.Second},
		{Name: "v2", Prefix: "/api/v2", Guards: gated, CacheTTL: 30 * time.Second},
	}
}
