package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSubmitter UserRole = "submitter"
	RoleModerator UserRole = "moderator"
	RoleAnalyst   UserRole = "analyst"
	RoleAdmin     UserRole = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSubmitter, RoleModerator, RoleAnalyst, RoleAdmin:
		return true
	default:
		return false
	}
}

// Roles is the set of roles held by a user, stored as a Postgres TEXT[].
type Roles []UserRole

// Has reports whether the set contains role.
func (r Roles) Has(role UserRole) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the set shares at least one role with roles.
func (r Roles) HasAny(roles ...UserRole) bool {
	for _, role := range roles {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Normalize lower-cases, de-duplicates and drops unknown roles.
func (r Roles) Normalize() Roles {
	out := make(Roles, 0, len(r))
	for _, role := range r {
		role = UserRole(strings.ToLower(strings.TrimSpace(string(role))))
		if !role.Valid() || out.Has(role) {
			continue
		}
		out = append(out, role)
	}
	return out
}

// Scan implements sql.Scanner.
func (r *Roles) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("scan roles: %w", err)
	}
	roles := make(Roles, len(arr))
	for i, v := range arr {
		roles[i] = UserRole(v)
	}
	*r = roles
	return nil
}

// Value implements driver.Valuer.
func (r Roles) Value() (driver.Value, error) {
	arr := make(pq.StringArray, len(r))
	for i, v := range r {
		arr[i] = string(v)
	}
	return arr.Value()
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Roles        Roles      `db:"roles" json:"roles"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Summary returns the display-safe projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// UserSummary is the only user shape embedded in article and evidence payloads.
type UserSummary struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
