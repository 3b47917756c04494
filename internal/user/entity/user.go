package entity

import (
	"strings"
	"time"
)

// Role is the closed set of portal roles stored in users.role.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleHOS    Role = "HOS"
	RoleClient Role = "CLIENT"
	RoleExpert Role = "EXPERT"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleHOS, RoleClient, RoleExpert}

// Valid reports whether r belongs to the closed set.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole normalizes s and checks it against the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Profile is the read model of a users row linked to a session subject.
type Profile struct {
	ID          string     `db:"id" json:"id"`
	AuthSubject string     `db:"auth_subject" json:"-"`
	Role        Role       `db:"role" json:"role"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       string     `db:"email" json:"email"`
	Status      string     `db:"status" json:"status"`
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName joins first and last name, skipping empty parts.
func (p *Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Profile) Disabled() bool { return p.Status == StatusDisabled }

// Credentials is the projection needed for password authentication.
type Credentials struct {
	ID           string  `db:"id"`
	AuthSubject  string  `db:"auth_subject"`
	Status       string  `db:"status"`
	PasswordHash *string `db:"password_hash"`
}
