package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role for registered accounts
	RoleUser UserRole = "user"
	// RoleAdmin grants access to admin-gated routes
	RoleAdmin UserRole = "admin"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	ProfileImage  string     `bun:"profile_image" json:"profile_image,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Projection is the safe, serializable view of a user record returned
// by the lifecycle endpoints and attached to authenticated requests.
type Projection struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image,omitempty"`
	Role         string `json:"role"`
}

// Project returns the identity projection for the record
func (u *User) Project() Projection {
	return Projection{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		Role:         string(u.Role),
	}
}

// ProjectIdentity returns the projection for an already verified
// identity.
func ProjectIdentity(identity Identity) Projection {
	return Projection{
		ID:           identity.ID(),
		Name:         identity.Name(),
		Email:        identity.Email(),
		ProfileImage: identity.ProfileImage(),
		Role:         identity.Role(),
	}
}

// NormalizeEmail lowercases and trims an email so lookups and the
// unique constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
