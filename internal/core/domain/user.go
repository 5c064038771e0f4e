package domain

import "time"

// Role identifies which dashboard a user is entitled to.
type Role string

const (
	RoleClient     Role = "client"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether the role is one the platform knows about.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleManager, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User models the authenticated account as returned by the remote API.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Telephone string    `json:"telephone,omitempty"`
	Role      Role      `json:"role"`
	SalonID   string    `json:"salon_id,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Merge returns a copy of u with the non-zero profile fields of other applied.
// Identity and role never change through a profile update; the server is
// authoritative for both.
func (u User) Merge(other User) User {
	merged := u
	if other.Email != "" {
		merged.Email = other.Email
	}
	if other.Username != "" {
		merged.Username = other.Username
	}
	if other.Telephone != "" {
		merged.Telephone = other.Telephone
	}
	if other.AvatarURL != "" {
		merged.AvatarURL = other.AvatarURL
	}
	return merged
}
