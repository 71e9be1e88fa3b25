package model

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleBan   = "ban"
)

// User is a registered account.
//
// Accounts are created either by password registration or by GitHub OAuth.
// GitHubID is 0 for password accounts and stored as NULL, so the UNIQUE
// constraint on github_id only applies to OAuth users.
type User struct {
	ID           int64     `json:"id"`
	Account      string    `json:"account"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"githubId,omitempty"`
	Name         string    `json:"userName"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"userAvatar"`
	Profile      string    `json:"userProfile"`
	Role         string    `json:"userRole"`
	CreatedAt    time.Time `json:"createTime"`
	UpdatedAt    time.Time `json:"updateTime"`
}

// IsAdmin reports whether u holds the admin role. A nil user is not an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsBanned reports whether u has been banned.
func (u *User) IsBanned() bool {
	return u != nil && u.Role == RoleBan
}
