package backend

import "github.com/agentstation/utc"

// Role is a user's permission level.
type Role string

// User roles.
const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is a registered customer or administrator.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Role      Role     `json:"role"`
	CreatedAt utc.Time `json:"created_at"`
}

// IsAdmin reports whether the user may use the back office.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials are a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is a new account request.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Session is what the backend returns for a successful login.
type Session struct {
	Token     string   `json:"token"`
	ExpiresAt utc.Time `json:"expires_at"`
	User      User     `json:"user"`
}
