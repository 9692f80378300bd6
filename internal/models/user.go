package models

// Role represents the access level carried in the credential token.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AssignableRoles lists the roles an administrator may grant.
var AssignableRoles = []Role{RoleUser, RoleAdmin}

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Identity is the signed-in user as decoded from the token claims.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// User is one row of the user access table. Role is nil until an
// administrator assigns one.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     *Role  `json:"role"`
}

// RoleName returns the role as text, empty when unassigned.
func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return string(*u.Role)
}

// SetAccessRequest assigns a role to a user.
type SetAccessRequest struct {
	ID       int64  `json:"id" validate:"required"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role" validate:"required,user_role"`
}

// SetAccessResponse is returned by the backend after a role change.
type SetAccessResponse struct {
	Message string `json:"message,omitempty"`
	User    User   `json:"user"`
}

// RegisterRequest carries the sign-up form.
type RegisterRequest struct {
	Username       string `json:"username" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	RetypePassword string `json:"-" validate:"eqfield=Password"`
}
