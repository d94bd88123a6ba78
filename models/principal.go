package models

const RoleAdmin = "admin"

// Principal is the authenticated caller, as resolved by the auth middleware.
type Principal struct {
	UserID string
	Role   string
	Name   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
