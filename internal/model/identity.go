package model

// Role values carried by authenticated identities.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the identity may use administrative operations.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
