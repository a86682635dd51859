package domain

// ID is used across domain entities.
type ID int64

// Operator roles.
const (
	RoleAdmin = "admin"
	RoleClerk = "clerk"
)

// RequestContext carries authenticated operator info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Role   string `json:"role"`
}
