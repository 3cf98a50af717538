package domain

type Role string

const (
	// User manages only their own account.
	RoleUser Role = "user"
	// Admin manages every account: listing, blocking, deleting, creating privileged accounts.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }
