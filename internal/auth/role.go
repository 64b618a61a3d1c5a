package auth

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}
