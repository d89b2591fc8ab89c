package types

// Role is the account role reported by the identity collaborator
type Role string

const (
	RoleMember   Role = "MEMBER"
	RoleOperator Role = "OPERATOR"
	RoleGuest    Role = "GUEST"
)

// IsTrialEligible reports whether an account with this role gets a trial on first login
func (r Role) IsTrialEligible() bool {
	return r == RoleMember
}
