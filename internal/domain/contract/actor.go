package contract

// Role distinguishes the two parties that drive the contract workflow.
type Role string

const (
	RoleEmployer  Role = "employer"
	RoleTraveller Role = "traveller"
)

// Actor is the authenticated identity acting on an application. It is resolved
// from the access token by the HTTP layer; services never look at tokens.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsEmployer() bool {
	return a.Role == RoleEmployer
}

func (a Actor) IsTraveller() bool {
	return a.Role == RoleTraveller
}
