package model

// Role is the user verification contract role ordinal.
type Role uint8

const (
	RoleUnassigned Role = iota
	RoleReader
	RoleContributor
	RoleEditor
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r <= RoleEditor
}

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "Reader"
	case RoleContributor:
		return "Contributor"
	case RoleEditor:
		return "Editor"
	default:
		return "Unassigned"
	}
}

// UserIdentity is the verification state of a wallet address.
type UserIdentity struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Role     Role   `json:"role"`
}
