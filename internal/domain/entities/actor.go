package entities

// Role identifies which side of the marketplace an authenticated actor
// belongs to. RoleSystem is reserved for internal callers (expiration
// scheduler, processor callbacks) that act on behalf of the platform.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMechanic Role = "mechanic"
	RoleSystem   Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMechanic, RoleSystem:
		return true
	}
	return false
}

// Actor is the canonical identity contract: the upstream authenticator has
// already verified it, the core only checks it against per-edge rules.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor is used by the scheduler and internal settlement callbacks.
var SystemActor = Actor{ID: "system", Role: RoleSystem}
