package domain

type RoleKind int32

const (
	RoleUnassigned RoleKind = iota
	RoleHost
	RoleViewer
)

func (k RoleKind) String() string {
	switch k {
	case RoleHost:
		return "host"
	case RoleViewer:
		return "viewer"
	default:
		return "unassigned"
	}
}

// Role is what a connection is allowed to do.
// Identity is set only for RoleViewer.
type Role struct {
	Kind     RoleKind
	Identity Identity
}

func Unassigned() Role { return Role{Kind: RoleUnassigned} }

func HostRole() Role { return Role{Kind: RoleHost} }

func ViewerRole(id Identity) Role { return Role{Kind: RoleViewer, Identity: id} }

func (r Role) IsHost() bool   { return r.Kind == RoleHost }
func (r Role) IsViewer() bool { return r.Kind == RoleViewer }
