package model

const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// Identity is the verified acting identity supplied by the auth edge.
// Core operations receive it as an explicit argument; nothing reads it
// from ambient state.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}
