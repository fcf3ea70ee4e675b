package accessory

import (
	"time"

	"github.com/google/uuid"
)

// identityNamespace is the fixed UUID namespace for accessory identities.
// Changing it would orphan every existing directory entry, so don't.
var identityNamespace = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

// IdentityFor derives the stable accessory identifier for a television.
//
// The identity is a deterministic UUID over (name, ip): the same
// configured device always maps to the same directory entry across
// restarts, and renaming or re-addressing a device intentionally creates
// a new entry.
func IdentityFor(name, ip string) string {
	return uuid.NewSHA1(identityNamespace, []byte(name+"|"+ip)).String()
}

// Input is one selectable tuner input exposed for a favourite channel.
type Input struct {
	// Identifier is the stable numeric identifier (1-999), equal to the
	// favourite's channel number.
	Identifier int `json:"identifier"`

	// Name is the favourite's display name; it may change across rebuilds.
	Name string `json:"name"`

	// Subtype keys the input internally. It is derived from the channel
	// number ("in-7"), not the name, so renaming a favourite updates the
	// existing entry instead of creating a duplicate.
	Subtype string `json:"subtype"`
}

// Accessory is one registered television in the directory.
type Accessory struct {
	// ID is the deterministic identity from IdentityFor.
	ID string

	// Name is the configured display name.
	Name string

	// Address and Port locate the television's control endpoint.
	Address string
	Port    int

	// Source is the broadcast source used for channel resolution.
	Source string

	// PowerOn and ActiveIdentifier cache the last published runtime state.
	PowerOn          bool
	ActiveIdentifier int

	// Inputs is the exposed input list, one per qualifying favourite.
	Inputs []Input

	CreatedAt time.Time
	UpdatedAt time.Time
}
