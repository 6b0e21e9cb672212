package shared

// PartyID identifies a buyer or seller. The marketplace stores the same legal
// seller under more than one identifier scheme, so operations that guard
// ownership accept a set of aliases rather than a single ID.
type PartyID string

// String returns the string representation of the party ID
func (p PartyID) String() string {
	return string(p)
}

// IsZero returns true if the party ID is empty
func (p PartyID) IsZero() bool {
	return p == ""
}

// ActorType distinguishes who performed a lifecycle action
type ActorType string

const (
	ActorTypeBuyer  ActorType = "BUYER"
	ActorTypeSeller ActorType = "SELLER"
	ActorTypeSystem ActorType = "SYSTEM"
)

// SystemActor is the party recorded for transitions applied by background jobs
const SystemActor PartyID = "system"

// IdentitySet is the set of identity aliases a caller holds. Ownership checks
// go through Owns so alias matching lives in one place.
type IdentitySet map[PartyID]struct{}

// NewIdentitySet creates an identity set from the given IDs, skipping empties
func NewIdentitySet(ids ...PartyID) IdentitySet {
	s := make(IdentitySet, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			s[id] = struct{}{}
		}
	}
	return s
}

// Owns reports whether the set contains the given owner identity
func (s IdentitySet) Owns(owner PartyID) bool {
	if owner.IsZero() {
		return false
	}
	_, ok := s[owner]
	return ok
}

// Primary returns an arbitrary member of the set, or "" when empty.
// Used when a single actor ID must be recorded for an audit row.
func (s IdentitySet) Primary() PartyID {
	for id := range s {
		return id
	}
	return ""
}

// IsEmpty returns true if the set holds no identities
func (s IdentitySet) IsEmpty() bool {
	return len(s) == 0
}
