package cache

import (
	"context"
	"fmt"
	"sync"

	apptrade "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/domain/shared"
)

// Party is one entry in the static directory
type Party struct {
	DisplayName    string
	CreditEligible bool
}

// StaticPartyDirectory is an in-process PartyDirectory backed by a map.
// Suitable for development and tests; deployments wire the platform's real
// directory service here.
type StaticPartyDirectory struct {
	mu      sync.RWMutex
	parties map[shared.PartyID]Party
}

// NewStaticPartyDirectory creates an empty static directory
func NewStaticPartyDirectory() *StaticPartyDirectory {
	return &StaticPartyDirectory{parties: make(map[shared.PartyID]Party)}
}

// Register adds or replaces a party
func (d *StaticPartyDirectory) Register(id shared.PartyID, party Party) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parties[id] = party
}

// DisplayName returns the party's legal name for document snapshots.
// Unknown parties fall back to their ID so document creation never blocks
// on directory gaps.
func (d *StaticPartyDirectory) DisplayName(_ context.Context, id shared.PartyID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if party, ok := d.parties[id]; ok {
		return party.DisplayName, nil
	}
	return fmt.Sprintf("Party %s", id), nil
}

// IsCreditEligible reports whether the buyer may place credit orders.
// Unknown parties are not credit eligible.
func (d *StaticPartyDirectory) IsCreditEligible(_ context.Context, id shared.PartyID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.parties[id].CreditEligible, nil
}

var _ apptrade.PartyDirectory = (*StaticPartyDirectory)(nil)
