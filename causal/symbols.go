// causal/symbols.go
package causal

import (
	"sync"

	"github.com/SynapticNetworks/temporal-neuron/types"
)

// Two sentinel reward symbols staged into causal memory whenever an
// observation commits. Every symbol table carries these under fixed,
// well-known names so meaning-channel scoring can look them up without the
// caller threading ids around.
const (
	RewardPosName = "reward_pos"
	RewardNegName = "reward_neg"
)

// SymbolTable interns strings to dense, stable uint32 ids. A table is
// per-substrate, never global (see DESIGN.md: symbol interning vs. global
// state) — every substrate image carries its own table, and ids from one
// table are meaningless against another's causal memory.
//
// Uses a registration-by-name pattern: a name->id map guarded by a single
// RWMutex, with the reverse slice doubling as the id->name table for
// round-tripping.
type SymbolTable struct {
	mu      sync.RWMutex
	byName  map[string]types.SymbolID
	byID    []string // byID[id] == name; position is the id
	rewardP types.SymbolID
	rewardN types.SymbolID
}

// NewSymbolTable constructs an empty table and pre-interns the two reward
// sentinels so meaning-channel scoring always has stable ids for them.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{
		byName: make(map[string]types.SymbolID),
	}
	t.rewardP = t.Intern(RewardPosName)
	t.rewardN = t.Intern(RewardNegName)
	return t
}

// Intern returns the id for name, assigning a fresh one on first use.
// Symbols are created on first use and never destroyed.
func (t *SymbolTable) Intern(name string) types.SymbolID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := types.SymbolID(len(t.byID))
	t.byName[name] = id
	t.byID = append(t.byID, name)
	return id
}

// Lookup returns the id for name without interning it, reporting whether it
// already existed.
func (t *SymbolTable) Lookup(name string) (types.SymbolID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the string for id, or "" and false if id is out of range.
func (t *SymbolTable) Name(id types.SymbolID) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		return "", false
	}
	return t.byID[id], true
}

// Len reports the number of interned symbols.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// RewardPos and RewardNeg return the pre-interned sentinel ids used when an
// observation commits and by meaning-channel scoring.
func (t *SymbolTable) RewardPos() types.SymbolID { return t.rewardP }
func (t *SymbolTable) RewardNeg() types.SymbolID { return t.rewardN }

// Snapshot returns the id-ordered string table for image serialization
// (the SYMB chunk). The returned slice must not be mutated.
func (t *SymbolTable) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.byID))
	copy(out, t.byID)
	return out
}

// LoadSymbolTable rebuilds a table from a persisted string table, where
// each string's position in the slice is its id.
func LoadSymbolTable(names []string) *SymbolTable {
	t := &SymbolTable{
		byName: make(map[string]types.SymbolID, len(names)),
		byID:   make([]string, len(names)),
	}
	copy(t.byID, names)
	for id, name := range names {
		t.byName[name] = types.SymbolID(id)
	}
	if id, ok := t.byName[RewardPosName]; ok {
		t.rewardP = id
	} else {
		t.rewardP = t.Intern(RewardPosName)
	}
	if id, ok := t.byName[RewardNegName]; ok {
		t.rewardN = id
	} else {
		t.rewardN = t.Intern(RewardNegName)
	}
	return t
}

// Clone returns a deep, independent copy, used by expert forking: a child
// clones its parent's table so symbol ids stay stable across the fork.
func (t *SymbolTable) Clone() *SymbolTable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := &SymbolTable{
		byName:  make(map[string]types.SymbolID, len(t.byName)),
		byID:    make([]string, len(t.byID)),
		rewardP: t.rewardP,
		rewardN: t.rewardN,
	}
	copy(clone.byID, t.byID)
	for k, v := range t.byName {
		clone.byName[k] = v
	}
	return clone
}
