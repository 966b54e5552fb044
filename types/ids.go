// types/ids.go
package types

// SymbolID is a dense, interned identifier for a named event (a stimulus
// name, an action name, a context key, a compound symbol, or one of the two
// reward sentinels). Ids are stable within a single substrate image but are
// never assumed stable across images — merging causal memory from a foreign
// image requires a remap that this package does not provide (see
// causal.Memory.MergeFrom for the same-table case this substrate supports).
type SymbolID uint32

// UnitID indexes a single oscillator unit within a Substrate's unit slice.
// Unit ids are assigned monotonically at init and by neurogenesis; they are
// never reused even after a unit's incoming/outgoing edges are fully pruned.
type UnitID uint32

// ExpertID identifies a forked child substrate inside an ExpertManager's
// tree. Ids are assigned monotonically from a manager-local counter and are
// never reused within the lifetime of a manager.
type ExpertID uint32

// PackPair packs a directed symbol pair (from, to) into the 64-bit key used
// by causal memory's edge map: (from_id << 32) | to_id.
func PackPair(from, to SymbolID) uint64 {
	return (uint64(from) << 32) | uint64(to)
}

// UnpackPair reverses PackPair.
func UnpackPair(key uint64) (from, to SymbolID) {
	return SymbolID(key >> 32), SymbolID(key & 0xFFFFFFFF)
}
