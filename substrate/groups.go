// substrate/groups.go
package substrate

import "github.com/SynapticNetworks/temporal-neuron/types"

// groupKind distinguishes a sensor group (stimuli are applied to it) from an
// action group (candidates for select_action_with_meaning).
type groupKind uint8

const (
	sensorGroupKind groupKind = iota
	actionGroupKind
)

// Group is a named, contiguous, fixed-for-its-lifetime range of unit ids.
type Group struct {
	Name  string
	Kind  groupKind
	Start int
	Width int
}

// groupTable tracks every bound sensor/action group by name, and preserves
// both overall creation order (for deterministic image round-trips) and
// action definition order for select's tie-break rule.
type groupTable struct {
	byName      map[string]*Group
	order       []*Group // overall creation order, both kinds
	actionOrder []*Group
}

func newGroupTable() *groupTable {
	return &groupTable{byName: make(map[string]*Group)}
}

// ensure idempotently binds name to kind with at least minWidth units,
// appending freshly allocated units (via alloc) when growth is needed.
// alloc returns the ids of the newly created units, appended contiguously
// at the end of the unit population, which is what keeps an existing
// group's range contiguous when it widens.
func (gt *groupTable) ensure(name string, kind groupKind, minWidth int, alloc func(n int) []uint32) (*Group, error) {
	if existing, ok := gt.byName[name]; ok {
		if existing.Kind != kind {
			return nil, &types.GroupConflictError{
				Name:       name,
				ExistingOf: kindName(existing.Kind),
				RequestOf:  kindName(kind),
			}
		}
		if existing.Width >= minWidth {
			return existing, nil
		}
		grow := minWidth - existing.Width
		newUnits := alloc(grow)
		existing.Width += len(newUnits)
		return existing, nil
	}

	newUnits := alloc(minWidth)
	g := &Group{Name: name, Kind: kind, Start: int(newUnits[0]), Width: len(newUnits)}
	gt.byName[name] = g
	gt.order = append(gt.order, g)
	if kind == actionGroupKind {
		gt.actionOrder = append(gt.actionOrder, g)
	}
	return g, nil
}

func kindName(k groupKind) string {
	if k == sensorGroupKind {
		return "sensor"
	}
	return "action"
}

// unitIDs returns the unit ids belonging to g.
func (g *Group) unitIDs() []uint32 {
	ids := make([]uint32, g.Width)
	for i := range ids {
		ids[i] = uint32(g.Start + i)
	}
	return ids
}

// lookup returns the group bound to name, if any.
func (gt *groupTable) lookup(name string) (*Group, bool) {
	g, ok := gt.byName[name]
	return g, ok
}

// actionAt returns the nth action group in definition order, used by
// action_name(index) and the indexed selection API.
func (gt *groupTable) actionAt(index int) (*Group, bool) {
	if index < 0 || index >= len(gt.actionOrder) {
		return nil, false
	}
	return gt.actionOrder[index], true
}

// actionIndexOf returns the definition-order index of an action group name.
func (gt *groupTable) actionIndexOf(name string) (int, bool) {
	for i, g := range gt.actionOrder {
		if g.Name == name {
			return i, true
		}
	}
	return 0, false
}

// clone returns a deep copy sharing no mutable state with gt.
func (gt *groupTable) clone() *groupTable {
	out := newGroupTable()
	for _, g := range gt.order {
		cp := *g
		out.byName[g.Name] = &cp
		out.order = append(out.order, &cp)
		if g.Kind == actionGroupKind {
			out.actionOrder = append(out.actionOrder, &cp)
		}
	}
	return out
}

// register inserts an already-fully-formed group, preserving the caller's
// iteration order. Used when rebuilding a groupTable from a persisted image.
func (gt *groupTable) register(g *Group) {
	gt.byName[g.Name] = g
	gt.order = append(gt.order, g)
	if g.Kind == actionGroupKind {
		gt.actionOrder = append(gt.actionOrder, g)
	}
}
