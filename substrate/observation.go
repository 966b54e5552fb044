// substrate/observation.go
package substrate

import (
	"strings"

	"github.com/SynapticNetworks/temporal-neuron/types"
)

// observationBuffer stages one tick's worth of symbol events before
// commit_observation folds them into causal memory, or discard_observation
// drops them.
type observationBuffer struct {
	stimuli         []string
	actions         []string
	compoundSymbols []string
	lastReinforced  []ReinforcedAction
}

// ReinforcedAction records one reinforce_action call for observers.
type ReinforcedAction struct {
	Name  string
	Delta float64
}

func (b observationBuffer) clone() observationBuffer {
	return observationBuffer{
		stimuli:         append([]string(nil), b.stimuli...),
		actions:         append([]string(nil), b.actions...),
		compoundSymbols: append([]string(nil), b.compoundSymbols...),
		lastReinforced:  append([]ReinforcedAction(nil), b.lastReinforced...),
	}
}

func (b *observationBuffer) reset() {
	b.stimuli = b.stimuli[:0]
	b.actions = b.actions[:0]
	b.compoundSymbols = b.compoundSymbols[:0]
}

// ApplyStimulus adds strength*imprint_rate to pending_input of every unit in
// the named sensor group, and stages name for causal commit. Multiple
// stimuli in the same tick are additive.
func (s *Substrate) ApplyStimulus(name string, strength float64) {
	g, ok := s.groups.lookup(name)
	if !ok || g.Kind != sensorGroupKind {
		return
	}
	input := strength * s.cfg.ImprintRate
	for _, id := range g.unitIDs() {
		s.units[id].PendingInput += input
	}
	s.obs.stimuli = append(s.obs.stimuli, name)
}

// NoteAction stages name as an action observation for the current tick and
// bumps that action's unit amplitudes by a small imprint so habit reflects
// expressed behavior.
func (s *Substrate) NoteAction(name string) {
	g, ok := s.groups.lookup(name)
	if !ok || g.Kind != actionGroupKind {
		return
	}
	s.obs.actions = append(s.obs.actions, name)
	const noteImprint = 0.1
	for _, id := range g.unitIDs() {
		s.units[id].Amplitude = clampAmplitude(s.units[id].Amplitude + noteImprint)
	}
}

// NoteActionIndex is NoteAction addressed by action definition index.
func (s *Substrate) NoteActionIndex(index int) {
	if g, ok := s.groups.actionAt(index); ok {
		s.NoteAction(g.Name)
	}
}

// NotePairIndex stages the compound symbol pair::context::action for the
// action at index, mirroring note_compound_symbol([context, action]).
func (s *Substrate) NotePairIndex(context string, actionIdx int) {
	g, ok := s.groups.actionAt(actionIdx)
	if !ok {
		return
	}
	s.NoteCompoundSymbol([]string{context, g.Name})
}

// NoteCompoundSymbol stages join("::", parts) as a causal observation.
func (s *Substrate) NoteCompoundSymbol(parts []string) {
	s.obs.compoundSymbols = append(s.obs.compoundSymbols, strings.Join(parts, "::"))
}

// ReinforceAction bumps the amplitudes of name's units by
// clamp(delta,-1,1)*imprint_rate and records (name, delta) for observers.
// It does not write to causal memory directly.
func (s *Substrate) ReinforceAction(name string, delta float64) {
	g, ok := s.groups.lookup(name)
	if !ok || g.Kind != actionGroupKind {
		return
	}
	bump := clamp(delta, -1, 1) * s.cfg.ImprintRate
	for _, id := range g.unitIDs() {
		s.units[id].Amplitude = clampAmplitude(s.units[id].Amplitude + bump)
	}
	s.obs.lastReinforced = append(s.obs.lastReinforced, ReinforcedAction{Name: name, Delta: delta})
}

// ReinforceActionIndex is ReinforceAction addressed by action index.
func (s *Substrate) ReinforceActionIndex(index int, delta float64) {
	if g, ok := s.groups.actionAt(index); ok {
		s.ReinforceAction(g.Name, delta)
	}
}

// LastReinforcedActions returns the reinforcements staged this tick.
func (s *Substrate) LastReinforcedActions() []ReinforcedAction {
	return append([]ReinforcedAction(nil), s.obs.lastReinforced...)
}

const rewardEpsilon = 0.05

// CommitObservation folds the staged stimuli/actions/compound symbols (plus
// reward-sentinel staging from the current neuromodulator value) into
// causal memory, then rotates lag history and clears the buffer.
func (s *Substrate) CommitObservation() {
	current := s.flattenObservation()
	if s.neuromod > rewardEpsilon {
		current = append(current, s.symbols.RewardPos())
	} else if s.neuromod < -rewardEpsilon {
		current = append(current, s.symbols.RewardNeg())
	}
	s.causal.ObserveLagged(current, s.lagHistory, s.lagDecay)
	s.rotateLagHistory(current)
	s.obs.reset()
}

// DiscardObservation clears the staging buffer without writing to causal
// memory, but still rotates lag history with an empty slice so lag
// alignment is preserved when learning is suppressed.
func (s *Substrate) DiscardObservation() {
	s.rotateLagHistory(nil)
	s.obs.reset()
}

func (s *Substrate) flattenObservation() []types.SymbolID {
	current := make([]types.SymbolID, 0, len(s.obs.stimuli)+len(s.obs.actions)+len(s.obs.compoundSymbols))
	for _, name := range s.obs.stimuli {
		current = append(current, s.symbols.Intern(name))
	}
	for _, name := range s.obs.actions {
		current = append(current, s.symbols.Intern(name))
	}
	for _, name := range s.obs.compoundSymbols {
		current = append(current, s.symbols.Intern(name))
	}
	return current
}

func (s *Substrate) rotateLagHistory(current []types.SymbolID) {
	const maxLagDepth = 4
	hist := append([][]types.SymbolID{append([]types.SymbolID(nil), current...)}, s.lagHistory...)
	if len(hist) > maxLagDepth {
		hist = hist[:maxLagDepth]
	}
	s.lagHistory = hist
}

// Symbol interns name against the substrate's symbol table, used by hosts
// that want to look up a symbol id directly (e.g. for causal_strength
// queries against sensor/action names).
func (s *Substrate) Symbol(name string) types.SymbolID { return s.symbols.Intern(name) }

// CausalStrength exposes the substrate's causal memory strength query.
func (s *Substrate) CausalStrength(a, b types.SymbolID) float64 {
	return s.causal.CausalStrength(a, b)
}

// CausalStats mirrors causal memory's Stats for the diagnostics API.
func (s *Substrate) CausalStats() CausalStats {
	st := s.causal.Stats()
	return CausalStats{
		BaseSymbols:             st.BaseSymbols,
		Edges:                   st.Edges,
		LastDirectedEdgeUpdates: st.LastDirectedEdgeUpdates,
		LastCooccurEdgeUpdates:  st.LastCooccurEdgeUpdates,
	}
}
