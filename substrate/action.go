// substrate/action.go
package substrate

import "sort"

// ScoredAction is one entry of a ranked action list: the action's name and
// its fused habit+meaning score.
type ScoredAction struct {
	Name  string
	Score float64
}

// habitNorm computes clamp(sum(max(0, amp)) / (|units| * 2), 0, 1) over an
// action group's units.
func (s *Substrate) habitNorm(g *Group) float64 {
	sum := 0.0
	for _, id := range g.unitIDs() {
		if a := s.units[id].Amplitude; a > 0 {
			sum += a
		}
	}
	return clamp01(sum / (float64(g.Width) * 2))
}

// meaning computes pair_value + 0.15*global_value for action g in context.
func (s *Substrate) meaning(context string, g *Group) float64 {
	pos := s.symbols.RewardPos()
	neg := s.symbols.RewardNeg()

	actionID := s.symbols.Intern(g.Name)
	pairID := s.symbols.Intern("pair::" + context + "::" + g.Name)

	globalValue := s.causal.CausalStrength(actionID, pos) - s.causal.CausalStrength(actionID, neg)
	pairValue := s.causal.CausalStrength(pairID, pos) - s.causal.CausalStrength(pairID, neg)

	return pairValue + 0.15*globalValue
}

// score computes 0.5*habit_norm(a) + alpha*meaning(a|context).
func (s *Substrate) score(context string, g *Group, alpha float64) float64 {
	return 0.5*s.habitNorm(g) + alpha*s.meaning(context, g)
}

// RankedActionsWithMeaning returns every defined action sorted by score
// descending, ties broken by definition order.
func (s *Substrate) RankedActionsWithMeaning(context string, alpha float64) []ScoredAction {
	out := make([]ScoredAction, 0, len(s.groups.actionOrder))
	for _, g := range s.groups.actionOrder {
		out = append(out, ScoredAction{Name: g.Name, Score: s.score(context, g, alpha)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// SelectActionWithMeaning returns the name and score of the top-ranked
// action for context. It applies no stimulus, runs no step and writes
// nothing to causal memory; scoring may intern the action names and their
// pair::context::action symbols in the symbol table.
func (s *Substrate) SelectActionWithMeaning(context string, alpha float64) (string, float64) {
	ranked := s.RankedActionsWithMeaning(context, alpha)
	if len(ranked) == 0 {
		return "", 0
	}
	return ranked[0].Name, ranked[0].Score
}

// SelectActionWithMeaningIndex is SelectActionWithMeaning but returns the
// winning action's definition-order index instead of its name.
func (s *Substrate) SelectActionWithMeaningIndex(context string, alpha float64) (int, float64) {
	name, score := s.SelectActionWithMeaning(context, alpha)
	if name == "" {
		return -1, 0
	}
	idx, _ := s.groups.actionIndexOf(name)
	return idx, score
}

// MeaningHint returns the strongest outgoing (symbol, strength) causal
// association from context's interned symbol, over every target symbol, or
// false if context is not in the symbol table or has no outgoing edges.
func (s *Substrate) MeaningHint(context string) (string, float64, bool) {
	ctxID, ok := s.symbols.Lookup(context)
	if !ok {
		return "", 0, false
	}
	edges := s.causal.TopOutgoing(ctxID, 1)
	if len(edges) == 0 {
		return "", 0, false
	}
	name, ok := s.symbols.Name(edges[0].To)
	if !ok {
		return "", 0, false
	}
	return name, edges[0].Strength, true
}
