package expert

// ContextStats tracks one context's trial history on the parent side: how
// long it's been seen, and fast/slow reward EMAs used to detect a regime
// shift or a performance collapse relative to the best the context has
// ever sustained.
type ContextStats struct {
	FirstSeenTrial uint64
	TrialsSeen     uint64
	RewardFastEMA  float64
	RewardSlowEMA  float64
	BestSlowEMA    float64
}

const (
	fastEMARate = 0.20
	slowEMARate = 0.05
)

// NoteTrial folds one more (context, reward) observation into the running
// statistics. trialIndex anchors FirstSeenTrial the first time the context
// is seen; TrialsSeen itself saturates rather than wrapping.
func (c *ContextStats) NoteTrial(trialIndex uint64, reward float64) {
	if c.TrialsSeen == 0 {
		c.FirstSeenTrial = trialIndex
	}
	if c.TrialsSeen < ^uint64(0) {
		c.TrialsSeen++
	}
	c.RewardFastEMA = (1-fastEMARate)*c.RewardFastEMA + fastEMARate*reward
	c.RewardSlowEMA = (1-slowEMARate)*c.RewardSlowEMA + slowEMARate*reward
	if c.RewardSlowEMA > c.BestSlowEMA {
		c.BestSlowEMA = c.RewardSlowEMA
	}
}

// SpawnSignals evaluates every spawn trigger against the current
// statistics and returns the names of every signal that fired, in a fixed
// order (novel, reward_regime_shift, performance_collapse, saturation).
// Novel fires independently of parentTrials; the other three additionally
// require parentTrials >= policy.SpawnMinTrials.
func (c ContextStats) SpawnSignals(policy Policy, parentTrials uint64, shouldGrow bool) []string {
	var signals []string

	if c.TrialsSeen == 1 {
		signals = append(signals, "novel")
	}

	if parentTrials >= uint64(policy.SpawnMinTrials) {
		if c.TrialsSeen >= 12 {
			diff := absf(c.RewardFastEMA - c.RewardSlowEMA)
			signFlip := c.RewardFastEMA*c.RewardSlowEMA < 0 &&
				absf(c.RewardFastEMA) > 0.2 && absf(c.RewardSlowEMA) > 0.2
			if diff >= policy.RewardShiftEMADeltaThreshold || signFlip {
				signals = append(signals, "reward_regime_shift")
			}
		}
		if c.TrialsSeen >= 20 &&
			c.BestSlowEMA >= policy.PerformanceCollapseBaselineMin &&
			c.RewardFastEMA <= c.BestSlowEMA-policy.PerformanceCollapseDropThreshold {
			signals = append(signals, "performance_collapse")
		}
		if shouldGrow {
			signals = append(signals, "saturation")
		}
	}

	return signals
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
