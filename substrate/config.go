// substrate/config.go
package substrate

import (
	"math"

	"github.com/SynapticNetworks/temporal-neuron/types"
)

// Config holds every explicit, documented field of a Substrate. New
// validates every field and returns a *types.ConfigError rather than
// panicking on an invalid value.
//
// One struct field per concern, with a trailing comment documenting the
// valid range and effect, rather than functional options.
type Config struct {
	UnitCount           int     // initial number of units (must be > 0)
	ConnectivityPerUnit int     // initial out-degree per unit (must be > 0)
	Dt                  float64 // Euler step size (must be > 0)
	BaseFreq            float64 // intrinsic phase advance per Δt
	NoiseAmp            float64 // per-tick uniform noise amplitude on amp update
	NoisePhase          float64 // per-tick uniform noise on phase update
	GlobalInhibition    float64 // coefficient of mean-activity subtractive competition
	HebbRate            float64 // base plasticity rate
	ForgetRate          float64 // multiplicative decay on all edge weights per tick
	PruneBelow          float64 // |w| < this => prune (engram edges keep a floor)
	CoactiveThreshold   float64 // min amplitude on both endpoints for Hebb update
	PhaseLockThreshold  float64 // min phase alignment for LTP (below -> mild LTD)
	ImprintRate         float64 // coupling between stimulus and group units
	Seed                *int64  // if set, RNG is deterministic
	CausalDecay         float64 // per-tick multiplicative decay on causal counts
	MaxUnits            int     // hard upper bound on substrate growth (0 = UnitCount, no growth)
}

// DefaultConfig returns a reasonable set of defaults for a small substrate.
func DefaultConfig() Config {
	return Config{
		UnitCount:           256,
		ConnectivityPerUnit: 12,
		Dt:                  0.05,
		BaseFreq:            1.0,
		NoiseAmp:            0.02,
		NoisePhase:          0.01,
		GlobalInhibition:    0.2,
		HebbRate:            0.08,
		ForgetRate:          0.0005,
		PruneBelow:          0.01,
		CoactiveThreshold:   0.3,
		PhaseLockThreshold:  0.7,
		ImprintRate:         0.5,
		Seed:                nil,
		CausalDecay:         0.002,
		MaxUnits:            0,
	}
}

// Validate rejects a non-positive UnitCount, ConnectivityPerUnit, or Dt,
// a NaN rate field, or a negative MaxUnits.
func (c Config) Validate() error {
	if c.UnitCount <= 0 {
		return &types.ConfigError{Field: "UnitCount", Reason: "must be > 0"}
	}
	if c.ConnectivityPerUnit <= 0 {
		return &types.ConfigError{Field: "ConnectivityPerUnit", Reason: "must be > 0"}
	}
	if c.Dt <= 0 {
		return &types.ConfigError{Field: "Dt", Reason: "must be > 0"}
	}
	rates := map[string]float64{
		"BaseFreq": c.BaseFreq, "NoiseAmp": c.NoiseAmp, "NoisePhase": c.NoisePhase,
		"GlobalInhibition": c.GlobalInhibition, "HebbRate": c.HebbRate,
		"ForgetRate": c.ForgetRate, "PruneBelow": c.PruneBelow,
		"CoactiveThreshold": c.CoactiveThreshold, "PhaseLockThreshold": c.PhaseLockThreshold,
		"ImprintRate": c.ImprintRate, "CausalDecay": c.CausalDecay,
	}
	for name, v := range rates {
		if math.IsNaN(v) {
			return &types.ConfigError{Field: name, Reason: "must not be NaN"}
		}
	}
	if c.MaxUnits < 0 {
		return &types.ConfigError{Field: "MaxUnits", Reason: "must be >= 0"}
	}
	return nil
}

// effectiveMaxUnits returns MaxUnits, defaulting to UnitCount (no growth)
// when unset.
func (c Config) effectiveMaxUnits() int {
	if c.MaxUnits <= 0 {
		return c.UnitCount
	}
	return c.MaxUnits
}

// engramFloor is the minimum |w| an engram edge keeps under pruning,
// fixed at twice the prune threshold.
func (c Config) engramFloor() float64 {
	return 2 * c.PruneBelow
}
