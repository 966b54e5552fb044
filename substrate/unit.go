// substrate/unit.go
package substrate

import "math"

// Unit is a lightweight oscillator: mutable amplitude/phase/bias/decay state
// plus pending input, and immutable origin metadata.
//
// Splits live oscillator state from birth-time-fixed configuration, the
// way a spiking-neuron model splits membrane state from wiring — here
// reduced to the two scalar dynamical quantities (amplitude, phase) the
// oscillator model calls for.
type Unit struct {
	// Mutable state, updated every step.
	Amplitude    float64 // in [-2, 2]
	Phase        float64 // in (-pi, pi]
	Bias         float64
	Decay        float64
	PendingInput float64

	// Immutable origin metadata, fixed at creation.
	BirthTick      uint64
	IsReserved     bool // true once allocated to a sensor/action group
	LearningEnabled bool // incoming engram edges may disable this
}

// newUnit constructs a unit with zeroed dynamical state, born at birthTick.
func newUnit(birthTick uint64) Unit {
	return Unit{
		LearningEnabled: true,
		BirthTick:       birthTick,
	}
}

// clampAmplitude enforces the [-2, 2] amplitude bound.
func clampAmplitude(a float64) float64 {
	if a < -2 {
		return -2
	}
	if a > 2 {
		return 2
	}
	return a
}

// wrapPhase normalizes phase into (-pi, pi].
func wrapPhase(p float64) float64 {
	const twoPi = 2 * math.Pi
	for p > math.Pi {
		p -= twoPi
	}
	for p <= -math.Pi {
		p += twoPi
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
