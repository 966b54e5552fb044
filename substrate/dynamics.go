// substrate/dynamics.go
package substrate

import (
	"math"

	"github.com/SynapticNetworks/temporal-neuron/exec"
	"github.com/SynapticNetworks/temporal-neuron/internal/obslog"
	"gonum.org/v1/gonum/stat"
)

// Step advances the substrate one Δt: influence pass, global inhibition,
// per-unit noise, Euler update, Hebbian plasticity, forgetting, pruning,
// then records diagnostics. Synchronous; runs to completion on the Scalar
// tier. Equivalent to StepParallel(1); see exec.Session for driving this
// same kernel through the Simd/Parallel/Gpu tiers.
func (s *Substrate) Step() {
	s.stepCore(1)
}

// StepScalar implements exec.Kernel: the reference, single-goroutine tier.
func (s *Substrate) StepScalar() { s.Step() }

// StepSimd implements exec.Kernel. This build has no platform SIMD
// intrinsics available, so it runs the same loop shape as Scalar; a build
// tagged with platform assembly can specialize the inner influence loop
// without changing this signature or any caller.
func (s *Substrate) StepSimd() { s.Step() }

// StepParallel implements exec.Kernel: splits the read-only influence pass
// across workers disjoint unit ranges, then joins before running plasticity
// and pruning sequentially (CSR row mutation is not safe to parallelize).
func (s *Substrate) StepParallel(workers int) {
	s.stepCore(workers)
}

func (s *Substrate) stepCore(workers int) {
	n := len(s.units)
	if n == 0 {
		s.ageSteps++
		return
	}

	ampInfluence := make([]float64, n)
	phaseInfluence := make([]float64, n)
	units := s.units
	graph := s.graph
	_ = exec.RunRanges(workers, n, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			to, w := graph.neighbors(i)
			for k, j := range to {
				ampInfluence[i] += w[k] * units[j].Amplitude
				phaseInfluence[i] += w[k] * angleDelta(units[j].Phase, units[i].Phase)
			}
		}
		return nil
	})

	amplitudes := make([]float64, n)
	for i := range s.units {
		amplitudes[i] = s.units[i].Amplitude
	}
	meanAmp := stat.Mean(amplitudes, nil)
	inhibition := s.cfg.GlobalInhibition * meanAmp

	dt := s.cfg.Dt
	for i := range s.units {
		u := &s.units[i]
		noiseAmp := uniform(s.rng, s.cfg.NoiseAmp)
		noisePhase := uniform(s.rng, s.cfg.NoisePhase)

		ampDeriv := u.Bias + u.PendingInput + ampInfluence[i] - inhibition - u.Decay*u.Amplitude + noiseAmp
		u.Amplitude = clampAmplitude(u.Amplitude + ampDeriv*dt)
		u.Phase = wrapPhase(u.Phase + (s.cfg.BaseFreq+phaseInfluence[i]+noisePhase)*dt)
		u.PendingInput = 0
	}

	lr := s.cfg.HebbRate * (1 + math.Max(0, s.neuromod))
	coactive := s.cfg.CoactiveThreshold
	phaseLock := s.cfg.PhaseLockThreshold
	pruned := s.graph.applyPlasticityAndPrune(
		s.cfg.ForgetRate, s.cfg.PruneBelow, s.cfg.engramFloor(),
		func(j uint32) bool { return units[j].LearningEnabled },
		func(i int, j uint32, w float64) float64 {
			ai, aj := units[i].Amplitude, units[j].Amplitude
			if ai <= coactive || aj <= coactive {
				return 0
			}
			a := phaseAlignment(units[i].Phase, units[j].Phase)
			if a > phaseLock {
				return lr * a
			}
			return -lr * 0.05
		},
	)

	if pruned > 0 {
		obslog.Infof("pruning: removed %d edges below floor (connection_count now %d)", pruned, s.graph.connectionCount())
	}

	s.diag.PrunedLastStep = pruned
	s.diag.BirthsLastStep = 0
	s.diag.AvgAmp = meanAmp
	s.diag.AvgWeight = s.graph.avgWeight()
	s.diag.ConnectionCount = s.graph.connectionCount()
	s.diag.UnitCount = n

	s.ageSteps++
}

// angleDelta returns the signed minimal angular difference from - to b, in
// (-pi, pi].
func angleDelta(from, to float64) float64 {
	return wrapPhase(to - from)
}

// phaseAlignment returns (1 + cos(delta))/2, in [0, 1].
func phaseAlignment(a, b float64) float64 {
	return (1 + math.Cos(angleDelta(a, b))) / 2
}

func uniform(rng interface{ Float64() float64 }, amp float64) float64 {
	if amp <= 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * amp
}
