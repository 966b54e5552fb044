package exec

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunRanges_CoversEveryIndexExactlyOnce(t *testing.T) {
	const n = 97
	var hits [n]int32
	err := RunRanges(8, n, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
		return nil
	})
	require.NoError(t, err)
	for i, h := range hits {
		require.Equalf(t, int32(1), h, "index %d covered %d times", i, h)
	}
}

func TestRunRanges_SingleWorkerRunsInline(t *testing.T) {
	called := 0
	err := RunRanges(1, 10, func(lo, hi int) error {
		called++
		require.Equal(t, 0, lo)
		require.Equal(t, 10, hi)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, called)
}

func TestRunRanges_ZeroLengthIsNoop(t *testing.T) {
	called := false
	err := RunRanges(4, 0, func(lo, hi int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestRunRanges_PropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := RunRanges(4, 40, func(lo, hi int) error {
		if lo == 0 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
}

func TestParseTier_RoundTripsKnownNames(t *testing.T) {
	for _, tier := range []Tier{Scalar, Simd, Parallel, Gpu} {
		parsed, ok := ParseTier(tier.String())
		require.True(t, ok)
		require.Equal(t, tier, parsed)
	}
}

func TestParseTier_UnknownNameFallsBackToScalar(t *testing.T) {
	tier, ok := ParseTier("quantum")
	require.False(t, ok)
	require.Equal(t, Scalar, tier)
}
