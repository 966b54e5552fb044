package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/stretchr/testify/require"
)

func TestDiffCmd_ReportsNonzeroDeltasBetweenTwoImages(t *testing.T) {
	a := testSubstrate(t)
	b := a.Clone()
	b.ApplyStimulus("left", 1.0)
	for i := 0; i < 5; i++ {
		b.Step()
	}

	dir := t.TempDir()
	pathA, pathB := dir+"/a.img", dir+"/b.img"
	saveTo(t, pathA, a)
	saveTo(t, pathB, b)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"diff", pathA, pathB, "--top-k", "5"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "top-5")
}

func saveTo(t *testing.T, path string, s *substrate.Substrate) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveImageTo(f))
	require.NoError(t, f.Close())
}
