package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/stretchr/testify/require"
)

func TestNewCmd_WritesALoadableImageWithRequestedConfig(t *testing.T) {
	path := t.TempDir() + "/fresh.img"

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"new", "--out", path, "--unit-count", "24", "--connectivity", "3", "--seed", "42"})

	require.NoError(t, root.Execute())

	loaded, err := substrate.LoadImageFrom(mustOpen(t, path))
	require.NoError(t, err)
	require.Equal(t, 24, loaded.Config().UnitCount)
	require.Equal(t, 3, loaded.Config().ConnectivityPerUnit)
}

func TestNewCmd_RequiresOut(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"new"})
	require.Error(t, root.Execute())
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	return f
}
