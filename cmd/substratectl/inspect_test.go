package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/stretchr/testify/require"
)

func testSubstrate(t *testing.T) *substrate.Substrate {
	t.Helper()
	cfg := substrate.DefaultConfig()
	cfg.UnitCount = 12
	cfg.ConnectivityPerUnit = 3
	cfg.MaxUnits = 24 // headroom so DefineSensor/DefineAction can allocate group units
	seed := int64(7)
	cfg.Seed = &seed
	s, err := substrate.New(cfg)
	require.NoError(t, err)
	_, err = s.DefineSensor("left", 4)
	require.NoError(t, err)
	_, err = s.DefineAction("go", 2)
	require.NoError(t, err)
	return s
}

func TestPrintInspect_IncludesEveryChunkSummary(t *testing.T) {
	s := testSubstrate(t)
	var buf bytes.Buffer

	printInspect(&buf, s)

	out := buf.String()
	require.Contains(t, out, "CFG0")
	require.Contains(t, out, "STAT")
	require.Contains(t, out, "UNIT")
	require.Contains(t, out, "GRPS")
	require.Contains(t, out, "SYMB")
	require.Contains(t, out, "CAUS")
	require.Contains(t, out, "sensor")
	require.Contains(t, out, "left")
	require.Contains(t, out, "action")
	require.Contains(t, out, "go")
}

func TestInspectCmd_RunsAgainstASavedImage(t *testing.T) {
	s := testSubstrate(t)
	path := t.TempDir() + "/a.img"

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveImageTo(f))
	require.NoError(t, f.Close())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"inspect", path})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "CFG0")
}
