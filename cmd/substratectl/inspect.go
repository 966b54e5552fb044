package main

import (
	"fmt"
	"io"
	"os"

	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print CFG0/STAT/UNIT/GRPS/SYMB/CAUS chunk summaries for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := substrate.LoadImageFrom(f)
			if err != nil {
				return fmt.Errorf("load image: %w", err)
			}
			printInspect(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printInspect(w io.Writer, s *substrate.Substrate) {
	cfg := s.Config()
	diag := s.Diagnostics()
	causal := s.CausalStats()

	fmt.Fprintf(w, "CFG0  unit_count=%d connectivity=%d dt=%g hebb_rate=%g forget_rate=%g prune_below=%g max_units=%d\n",
		cfg.UnitCount, cfg.ConnectivityPerUnit, cfg.Dt, cfg.HebbRate, cfg.ForgetRate, cfg.PruneBelow, cfg.MaxUnits)
	fmt.Fprintf(w, "STAT  age_steps=%d\n", s.AgeSteps())
	fmt.Fprintf(w, "UNIT  unit_count=%d avg_amp=%.4f\n", diag.UnitCount, diag.AvgAmp)
	fmt.Fprintf(w, "GRPS  connection_count=%d avg_weight=%.4f\n", diag.ConnectionCount, diag.AvgWeight)
	for _, g := range s.Groups() {
		fmt.Fprintf(w, "      %-6s %-16s start=%-5d width=%d\n", g.Kind, g.Name, g.Start, g.Width)
	}
	fmt.Fprintf(w, "SYMB  base_symbols=%d\n", causal.BaseSymbols)
	fmt.Fprintf(w, "CAUS  edges=%d last_directed_updates=%d last_cooccur_updates=%d\n",
		causal.Edges, causal.LastDirectedEdgeUpdates, causal.LastCooccurEdgeUpdates)
}
