package main

import (
	"fmt"
	"os"

	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/spf13/cobra"
)

func newNewCmd() *cobra.Command {
	cfg := substrate.DefaultConfig()
	var out string
	var seed int64

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write a fresh image built from the given (or default) config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = &seed
			}

			s, err := substrate.New(cfg)
			if err != nil {
				return fmt.Errorf("build substrate: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := s.SaveImageTo(f); err != nil {
				return fmt.Errorf("save image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (unit_count=%d connectivity=%d)\n", out, cfg.UnitCount, cfg.ConnectivityPerUnit)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&out, "out", "", "output image path (required)")
	flags.IntVar(&cfg.UnitCount, "unit-count", cfg.UnitCount, "initial unit count")
	flags.IntVar(&cfg.ConnectivityPerUnit, "connectivity", cfg.ConnectivityPerUnit, "initial out-degree per unit")
	flags.Float64Var(&cfg.Dt, "dt", cfg.Dt, "Euler step size")
	flags.Float64Var(&cfg.HebbRate, "hebb-rate", cfg.HebbRate, "base plasticity rate")
	flags.Float64Var(&cfg.ForgetRate, "forget-rate", cfg.ForgetRate, "per-tick multiplicative weight decay")
	flags.Float64Var(&cfg.PruneBelow, "prune-below", cfg.PruneBelow, "prune threshold on |weight|")
	flags.Int64Var(&seed, "seed", 0, "RNG seed (deterministic if set)")

	return cmd
}
