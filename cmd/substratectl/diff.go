package main

import (
	"fmt"
	"os"

	"github.com/SynapticNetworks/temporal-neuron/substrate"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "diff <a.img> <b.img>",
		Short: "Report the top-k largest weight deltas between two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadImage(args[0])
			if err != nil {
				return err
			}
			b, err := loadImage(args[1])
			if err != nil {
				return err
			}

			delta := a.DiffWeightsTopK(b, topK)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d of top-%d edges differ\n", len(delta.WeightDeltas), topK)
			for _, d := range delta.WeightDeltas {
				fmt.Fprintf(out, "  %d -> %d  dw=%+.6f\n", d.Src, d.Dst, d.DW)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 32, "number of largest-magnitude edges to report")
	return cmd
}

func loadImage(path string) (*substrate.Substrate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := substrate.LoadImageFrom(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}
