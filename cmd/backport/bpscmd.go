package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zboralski/ps5kitchen/internal/bps"
)

func newBPSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bps",
		Short: "Apply or inspect BPS binary patches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <patch.bps>",
		Short: "Validate a BPS patch's header, sizes and checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			info, err := bps.Validate(patch)
			if err != nil {
				return err
			}
			fmt.Printf("source size: %d\ntarget size: %d\nmetadata: %q\n", info.SourceSize, info.TargetSize, info.Metadata)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply <source> <patch.bps> <output>",
		Short: "Apply a BPS patch to a source file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			patch, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			out, err := bps.Apply(source, patch, true)
			if err != nil {
				return err
			}
			return os.WriteFile(args[2], out, 0o644)
		},
	})

	return cmd
}
