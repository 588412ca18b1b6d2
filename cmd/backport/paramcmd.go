package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zboralski/ps5kitchen/internal/param"
)

func newParamCmd() *cobra.Command {
	var fwTarget string
	cmd := &cobra.Command{
		Use:   "param <binary>",
		Short: "Rewrite SDK version words in a process/module param segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fwTarget == "" {
				return fmt.Errorf("--fw-target is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, err := param.PatchSDKVersion(data, fwTarget)
			if err != nil {
				return err
			}
			if !res.Patched {
				fmt.Println(res.Detail)
				return nil
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			fmt.Println(res.Detail)
			return nil
		},
	}
	cmd.Flags().StringVar(&fwTarget, "fw-target", "", "firmware to stamp the param segment with")
	return cmd
}
