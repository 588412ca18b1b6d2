package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zboralski/ps5kitchen/internal/compat"
	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/nid"
	"github.com/zboralski/ps5kitchen/internal/stub"
)

func newStubCmd() *cobra.Command {
	var fwCurrent, fwTarget string
	cmd := &cobra.Command{
		Use:   "stub <binary>",
		Short: "Stub PLT slots for functions missing on a target firmware",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fwCurrent == "" || fwTarget == "" {
				return fmt.Errorf("--fw-current and --fw-target are required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := elfraw.Parse(data)
			if err != nil {
				return err
			}

			db := nid.NewDB()
			result, err := compat.Analyze(f, db, fwCurrent, fwTarget, nil)
			if err != nil {
				return err
			}
			if len(result.MissingSymbols) == 0 {
				fmt.Println("no missing symbols to stub")
				return nil
			}

			gotMap := stub.BuildGOTMap(f)
			res, err := stub.ApplyMissing(data, f, db, gotMap, result.MissingSymbols)
			if err != nil {
				return err
			}

			for _, s := range res.Stubbed {
				fmt.Printf("stubbed %s (%s) at file offset 0x%x\n", s.Name, s.Mode, s.FileOffset)
			}
			for _, s := range res.SkippedCritical {
				fmt.Printf("skipped %s: classified %s, too critical to stub\n", s.Name, s.Risk)
			}
			for _, name := range res.NotFound {
				fmt.Printf("no PLT entry found for %s\n", name)
			}

			if len(res.Stubbed) == 0 {
				return nil
			}
			return os.WriteFile(args[0], data, 0o644)
		},
	}
	cmd.Flags().StringVar(&fwCurrent, "fw-current", "", "firmware the binary currently targets")
	cmd.Flags().StringVar(&fwTarget, "fw-target", "", "firmware to stub for")
	return cmd
}
