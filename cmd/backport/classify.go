package main

import (
	"fmt"
	"os"

	"github.com/zboralski/ps5kitchen/internal/compat"
	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/nid"
)

func classifyBinary(path, fwCurrent, fwTarget string) error {
	if fwCurrent == "" || fwTarget == "" {
		return fmt.Errorf("--fw-current and --fw-target are required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := elfraw.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	db := nid.NewDB()
	result, err := compat.Analyze(f, db, fwCurrent, fwTarget, nil)
	if err != nil {
		return err
	}

	fmt.Printf("%s: score=%d risk=%s firmware-gap=%d (%s)\n",
		path, result.CompatScore, result.RiskLevel, result.FWGap, result.FWGapLevel)
	for _, lr := range result.LibResults {
		fmt.Printf("  %-28s risk=%-8s action=%-16s %s\n", lr.Lib, lr.Risk, lr.Action, lr.Detail)
	}
	if len(result.MissingSymbols) > 0 {
		fmt.Printf("  %d unresolved import(s) not found in the knowledge base\n", len(result.MissingSymbols))
	}
	return nil
}
