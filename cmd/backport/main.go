package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zboralski/ps5kitchen/internal/bps"
	"github.com/zboralski/ps5kitchen/internal/config"
	"github.com/zboralski/ps5kitchen/internal/decrypter"
	glog "github.com/zboralski/ps5kitchen/internal/log"
	"github.com/zboralski/ps5kitchen/internal/nid"
	"github.com/zboralski/ps5kitchen/internal/pipeline"
	"github.com/zboralski/ps5kitchen/internal/report"
	"github.com/zboralski/ps5kitchen/internal/rules"
)

var (
	cfgPath string
	cfg     config.Config

	selfutilPath string
	noDecrypter  bool
	watch        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "backport",
		Short: "Backport a PS5 game binary to an earlier firmware",
		Long: `backport inspects a game folder's SELF containers and raw ELFs,
scores each library import against a firmware knowledge base, and applies
whatever mitigations the operator opts into: fakelib substitution, BPS
binary patches, PLT-slot stubbing for missing functions, SDK-version-word
rewriting, and re-signing.

Examples:
  backport run --game-folder ./game --fw-current 10.01 --fw-target 6.00
  backport run --game-folder ./game --fw-current 10.01 --fw-target 6.00 --stub-missing --apply-bps
  backport inspect ./game/eboot.bin
  backport classify ./game/eboot.bin --fw-current 10.01 --fw-target 6.00`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "optional YAML config file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newStubCmd())
	rootCmd.AddCommand(newBPSCmd())
	rootCmd.AddCommand(newParamCmd())
	rootCmd.AddCommand(newNidCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		gameFolder   string
		fwCurrent    string
		fwTarget     string
		applyBPS     bool
		stubMissing  bool
		resign       bool
		patchSDK     bool
		patchParam   bool
		exportsDir   string
		dbPath       string
		outputFolder string
		outputReport string
		noColor      bool
		rulesScript  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full backport pipeline over a game folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			if gameFolder != "" {
				cfg.InputDir = gameFolder
			}
			if fwCurrent != "" {
				cfg.FWSource = fwCurrent
			}
			if fwTarget != "" {
				cfg.FWTarget = fwTarget
			}
			if exportsDir != "" {
				cfg.ExportsDir = exportsDir
			}
			if dbPath != "" {
				cfg.PatchDBPath = dbPath
			}
			if outputFolder != "" {
				cfg.OutputDir = outputFolder
			}
			if outputReport != "" {
				cfg.OutputReportPath = outputReport
			}
			cfg.ApplyBPS = cfg.ApplyBPS || applyBPS
			cfg.StubMissing = cfg.StubMissing || stubMissing
			cfg.Resign = cfg.Resign || resign
			cfg.PatchSDK = cfg.PatchSDK || patchSDK
			cfg.PatchParam = cfg.PatchParam || patchParam
			cfg.NoColor = cfg.NoColor || noColor
			if rulesScript != "" {
				cfg.RulesScript = rulesScript
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return runPipeline(cfg)
		},
	}

	cmd.Flags().StringVar(&gameFolder, "game-folder", "", "path to the game folder to backport")
	cmd.Flags().StringVar(&fwCurrent, "fw-current", "", "firmware the game currently targets")
	cmd.Flags().StringVar(&fwTarget, "fw-target", "", "firmware to backport the game to")
	cmd.Flags().BoolVar(&applyBPS, "apply-bps", false, "apply matching BPS patches from the patch database")
	cmd.Flags().BoolVar(&stubMissing, "stub-missing", false, "stub PLT slots for functions missing on the target firmware")
	cmd.Flags().BoolVar(&resign, "resign", false, "re-wrap patched SELF containers as fake-signed")
	cmd.Flags().BoolVar(&patchSDK, "patch-sdk", false, "rewrite SDK version words in process/module param segments")
	cmd.Flags().BoolVar(&patchParam, "patch-param", false, "rewrite param.json/param.sfo firmware fields")
	cmd.Flags().StringVar(&exportsDir, "exports-dir", "", "directory of per-firmware export listings (default data/exports)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the BPS patch database (default data/patch_database.json)")
	cmd.Flags().StringVar(&selfutilPath, "selfutil", "", "path to the external SELF decrypter executable")
	cmd.Flags().BoolVar(&noDecrypter, "no-decrypter", false, "skip SELF decryption entirely; restrict to already-plain files")
	cmd.Flags().StringVar(&outputFolder, "output-folder", "", "directory to write the processed files into, at their paths relative to the input folder")
	cmd.Flags().StringVar(&outputReport, "output-report", "", "path to write the JSON run report")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colorized terminal output")
	cmd.Flags().BoolVar(&watch, "watch", false, "show a live progress display while the run executes")
	cmd.Flags().StringVar(&rulesScript, "rules-script", "", "optional JavaScript file overriding per-library compatibility actions")

	return cmd
}

func runPipeline(cfg config.Config) error {
	logger := glog.New(false)

	db, err := bps.LoadDatabase(cfg.PatchDBPath)
	if err != nil {
		return fmt.Errorf("loading patch database: %w", err)
	}

	var scriptedRules *rules.Script
	if cfg.RulesScript != "" {
		src, err := os.ReadFile(cfg.RulesScript)
		if err != nil {
			return fmt.Errorf("reading rules script: %w", err)
		}
		scriptedRules, err = rules.Load(string(src))
		if err != nil {
			return fmt.Errorf("loading rules script: %w", err)
		}
	}

	var dec *decrypter.Subprocess
	if !noDecrypter {
		toolPath, ok := decrypter.FindTool(selfutilPath, cfg.InputDir, "selfutil")
		if ok {
			dec = &decrypter.Subprocess{ToolPath: toolPath}
		}
	}

	opts := pipeline.Options{
		InputDir:      cfg.InputDir,
		OutputDir:     cfg.OutputDir,
		FWCurrent:     cfg.FWSource,
		FWTarget:      cfg.FWTarget,
		ApplyBPS:      cfg.ApplyBPS,
		StubMissing:   cfg.StubMissing,
		PatchSDK:      cfg.PatchSDK,
		PatchParam:    cfg.PatchParam,
		Resign:        cfg.Resign,
		PatchDB:       db,
		KnowledgeBase: nid.NewDB(),
		RulesScript:   scriptedRules,
		Logger:        logger,
	}
	if dec != nil {
		opts.Decrypter = *dec
	}

	var prog *progressModel
	if watch {
		prog = newProgressModel()
		opts.Progress = prog.onFileDone
		prog.start()
		defer prog.stop()
	}

	rep, runErr := pipeline.New(opts).Run(context.Background())

	fmt.Println(report.RenderSummary(rep, cfg.NoColor))
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
	}

	if cfg.OutputReportPath != "" {
		data, err := rep.MarshalJSONIndent()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.OutputReportPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <binary>",
		Short: "Parse and print a raw ELF's structure without mutating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectBinary(args[0])
		},
	}
}

func newClassifyCmd() *cobra.Command {
	var fwCurrent, fwTarget string
	cmd := &cobra.Command{
		Use:   "classify <binary>",
		Short: "Score a binary's imports against the firmware knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classifyBinary(args[0], fwCurrent, fwTarget)
		},
	}
	cmd.Flags().StringVar(&fwCurrent, "fw-current", "", "firmware the game currently targets")
	cmd.Flags().StringVar(&fwTarget, "fw-target", "", "firmware to backport the game to")
	return cmd
}
