// Package pipeline drives the end-to-end backport of one game folder:
// unwrap, parse, classify, apply BPS patches, stub missing symbols,
// rewrite SDK version words, and rewrap, in the fixed order the
// reference tool uses. It fans the per-file work out across a bounded
// worker pool and folds the results into a single report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/zboralski/ps5kitchen/internal/backporterr"
	"github.com/zboralski/ps5kitchen/internal/bps"
	"github.com/zboralski/ps5kitchen/internal/compat"
	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/log"
	"github.com/zboralski/ps5kitchen/internal/nid"
	"github.com/zboralski/ps5kitchen/internal/param"
	"github.com/zboralski/ps5kitchen/internal/report"
	"github.com/zboralski/ps5kitchen/internal/rules"
	"github.com/zboralski/ps5kitchen/internal/selfcontainer"
	"github.com/zboralski/ps5kitchen/internal/stub"
)

// targetExtensions are the file types a game folder scan considers.
var targetExtensions = []string{".sprx", ".prx", ".bin"}

// Options configures one pipeline run. It mirrors the CLI flag surface:
// the mutating steps (BPS, stubbing, SDK/param patching, resigning) are
// each opt-in, matching the reference tool's refusal to touch game files
// by default on a jailbroken console where the firmware check is already
// bypassed by the exploit.
type Options struct {
	InputDir   string
	OutputDir  string
	FWCurrent  string
	FWTarget   string

	ApplyBPS    bool
	StubMissing bool
	PatchSDK    bool
	PatchParam  bool
	Resign      bool

	PatchDB           *bps.Database
	KnowledgeBase     *nid.DB
	AvailableFakelibs map[string]bool
	Decrypter         selfcontainer.Decrypter
	RulesScript       *rules.Script

	Concurrency int
	Logger      *log.Logger

	// Progress, if set, is called once per file as it finishes, for a
	// caller-side progress display. It must be safe to call from
	// multiple goroutines.
	Progress func(fr report.FileReport, done, total int)
}

// Pipeline runs a configured backport pass over a directory of files.
type Pipeline struct {
	opts Options
	log  *log.Logger
}

// New constructs a Pipeline, filling in safe defaults for anything the
// caller left zero.
func New(opts Options) *Pipeline {
	if opts.KnowledgeBase == nil {
		opts.KnowledgeBase = nid.NewDB()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}
	return &Pipeline{opts: opts, log: opts.Logger}
}

// CollectFiles walks dir for files whose extension matches the target
// set (.sprx, .prx, .bin).
func CollectFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, want := range targetExtensions {
			if ext == want {
				out = append(out, path)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Run executes the full pipeline over every file CollectFiles finds
// under opts.InputDir, in parallel up to opts.Concurrency, and returns
// the aggregated report. A non-nil error means at least one file failed
// a stage; the report is still fully populated and the caller should
// inspect it rather than treat the run as aborted, since a bad file
// never sinks its siblings.
func (p *Pipeline) Run(ctx context.Context) (report.Report, error) {
	started := time.Now()
	runID := uuid.NewString()

	files, err := CollectFiles(p.opts.InputDir)
	if err != nil {
		return report.Report{}, backporterr.Wrap(backporterr.KindIOFailure, "collect", "walking input directory", err)
	}

	results := make([]report.FileReport, len(files))
	var done int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			fr := p.processFile(gctx, path)
			results[i] = fr
			n := atomic.AddInt32(&done, 1)
			if p.opts.Progress != nil {
				p.opts.Progress(fr, int(n), len(files))
			}
			return nil
		})
	}
	// Per-file errors are captured into each FileReport rather than
	// aborting the run; a bad file should not sink the whole batch. They
	// are also folded into a single combined error below so a caller
	// that only checks Run's error return still learns a file failed.
	_ = g.Wait()

	var combined error
	for _, fr := range results {
		for _, msg := range fr.Errors {
			combined = multierr.Append(combined, fmt.Errorf("%s: %s", fr.Path, msg))
		}
	}

	rep := report.Aggregate(runID, started, time.Since(started), results, nil)
	return rep, combined
}

// processFile runs one file through the full stage order: unwrap,
// parse, classify, BPS, stub, SDK/param patch, rewrap. A failure to
// read, unwrap, parse or classify the file is recorded on the report and
// ends processing of that file; a failure in a later stage is recorded
// and the remaining stages still run. Either way the run continues with
// the next file.
func (p *Pipeline) processFile(ctx context.Context, path string) report.FileReport {
	fr := report.FileReport{Path: path, FWCurrent: p.opts.FWCurrent, FWTarget: p.opts.FWTarget}
	p.log.FileStart(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return fr
	}

	outPath, err := p.outputPath(path)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return fr
	}

	wasSelf := selfcontainer.IsSelf(raw)

	plain, err := selfcontainer.UnwrapOrPassthrough(ctx, path, raw, p.opts.Decrypter, os.ReadFile)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return fr
	}

	f, err := elfraw.Parse(plain)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return fr
	}

	result, err := compat.Analyze(f, p.opts.KnowledgeBase, p.opts.FWCurrent, p.opts.FWTarget, p.opts.AvailableFakelibs)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return fr
	}
	if p.opts.RulesScript != nil {
		for i, lr := range result.LibResults {
			result.LibResults[i] = p.opts.RulesScript.Apply(lr)
		}
	}
	fr.Score = result.CompatScore
	fr.Risk = string(result.RiskLevel)
	fr.AlsoRecommend = result.AlsoRecommend

	if p.opts.ApplyBPS && p.opts.PatchDB != nil {
		p.applyBPS(path, plain, &fr, &plain)
	}

	if p.opts.StubMissing {
		// BPS may have changed the file's byte layout; re-parse so the
		// PLT offsets the stubber computes refer to the bytes it is
		// about to mutate, not the pre-patch layout.
		stubFile := f
		if fr.BPSApplied {
			if reparsed, err := elfraw.Parse(plain); err == nil {
				stubFile = reparsed
			}
		}
		p.applyStubs(plain, stubFile, result, &fr)
	}

	if p.opts.PatchSDK {
		res, err := param.PatchSDKVersion(plain, p.opts.FWTarget)
		if err != nil {
			fr.Errors = append(fr.Errors, err.Error())
		} else {
			fr.SDKPatched = res.Patched
		}
	}

	if p.opts.PatchParam {
		fr.ParamPatched = p.patchParamSidecars(path, outPath)
	}

	if p.opts.Resign && wasSelf {
		wrapped, err := selfcontainer.Rewrap(plain, selfcontainer.RewrapOptions{})
		if err != nil {
			fr.Errors = append(fr.Errors, err.Error())
		} else {
			plain = wrapped
			fr.Resigned = true
		}
	}

	if err := os.WriteFile(outPath, plain, 0o644); err != nil {
		fr.Errors = append(fr.Errors, err.Error())
	}

	p.log.FileDone(path, fr.Score, fr.Risk)
	return fr
}

// outputPath maps an input-side file path to where patched bytes should
// land: in place when no output directory is configured, or at the same
// path relative to OutputDir otherwise. Matches the reference tool's
// "copy matched files into the output folder, then redirect the file
// list there" handling of --output-folder.
func (p *Pipeline) outputPath(path string) (string, error) {
	if p.opts.OutputDir == "" {
		return path, nil
	}
	rel, err := filepath.Rel(p.opts.InputDir, path)
	if err != nil {
		return "", backporterr.Wrap(backporterr.KindIOFailure, "output-path", "computing relative path", err)
	}
	out := filepath.Join(p.opts.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", backporterr.Wrap(backporterr.KindIOFailure, "output-path", "creating output directory", err)
	}
	return out, nil
}

// applyBPS looks up and applies a matching patch for this file's base
// name, rewriting *data in place on success.
func (p *Pipeline) applyBPS(path string, source []byte, fr *report.FileReport, data *[]byte) {
	name := filepath.Base(path)
	patchPath := p.opts.PatchDB.FindPatch(p.opts.FWCurrent, p.opts.FWTarget, name)
	if patchPath == "" {
		return
	}
	patch, err := os.ReadFile(patchPath)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return
	}
	out, err := bps.Apply(source, patch, true)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return
	}
	*data = out
	fr.BPSApplied = true
	fr.BPSPatch = filepath.Base(patchPath)
}

// applyStubs stubs out every function the compatibility analysis flagged
// as missing-but-stubbable, skipping any flagged as too critical to
// touch.
func (p *Pipeline) applyStubs(data []byte, f *elfraw.File, result compat.Result, fr *report.FileReport) {
	gotMap := stub.BuildGOTMap(f)

	needsStubbing := false
	for _, lr := range result.LibResults {
		if lr.Action == compat.ActionStubFunctions || lr.Action == compat.ActionStubRisky {
			needsStubbing = true
			break
		}
	}
	if !needsStubbing || len(result.MissingSymbols) == 0 {
		return
	}
	missing := result.MissingSymbols

	res, err := stub.ApplyMissing(data, f, p.opts.KnowledgeBase, gotMap, missing)
	if err != nil {
		fr.Errors = append(fr.Errors, err.Error())
		return
	}
	fr.StubsApplied = len(res.Stubbed)
	fr.StubsSkipped = len(res.NotFound)
	fr.SkippedCritical = len(res.SkippedCritical)
	for _, s := range res.Stubbed {
		p.log.StubApplied(s.Name, string(s.Mode), s.FileOffset)
	}
	for _, s := range res.SkippedCritical {
		p.log.StubSkipped(s.Name, string(s.Risk))
	}
}

// patchParamSidecars rewrites param.json/param.sfo next to the game
// binary, if present, reading from inputBinaryPath's directory and
// writing next to outputBinaryPath (the same directory when no output
// directory is configured). Returns whether anything changed.
func (p *Pipeline) patchParamSidecars(inputBinaryPath, outputBinaryPath string) bool {
	inDir := filepath.Dir(inputBinaryPath)
	outDir := filepath.Dir(outputBinaryPath)
	changed := false

	jsonPath := filepath.Join(inDir, "param.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		out, didChange, err := param.PatchParamJSON(data, p.opts.FWTarget)
		if err == nil && didChange {
			dst := filepath.Join(outDir, "param.json")
			if os.MkdirAll(outDir, 0o755) == nil && os.WriteFile(dst, out, 0o644) == nil {
				changed = true
			}
		}
	}

	sfoPath := filepath.Join(inDir, "param.sfo")
	if data, err := os.ReadFile(sfoPath); err == nil {
		out, didChange, err := param.PatchParamSFO(data, p.opts.FWTarget)
		if err == nil && didChange {
			dst := filepath.Join(outDir, "param.sfo")
			if os.MkdirAll(outDir, 0o755) == nil && os.WriteFile(dst, out, 0o644) == nil {
				changed = true
			}
		}
	}

	return changed
}

// InstallFakelibs copies every .sprx/.prx/.elf file found in numbered
// sibling folders (4/, 5/, 6/, 7/) next to gameDir into a fakelib/
// destination directory, matching the reference tool's firmware-numbered
// fakelib layout.
func InstallFakelibs(gameDir, destDir string) ([]string, error) {
	var installed []string
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, backporterr.Wrap(backporterr.KindIOFailure, "fakelibs", "creating destination dir", err)
	}

	parent := filepath.Dir(gameDir)
	for _, fwFolder := range []string{"4", "5", "6", "7"} {
		src := filepath.Join(parent, fwFolder)
		entries, err := os.ReadDir(src)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext != ".sprx" && ext != ".prx" && ext != ".elf" {
				continue
			}
			data, err := os.ReadFile(filepath.Join(src, e.Name()))
			if err != nil {
				continue
			}
			dst := filepath.Join(destDir, e.Name())
			if err := os.WriteFile(dst, data, 0o644); err != nil {
				return installed, backporterr.Wrap(backporterr.KindIOFailure, "fakelibs", fmt.Sprintf("writing %s", dst), err)
			}
			installed = append(installed, e.Name())
		}
	}
	return installed, nil
}
