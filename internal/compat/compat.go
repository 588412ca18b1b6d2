// Package compat joins a binary's imported libraries against the
// firmware knowledge base to score how likely it is to run on a target
// firmware, and to recommend a mitigation (fakelib substitution, PLT
// stubbing, or "check manually") for each library it references.
package compat

import (
	"strings"

	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/nid"
)

// Action is the recommended mitigation for one library.
type Action string

const (
	ActionUseFakelib     Action = "use_fakelib"
	ActionFakelibNeeded  Action = "fakelib_needed"
	ActionStubRisky      Action = "stub_risky"
	ActionStubFunctions  Action = "stub_functions"
	ActionCheckCompat    Action = "check_compat"
	ActionNone           Action = "none"
)

// Risk mirrors the five-tier risk vocabulary used for reporting, distinct
// from per-function nid.Risk since it grades a whole library.
type Risk string

const (
	RiskNone     Risk = "NONE"
	RiskLow      Risk = "LOW"
	RiskMedium   Risk = "MEDIUM"
	RiskHigh     Risk = "HIGH"
	RiskCritical Risk = "CRITICAL"
)

// scoreFor maps a risk tier to the numeric compatibility score the report
// displays, matching the fixed score set the original tool uses.
var scoreFor = map[Risk]int{
	RiskNone:     100,
	RiskLow:      90,
	RiskMedium:   70,
	RiskHigh:     40,
	RiskCritical: 15,
}

// LibraryResult is the compatibility verdict for a single required
// library.
type LibraryResult struct {
	Lib             string
	Category        nid.Category
	HasFakelib      bool
	NeedsFakelib    bool
	CriticalMissing int
	MissingForLib   int
	Gap             int
	GapSeverity     string
	IsSystem        bool
	Risk            Risk
	Score           int
	Action          Action
	Detail          string
}

// Recommendation is a flattened, report-friendly action line.
type Recommendation struct {
	Lib    string
	Action Action
	Detail string
}

// Result is the full compatibility verdict for one binary.
type Result struct {
	FWCurrent        string
	FWTarget         string
	FWGap            int
	FWGapLevel       string
	LibResults       []LibraryResult
	Recommendations  []Recommendation
	AlsoRecommend    []string
	CompatScore      int
	RiskLevel        Risk
	MissingSymbols   []string
}

// riskOrder ranks risk tiers for max-of-all aggregation.
var riskOrder = map[Risk]int{
	RiskNone: 0, RiskLow: 1, RiskMedium: 2, RiskHigh: 3, RiskCritical: 4,
}

func maxRisk(a, b Risk) Risk {
	if riskOrder[b] > riskOrder[a] {
		return b
	}
	return a
}

// libBaseName strips a ".sprx"/".prx" suffix and any path
// component, matching the bare library names used in NeedsFakelib checks
// and in availableFakelibs.
func libBaseName(lib string) string {
	lib = strings.TrimSuffix(lib, ".sprx")
	lib = strings.TrimSuffix(lib, ".prx")
	if idx := strings.LastIndexByte(lib, '/'); idx >= 0 {
		lib = lib[idx+1:]
	}
	return lib
}

// Analyze joins f's imported libraries against db, scoring each by the
// exact rule order the reference tool applies: has_fakelib wins outright,
// then needs_fakelib-with-large-gap, then needs_fakelib alone, then
// critical-missing-functions, then any-missing-functions, then a
// huge-gap-on-a-known-category flag, else a clean bill of health.
func Analyze(f *elfraw.File, db *nid.DB, fwCurrent, fwTarget string, availableFakelibs map[string]bool) (Result, error) {
	res := Result{
		FWCurrent:  fwCurrent,
		FWTarget:   fwTarget,
		FWGap:      nid.Gap(fwCurrent, fwTarget),
		RiskLevel:  RiskNone,
		CompatScore: 100,
	}
	res.FWGapLevel = nid.GapSeverity(res.FWGap)

	syms, err := f.ImportedSymbols()
	if err != nil {
		return res, err
	}

	libFuncs := make(map[string][]string)
	for _, s := range syms {
		parsed := elfraw.ParseImportName(s.Name)
		lib := parsed.Lib
		if lib == "" {
			continue
		}
		name, ok := db.ResolveNID(parsed.NID)
		if !ok {
			res.MissingSymbols = append(res.MissingSymbols, s.Name)
			continue
		}
		libFuncs[lib] = append(libFuncs[lib], name)
	}

	var scoreSum, scoreCount int
	for lib, funcs := range libFuncs {
		lr := analyzeLib(lib, funcs, db, fwTarget, res.FWGap, availableFakelibs)
		res.LibResults = append(res.LibResults, lr)
		res.RiskLevel = maxRisk(res.RiskLevel, lr.Risk)
		scoreSum += lr.Score
		scoreCount++

		if lr.Action != ActionNone {
			res.Recommendations = append(res.Recommendations, Recommendation{
				Lib: lr.Lib, Action: lr.Action, Detail: lr.Detail,
			})
		}
	}

	if scoreCount > 0 {
		res.CompatScore = scoreSum / scoreCount
	}

	res.AlsoRecommend = alsoRecommend(libFuncs, availableFakelibs)

	return res, nil
}

// catUnknown marks a library whose category couldn't be determined from
// the knowledge base or from name-pattern guessing, matching the
// "unknown" sentinel the reference tool keys its category guard on.
// It's distinct from nid.CatMisc, which is a real (guessed) bucket.
const catUnknown nid.Category = "unknown"

func analyzeLib(lib string, funcs []string, db *nid.DB, fwTarget string, fwGap int, availableFakelibs map[string]bool) LibraryResult {
	base := libBaseName(lib)
	lr := LibraryResult{
		Lib:         lib,
		Category:    libCategory(db, lib, base),
		Gap:         fwGap,
		GapSeverity: nid.GapSeverity(fwGap),
		IsSystem:    nid.IsSystemProvided(lib) || nid.IsSystemProvided(base+".sprx"),
	}

	lr.HasFakelib = availableFakelibs[base]
	lr.NeedsFakelib = nid.NeedsFakelib(lib)

	missing := db.GetMissingForFW(funcs, fwTarget)
	for _, m := range missing {
		if m.Risk == nid.RiskCritical {
			lr.CriticalMissing++
		}
	}
	lr.MissingForLib = len(missing)

	switch {
	case lr.HasFakelib:
		lr.Risk = RiskLow
		lr.Action = ActionUseFakelib
		lr.Detail = "fakelib available for " + base + ", install it"

	case lr.NeedsFakelib && fwGap >= 2:
		lr.Risk = RiskCritical
		lr.Action = ActionFakelibNeeded
		lr.Detail = base + " changes ABI too fast to stub across a " + lr.GapSeverity + " firmware gap; fakelib required but none found"

	case lr.NeedsFakelib:
		lr.Risk = RiskHigh
		lr.Action = ActionFakelibNeeded
		lr.Detail = base + " normally needs a fakelib substitute; none found for this firmware"

	case lr.CriticalMissing > 0:
		lr.Risk = RiskHigh
		lr.Action = ActionStubRisky
		lr.Detail = "missing critical (load-bearing) functions in " + base + "; stubbing them risks a crash"

	case lr.MissingForLib > 0:
		lr.Risk = RiskMedium
		lr.Action = ActionStubFunctions
		lr.Detail = "missing functions in " + base + " can likely be stubbed"

	case fwGap >= 4 && !lr.IsSystem && lr.Category != catUnknown && lr.Category != nid.CatMisc:
		lr.Risk = RiskLow
		lr.Action = ActionCheckCompat
		lr.Detail = "large firmware gap for " + base + "; no missing functions detected, but check manually"
		lr.Score = 80
		return lr

	default:
		lr.Risk = RiskNone
		lr.Action = ActionNone
		lr.Detail = ""
	}

	lr.Score = scoreFor[lr.Risk]
	return lr
}

// libCategory resolves a library's category from the knowledge base,
// trying the name as given and its ".sprx"/".prx" variants before
// falling back to a name-pattern guess, mirroring _guess_lib_category's
// last-resort role in the reference tool.
func libCategory(db *nid.DB, lib, base string) nid.Category {
	if info, ok := db.GetLibraryInfo(lib); ok {
		return info.Category
	}
	if info, ok := db.GetLibraryInfo(base + ".sprx"); ok {
		return info.Category
	}
	if info, ok := db.GetLibraryInfo(base + ".prx"); ok {
		return info.Category
	}
	return guessLibCategory(base)
}

// guessLibCategory infers a category from name patterns when the
// library isn't in the knowledge base, matching _guess_lib_category's
// fixed pattern order.
func guessLibCategory(base string) nid.Category {
	name := strings.ToLower(base)
	switch {
	case strings.Contains(name, "agc"), strings.Contains(name, "gnm"), strings.Contains(name, "gpu"):
		return nid.CatGPU
	case strings.Contains(name, "videoout"), strings.Contains(name, "video"):
		return nid.CatVideo
	case strings.Contains(name, "audioout"), strings.Contains(name, "audio"):
		return nid.CatAudio
	case strings.Contains(name, "kernel"):
		return nid.CatKernel
	case strings.Contains(name, "pad"), strings.Contains(name, "mouse"):
		return nid.CatPad
	case strings.Contains(name, "net"), strings.Contains(name, "http"), strings.Contains(name, "ssl"):
		return nid.CatNetwork
	case strings.Contains(name, "nptrophy"), strings.Contains(name, "trophy"):
		return nid.CatTrophy
	case strings.Contains(name, "savedata"):
		return nid.CatSaveData
	case strings.Contains(name, "np"):
		return nid.CatNP
	case strings.Contains(name, "dialog"), strings.Contains(name, "ime"):
		return nid.CatDialog
	case strings.Contains(name, "fiber"):
		return nid.CatFiber
	case strings.Contains(name, "libc"), strings.Contains(name, "libcinternal"), strings.Contains(name, "posix"):
		return nid.CatSystem
	case strings.Contains(name, "system"), strings.Contains(name, "user"), strings.Contains(name, "sysmodule"):
		return nid.CatSystem
	default:
		return catUnknown
	}
}

// alsoRecommend lists the base names of the fakelib-needing libraries a
// binary references that already have an available fakelib; the main
// analysis gives each of these the use_fakelib action as well.
func alsoRecommend(libFuncs map[string][]string, availableFakelibs map[string]bool) []string {
	var out []string
	for lib := range libFuncs {
		base := libBaseName(lib)
		if nid.NeedsFakelib(lib) && availableFakelibs[base] {
			out = append(out, base)
		}
	}
	return out
}
