package report

import (
	"encoding/json"
	"time"
)

// FileReport is the per-file structured result described in §4.8: one
// record per input file, carrying the classification outcome and the
// counts each mutating stage produced.
type FileReport struct {
	Path        string `json:"path"`
	FWCurrent   string `json:"fw_current"`
	FWTarget    string `json:"fw_target"`
	Score       int    `json:"score"`
	Risk        string `json:"risk"`
	AlsoRecommend []string `json:"also_recommend,omitempty"`

	StubsApplied  int `json:"stubs_applied"`
	StubsSkipped  int `json:"stubs_skipped"`
	SkippedCritical int `json:"skipped_critical"`

	BPSApplied bool   `json:"bps_applied"`
	BPSPatch   string `json:"bps_patch,omitempty"`

	SDKPatched   bool `json:"sdk_patched"`
	ParamPatched bool `json:"param_patched"`
	Resigned     bool `json:"resigned"`

	Errors []string `json:"errors,omitempty"`
	Trail  Trail    `json:"-"`
}

// StepCounts tallies how many files passed through each stage and how many
// of those hit an error, for the top-level report's per_step_counts field.
type StepCounts struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Report is the top-level aggregated result returned to the external
// reporter (§6): `{run_id, started, elapsed_ns, files, per_step_counts,
// fakelibs_installed, overall_score_mean, overall_risk_max}`; each file's
// classification (score, risk) is carried on its entry in files.
type Report struct {
	RunID   string       `json:"run_id"`
	Started time.Time    `json:"started"`
	Elapsed time.Duration `json:"elapsed_ns"`

	Files []FileReport `json:"files"`

	PerStepCounts map[string]StepCounts `json:"per_step_counts"`

	FakelibsInstalled []string `json:"fakelibs_installed"`

	OverallScoreMean float64 `json:"overall_score_mean"`
	OverallRiskMax   string  `json:"overall_risk_max"`
}

var riskOrder = map[string]int{
	"NONE":     0,
	"LOW":      1,
	"MEDIUM":   2,
	"HIGH":     3,
	"CRITICAL": 4,
}

// Aggregate folds a set of per-file reports into the top-level report,
// computing the mean score and the maximum risk level observed.
func Aggregate(runID string, started time.Time, elapsed time.Duration, files []FileReport, fakelibs []string) Report {
	r := Report{
		RunID:             runID,
		Started:           started,
		Elapsed:           elapsed,
		Files:             files,
		PerStepCounts:     map[string]StepCounts{},
		FakelibsInstalled: fakelibs,
	}

	var scoreSum int
	maxRisk := "NONE"
	for _, f := range files {
		scoreSum += f.Score
		if riskOrder[f.Risk] > riskOrder[maxRisk] {
			maxRisk = f.Risk
		}
		r.recordStep("bps", f.BPSApplied, len(f.Errors) > 0)
		r.recordStep("stub", f.StubsApplied > 0 || f.StubsSkipped > 0, len(f.Errors) > 0)
		r.recordStep("param", f.ParamPatched || f.SDKPatched, len(f.Errors) > 0)
		r.recordStep("resign", f.Resigned, len(f.Errors) > 0)
	}
	if len(files) > 0 {
		r.OverallScoreMean = float64(scoreSum) / float64(len(files))
	}
	r.OverallRiskMax = maxRisk
	return r
}

func (r *Report) recordStep(name string, attempted, failed bool) {
	c := r.PerStepCounts[name]
	if attempted {
		c.Attempted++
		if failed {
			c.Failed++
		} else {
			c.Succeeded++
		}
	}
	r.PerStepCounts[name] = c
}

// MarshalJSONIndent renders the aggregated report as indented JSON for the
// optional output_report_path CLI flag.
func (r Report) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
