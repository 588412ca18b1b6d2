// Package report aggregates per-file pipeline outcomes into the final
// backport report: a structured event trail per file, a JSON document for
// machine consumption, and a colorized terminal summary.
package report

import "time"

// Stage identifies the pipeline stage that produced an event.
// Stored without a leading marker; the marker is added on rendering.
type Stage string

// Standard pipeline stages, in the order §5 requires them to run.
const (
	Unwrap    Stage = "unwrap"
	ElfParse  Stage = "elf-parse"
	Classify  Stage = "classify"
	BPSApply  Stage = "bps-apply"
	StubApply Stage = "stub-apply"
	StubSkip  Stage = "stub-skip"
	ParamPatch Stage = "param-patch"
	Rewrap    Stage = "rewrap"
	Resign    Stage = "resign"
)

// Stages is a collection of stages with helper methods, mirroring the
// multi-tag event pattern used elsewhere in the pipeline's diagnostics.
type Stages []Stage

// Has returns true if the collection contains the given stage.
func (s Stages) Has(stage Stage) bool {
	for _, x := range s {
		if x == stage {
			return true
		}
	}
	return false
}

// Add adds a stage if not already present.
func (s *Stages) Add(stage Stage) {
	if !s.Has(stage) {
		*s = append(*s, stage)
	}
}

// Strings returns stages as strings with a "#" prefix for display.
func (s Stages) Strings() []string {
	out := make([]string, len(s))
	for i, stage := range s {
		out[i] = "#" + string(stage)
	}
	return out
}

// Primary returns the first stage, or empty string if none.
func (s Stages) Primary() Stage {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}

// Annotations holds key-value metadata for an event.
type Annotations map[string]string

// Set adds or updates an annotation.
func (a Annotations) Set(k, v string) { a[k] = v }

// Get retrieves an annotation value.
func (a Annotations) Get(k string) string { return a[k] }

// Event records one pipeline action against one file, for both the JSON
// report and the terminal trail.
type Event struct {
	Offset      uint64      // file offset the action touched, if any
	Stages      Stages      // stages this event belongs to, first is primary
	Name        string      // symbol, library, or action name
	Detail      string      // short human-readable detail
	Annotations Annotations // structured metadata (mode, score, crc, ...)
	Timestamp   time.Time
}

// NewEvent creates an event under the given primary stage. now is the
// caller-supplied timestamp; the package never calls time.Now() itself so
// a full run can be replayed deterministically in tests.
func NewEvent(now time.Time, stage Stage, name, detail string) *Event {
	return &Event{
		Stages:      Stages{stage},
		Name:        name,
		Detail:      detail,
		Annotations: make(Annotations),
		Timestamp:   now,
	}
}

// AddStage adds a secondary stage to the event.
func (e *Event) AddStage(stage Stage) {
	e.Stages.Add(stage)
}

// Annotate sets an annotation on the event.
func (e *Event) Annotate(k, v string) {
	if e.Annotations == nil {
		e.Annotations = make(Annotations)
	}
	e.Annotations.Set(k, v)
}

// PrimaryStage returns the primary stage with a "#" prefix, for display.
func (e *Event) PrimaryStage() string {
	if len(e.Stages) > 0 {
		return "#" + string(e.Stages[0])
	}
	return ""
}

// Trail is the ordered list of events recorded for one file.
type Trail []*Event

// Append records an event, enforcing no ordering beyond append order; the
// orchestrator is responsible for calling stages in §5's required sequence.
func (t *Trail) Append(e *Event) {
	*t = append(*t, e)
}

// ByStage filters the trail to events whose primary stage matches.
func (t Trail) ByStage(stage Stage) Trail {
	var out Trail
	for _, e := range t {
		if e.Stages.Primary() == stage {
			out = append(out, e)
		}
	}
	return out
}
