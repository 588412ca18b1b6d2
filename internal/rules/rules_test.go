package rules

import (
	"testing"

	"github.com/zboralski/ps5kitchen/internal/compat"
)

func TestLoadRejectsScriptWithoutOverride(t *testing.T) {
	_, err := Load(`function notOverride() { return "none" }`)
	if err == nil {
		t.Fatal("expected error for script missing override()")
	}
}

func TestApplyOverridesAction(t *testing.T) {
	s, err := Load(`
		function override(lib, risk, score, gap, isSystem) {
			if (lib === "libSceSpecialCase") { return "check_compat"; }
			return null;
		}
	`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	res := compat.LibraryResult{Lib: "libSceSpecialCase", Risk: compat.RiskNone, Action: compat.ActionNone}
	out := s.Apply(res)
	if out.Action != compat.ActionCheckCompat {
		t.Fatalf("Action = %q, want check_compat", out.Action)
	}
}

func TestApplyLeavesUnmatchedUnchanged(t *testing.T) {
	s, err := Load(`function override(lib, risk, score, gap, isSystem) { return null; }`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	res := compat.LibraryResult{Lib: "libSceOther", Action: compat.ActionStubFunctions}
	out := s.Apply(res)
	if out.Action != compat.ActionStubFunctions {
		t.Fatalf("Action changed unexpectedly: %q", out.Action)
	}
}

func TestApplyNilScriptIsNoop(t *testing.T) {
	var s *Script
	res := compat.LibraryResult{Lib: "libSceFoo", Action: compat.ActionNone}
	out := s.Apply(res)
	if out.Action != compat.ActionNone {
		t.Fatal("expected nil script to leave result unchanged")
	}
}
