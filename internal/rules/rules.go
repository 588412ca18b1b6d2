// Package rules lets an operator override a library's compatibility
// action with a small JavaScript snippet, for the cases the built-in
// classification rules in internal/compat get wrong for a specific
// title or library. This is an escape hatch, not the primary path: most
// runs never load a script.
package rules

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/zboralski/ps5kitchen/internal/compat"
)

// Script wraps a compiled override script. The script must define a
// top-level function `override(lib, risk, score, gap, isSystem)` that
// returns either a new action string (one of the compat.Action values)
// or null/undefined to leave the built-in decision untouched.
type Script struct {
	vm  *goja.Runtime
	fn  goja.Callable
}

// Load compiles source as a rules script.
func Load(source string) (*Script, error) {
	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, fmt.Errorf("compiling rules script: %w", err)
	}
	fnVal := vm.Get("override")
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("rules script must define an override(lib, risk, score, gap, isSystem) function")
	}
	return &Script{vm: vm, fn: fn}, nil
}

// Apply runs the override function for one library result. If the
// script returns a recognized action string, it replaces res.Action (and
// is reflected into res.Detail); any other result leaves res unchanged.
func (s *Script) Apply(res compat.LibraryResult) compat.LibraryResult {
	if s == nil {
		return res
	}
	out, err := s.fn(goja.Undefined(),
		s.vm.ToValue(res.Lib),
		s.vm.ToValue(string(res.Risk)),
		s.vm.ToValue(res.Score),
		s.vm.ToValue(res.Gap),
		s.vm.ToValue(res.IsSystem),
	)
	if err != nil || out == nil || goja.IsUndefined(out) || goja.IsNull(out) {
		return res
	}
	action := compat.Action(out.String())
	switch action {
	case compat.ActionUseFakelib, compat.ActionFakelibNeeded, compat.ActionStubRisky,
		compat.ActionStubFunctions, compat.ActionCheckCompat, compat.ActionNone:
		res.Action = action
		res.Detail = "overridden by rules script"
	}
	return res
}
