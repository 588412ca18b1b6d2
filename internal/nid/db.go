package nid

import "strings"

// Classification is the outcome of classifying a function name: the
// category it likely belongs to, the risk of stubbing it, the stub mode
// to use, and where the classification came from.
type Classification struct {
	Category Category
	Risk     Risk
	Stub     StubMode
	Source   string // "db", "prefix", "suffix", or "unknown"
	Library  string // only set when Source == "db"
	MinFW    string // only set when Source == "db"
}

// DB is a firmware-versioned knowledge base of PS5 system exports. It
// resolves NIDs to names, classifies functions by risk, and reports
// which functions are missing on a given firmware.
type DB struct {
	byName  map[string]Function
	byNID   map[string]string // nid -> name
	nidToFn map[string]Function
}

// NewDB builds a DB from the curated function table.
func NewDB() *DB {
	d := &DB{
		byName:  make(map[string]Function, len(knownFunctions)),
		byNID:   make(map[string]string, len(knownFunctions)),
		nidToFn: make(map[string]Function, len(knownFunctions)),
	}
	for _, fn := range knownFunctions {
		d.byName[fn.Name] = fn
		n := Calc(fn.Name)
		d.byNID[n] = fn.Name
		d.nidToFn[n] = fn
	}
	return d
}

// ResolveNID returns the symbol name for a NID, if known.
func (d *DB) ResolveNID(nidHex string) (string, bool) {
	name, ok := d.byNID[strings.ToUpper(nidHex)]
	return name, ok
}

// ResolveNIDFull returns the full function entry for a NID, if known.
func (d *DB) ResolveNIDFull(nidHex string) (Function, bool) {
	fn, ok := d.nidToFn[strings.ToUpper(nidHex)]
	return fn, ok
}

// ClassifyFunction classifies a function name by risk and stub mode,
// falling back from the curated table to prefix heuristics, then suffix
// heuristics, then an unknown-function default.
func (d *DB) ClassifyFunction(name string) Classification {
	if fn, ok := d.byName[name]; ok {
		return Classification{
			Category: fn.Cat,
			Risk:     fn.Risk,
			Stub:     fn.Stub,
			Source:   "db",
			Library:  fn.Library,
			MinFW:    fn.MinFW,
		}
	}

	for _, r := range prefixHeuristics {
		if strings.HasPrefix(name, r.Prefix) {
			return Classification{Category: r.Cat, Risk: r.Risk, Stub: r.Stub, Source: "prefix"}
		}
	}

	for _, r := range suffixHeuristics {
		if strings.HasSuffix(name, r.Suffix) {
			return Classification{Category: CatMisc, Risk: r.Risk, Stub: r.Stub, Source: "suffix"}
		}
	}

	return Classification{Category: CatMisc, Risk: RiskMedium, Stub: StubRetZero, Source: "unknown"}
}

// IsFunctionAvailable reports whether a function is available on the
// given target firmware. Functions absent from the curated table are
// assumed available (we have no evidence otherwise).
func (d *DB) IsFunctionAvailable(name, targetFW string) bool {
	fn, ok := d.byName[name]
	if !ok {
		return true
	}
	return Compare(targetFW, fn.MinFW) >= 0
}

// GetFunctionMinFW returns the minimum firmware a known function
// requires.
func (d *DB) GetFunctionMinFW(name string) (string, bool) {
	fn, ok := d.byName[name]
	if !ok {
		return "", false
	}
	return fn.MinFW, true
}

// MissingFunction describes a function absent on a target firmware.
type MissingFunction struct {
	Name       string
	MinFW      string
	Risk       Risk
	Stub       StubMode
	Category   Category
	Library    string
}

// GetMissingForFW filters funcNames down to those unavailable on
// targetFW, with full classification detail for each.
func (d *DB) GetMissingForFW(funcNames []string, targetFW string) []MissingFunction {
	var missing []MissingFunction
	for _, name := range funcNames {
		fn, ok := d.byName[name]
		if !ok {
			continue
		}
		if Compare(targetFW, fn.MinFW) >= 0 {
			continue
		}
		missing = append(missing, MissingFunction{
			Name:     name,
			MinFW:    fn.MinFW,
			Risk:     fn.Risk,
			Stub:     fn.Stub,
			Category: fn.Cat,
			Library:  fn.Library,
		})
	}
	return missing
}

// GetLibraryInfo returns metadata about a known system library.
func (d *DB) GetLibraryInfo(libName string) (LibraryInfo, bool) {
	info, ok := knownLibraries[libName]
	return info, ok
}

// NeedsFakelib reports whether a library requires fakelib substitution
// rather than per-symbol stubbing. Matches on prefix before ".sprx" so
// both "libSceAgc" and "libSceAgc.sprx" match.
func NeedsFakelib(libName string) bool {
	base := strings.TrimSuffix(libName, ".sprx")
	return needsFakelibLibraries[base]
}

// IsSystemProvided reports whether a library ships with every retail
// firmware image.
func IsSystemProvided(libName string) bool {
	return systemProvidedLibraries[libName]
}

// GetKnownFunctionCount returns the number of curated function entries.
func (d *DB) GetKnownFunctionCount() int {
	return len(d.byName)
}

// GetAllKnownNames returns every curated function name.
func (d *DB) GetAllKnownNames() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	return names
}

// Stats summarizes the curated knowledge base.
type Stats struct {
	TotalFunctions int
	TotalLibraries int
	ByRisk         map[Risk]int
	ByCategory     map[Category]int
	ByLibrary      map[string]int
}

// GetStats computes summary statistics over the curated table.
func (d *DB) GetStats() Stats {
	s := Stats{
		TotalFunctions: len(d.byName),
		TotalLibraries: len(knownLibraries),
		ByRisk:         make(map[Risk]int),
		ByCategory:     make(map[Category]int),
		ByLibrary:      make(map[string]int),
	}
	for _, fn := range d.byName {
		s.ByRisk[fn.Risk]++
		s.ByCategory[fn.Cat]++
		s.ByLibrary[fn.Library]++
	}
	return s
}
