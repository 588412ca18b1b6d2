package nid

import "testing"

func TestCalcKnownVector(t *testing.T) {
	got := Calc("sceKernelLoadStartModule")
	want := "A4A8B1D0FBF1CA52"
	if got != want {
		t.Fatalf("Calc(sceKernelLoadStartModule) = %q, want %q", got, want)
	}
}

func TestCalcDeterministic(t *testing.T) {
	a := Calc("sceKernelMmap")
	b := Calc("sceKernelMmap")
	if a != b {
		t.Fatalf("Calc is not deterministic: %q != %q", a, b)
	}
	if Calc("sceKernelMmap") == Calc("sceKernelMunmap") {
		t.Fatal("distinct symbol names collided")
	}
}

func TestCompareTransitivity(t *testing.T) {
	if Compare("6.00", "5.00") <= 0 {
		t.Fatal("6.00 should compare greater than 5.00")
	}
	if Compare("5.00", "6.00") >= 0 {
		t.Fatal("5.00 should compare less than 6.00")
	}
	if Compare("6.00", "6.00") != 0 {
		t.Fatal("equal versions should compare equal")
	}
	if Compare("6.50", "6.50.0") != 0 {
		t.Fatal("missing patch component should zero-pad")
	}
}

func TestGapMonotonic(t *testing.T) {
	if Gap("10.00", "6.00") != 4 {
		t.Fatalf("Gap(10.00, 6.00) = %d, want 4", Gap("10.00", "6.00"))
	}
	if Gap("6.00", "10.00") != Gap("10.00", "6.00") {
		t.Fatal("Gap should be symmetric")
	}
}

func TestGapSeverityThresholds(t *testing.T) {
	cases := []struct {
		gap  int
		want string
	}{
		{0, "SMALL"},
		{1, "MODERATE"},
		{2, "LARGE"},
		{3, "LARGE"},
		{4, "HUGE"},
		{10, "HUGE"},
	}
	for _, c := range cases {
		if got := GapSeverity(c.gap); got != c.want {
			t.Fatalf("GapSeverity(%d) = %q, want %q", c.gap, got, c.want)
		}
	}
}

func TestClassifyFunctionDBHit(t *testing.T) {
	db := NewDB()
	c := db.ClassifyFunction("sceKernelLoadStartModule")
	if c.Source != "db" {
		t.Fatalf("expected db source, got %q", c.Source)
	}
	if c.Risk != RiskCritical || c.Stub != StubSkip {
		t.Fatalf("unexpected classification: %+v", c)
	}
	if c.Library != "libkernel.sprx" {
		t.Fatalf("expected library libkernel.sprx, got %q", c.Library)
	}
}

func TestClassifyFunctionPrefixFallback(t *testing.T) {
	db := NewDB()
	c := db.ClassifyFunction("sceKernelLoadCustomThing")
	if c.Source != "prefix" {
		t.Fatalf("expected prefix source, got %q", c.Source)
	}
	if c.Risk != RiskCritical || c.Stub != StubSkip {
		t.Fatalf("unexpected classification: %+v", c)
	}
}

func TestClassifyFunctionSuffixFallback(t *testing.T) {
	db := NewDB()
	c := db.ClassifyFunction("sceSomeUnknownThingInitialize")
	if c.Source != "suffix" {
		t.Fatalf("expected suffix source, got %q", c.Source)
	}
	if c.Risk != RiskLow || c.Stub != StubRetZero {
		t.Fatalf("unexpected classification: %+v", c)
	}
}

func TestClassifyFunctionUnknownDefault(t *testing.T) {
	db := NewDB()
	c := db.ClassifyFunction("totallyMadeUpSymbolXyz")
	if c.Source != "unknown" {
		t.Fatalf("expected unknown source, got %q", c.Source)
	}
	if c.Risk != RiskMedium || c.Stub != StubRetZero {
		t.Fatalf("unexpected default classification: %+v", c)
	}
}

func TestIsFunctionAvailable(t *testing.T) {
	db := NewDB()
	if !db.IsFunctionAvailable("sceAgcSubmitAsc", "4.00") {
		t.Fatal("sceAgcSubmitAsc should be available at its min fw 4.00")
	}
	if db.IsFunctionAvailable("sceAgcSubmitAsc", "3.00") {
		t.Fatal("sceAgcSubmitAsc should not be available below its min fw")
	}
	if !db.IsFunctionAvailable("totallyUnknownSymbol", "1.00") {
		t.Fatal("unknown functions should be assumed available")
	}
}

func TestGetMissingForFW(t *testing.T) {
	db := NewDB()
	names := []string{"sceAgcSubmitAsc", "sceAgcSetPredication", "sceKernelSleep"}
	missing := db.GetMissingForFW(names, "5.00")
	if len(missing) != 1 || missing[0].Name != "sceAgcSetPredication" {
		t.Fatalf("unexpected missing set: %+v", missing)
	}
}

func TestResolveNIDRoundTrip(t *testing.T) {
	db := NewDB()
	n := Calc("sceKernelSleep")
	name, ok := db.ResolveNID(n)
	if !ok || name != "sceKernelSleep" {
		t.Fatalf("ResolveNID(%q) = (%q, %v), want (sceKernelSleep, true)", n, name, ok)
	}
}

func TestNeedsFakelib(t *testing.T) {
	if !NeedsFakelib("libSceAgc.sprx") {
		t.Fatal("libSceAgc should need a fakelib")
	}
	if NeedsFakelib("libSceNet.sprx") {
		t.Fatal("libSceNet should not need a fakelib")
	}
}

func TestIsSystemProvided(t *testing.T) {
	if !IsSystemProvided("libkernel.sprx") {
		t.Fatal("libkernel.sprx should be system-provided")
	}
	if IsSystemProvided("libSceAgc.sprx") {
		t.Fatal("libSceAgc.sprx should not be treated as system-provided")
	}
}

func TestGetStats(t *testing.T) {
	db := NewDB()
	stats := db.GetStats()
	if stats.TotalFunctions != db.GetKnownFunctionCount() {
		t.Fatal("stats total should match known function count")
	}
	if stats.TotalFunctions == 0 {
		t.Fatal("expected a non-empty curated function table")
	}
	if len(stats.ByRisk) == 0 || len(stats.ByCategory) == 0 {
		t.Fatal("expected non-empty risk and category breakdowns")
	}
}
