package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zboralski/ps5kitchen/internal/nid"
)

func minimalELF(payload []byte) []byte {
	const ehdrSize = 0x40
	const phdrSize = 0x38
	phoff := uint64(ehdrSize)
	segOff := phoff + phdrSize

	buf := make([]byte, segOff+uint64(len(payload)))
	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 2
	buf[5] = 1
	le := func(off int, v uint64, n int) {
		for i := 0; i < n; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	le(0x10, 2, 2)
	le(0x12, 0x3E, 2)
	le(0x14, 1, 4)
	le(0x18, 0x1000, 8)
	le(0x20, phoff, 8)
	le(0x28, 0, 8)
	le(0x34, ehdrSize, 2)
	le(0x36, phdrSize, 2)
	le(0x38, 1, 2)
	le(0x3A, 0, 2)
	le(0x3C, 0, 2)
	le(0x3E, 0, 2)

	p := int(phoff)
	le(p+0, 0x1, 4)
	le(p+4, 0x5, 4)
	le(p+8, segOff, 8)
	le(p+16, 0x1000, 8)
	le(p+24, 0x1000, 8)
	le(p+32, uint64(len(payload)), 8)
	le(p+40, uint64(len(payload)), 8)
	le(p+48, 0x1000, 8)

	copy(buf[segOff:], payload)
	return buf
}

func TestCollectFilesMatchesTargetExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.sprx", "b.prx", "c.bin", "skip.txt", "skip.elf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := CollectFiles(dir)
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("CollectFiles found %d files, want 3: %v", len(files), files)
	}
}

func TestInstallFakelibsCopiesNumberedFolders(t *testing.T) {
	root := t.TempDir()
	gameDir := filepath.Join(root, "game")
	fw6 := filepath.Join(root, "6")
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(fw6, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fw6, "libSceAgc.sprx"), []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fw6, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(root, "fakelib")
	installed, err := InstallFakelibs(gameDir, dest)
	if err != nil {
		t.Fatalf("InstallFakelibs: %v", err)
	}
	if len(installed) != 1 || installed[0] != "libSceAgc.sprx" {
		t.Fatalf("unexpected installed set: %v", installed)
	}
	if _, err := os.Stat(filepath.Join(dest, "libSceAgc.sprx")); err != nil {
		t.Fatalf("expected fakelib copied to dest: %v", err)
	}
}

func TestRunProcessesPlainELFWithNoImports(t *testing.T) {
	dir := t.TempDir()
	elfPath := filepath.Join(dir, "eboot.bin")
	if err := os.WriteFile(elfPath, minimalELF([]byte{0x90, 0x90, 0x90, 0x90}), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(Options{
		InputDir:      dir,
		FWCurrent:     "10.01",
		FWTarget:      "6.00",
		KnowledgeBase: nid.NewDB(),
		Concurrency:   2,
	})

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Files) != 1 {
		t.Fatalf("expected 1 file report, got %d", len(rep.Files))
	}
	if len(rep.Files[0].Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Files[0].Errors)
	}
	if rep.Files[0].Risk != "NONE" {
		t.Fatalf("expected NONE risk for import-free binary, got %q", rep.Files[0].Risk)
	}
}

func TestRunHonorsOutputDirLeavingInputUntouched(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	sub := filepath.Join(dir, "sce_sys")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	elfPath := filepath.Join(sub, "eboot.bin")
	original := minimalELF([]byte{0x90, 0x90, 0x90, 0x90})
	if err := os.WriteFile(elfPath, original, 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(Options{
		InputDir:      dir,
		OutputDir:     outDir,
		FWCurrent:     "10.01",
		FWTarget:      "6.00",
		KnowledgeBase: nid.NewDB(),
	})

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Files) != 1 {
		t.Fatalf("expected 1 file report, got %d", len(rep.Files))
	}

	wantOut := filepath.Join(outDir, "sce_sys", "eboot.bin")
	if _, err := os.Stat(wantOut); err != nil {
		t.Fatalf("expected patched file under output dir at %s: %v", wantOut, err)
	}

	stillOriginal, err := os.ReadFile(elfPath)
	if err != nil {
		t.Fatalf("reading original input: %v", err)
	}
	if !bytes.Equal(stillOriginal, original) {
		t.Fatalf("input file was modified in place despite OutputDir being set")
	}
}

func TestRunSkipsNonSelfPassthroughWithoutDecrypter(t *testing.T) {
	dir := t.TempDir()
	elfPath := filepath.Join(dir, "module.prx")
	if err := os.WriteFile(elfPath, minimalELF([]byte{0x90}), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(Options{
		InputDir:      dir,
		FWCurrent:     "10.01",
		FWTarget:      "6.00",
		KnowledgeBase: nid.NewDB(),
	})

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Files) != 1 || len(rep.Files[0].Errors) != 0 {
		t.Fatalf("expected clean passthrough run, got %+v", rep.Files)
	}
}
