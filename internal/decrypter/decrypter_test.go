package decrypter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestFindToolExplicitPath(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool.bin")
	if err := os.WriteFile(tool, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := FindTool(tool, "/does/not/matter", "tool.bin")
	if !ok || got != tool {
		t.Fatalf("FindTool explicit path = %q, %v", got, ok)
	}
}

func TestFindToolSiblingSearch(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	selfUtilDir := filepath.Join(root, "a", "SelfUtil")
	if err := os.MkdirAll(selfUtilDir, 0o755); err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(selfUtilDir, "selfutil")
	if err := os.WriteFile(exe, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok := FindTool("", nested, "selfutil")
	if !ok {
		t.Fatal("expected to find sibling SelfUtil tool within 5 parent levels")
	}
	if got != exe {
		t.Fatalf("FindTool = %q, want %q", got, exe)
	}
}

func TestFindToolNotFound(t *testing.T) {
	dir := t.TempDir()
	_, ok := FindTool("", dir, "selfutil")
	if ok {
		t.Fatal("expected no tool found")
	}
}

func TestDecryptNoToolConfigured(t *testing.T) {
	s := Subprocess{}
	_, err := s.Decrypt(context.Background(), "input.self")
	if err == nil {
		t.Fatal("expected error when no tool is configured")
	}
}

func TestDecryptMissingExecutable(t *testing.T) {
	s := Subprocess{ToolPath: "/nonexistent/tool", Timeout: time.Second}
	_, err := s.Decrypt(context.Background(), "input.self")
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
}

func TestDecryptSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell script test tool")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_decrypter.sh")
	body := "#!/bin/sh\nfor i in \"$@\"; do\n  if [ \"$prev\" = \"--output\" ]; then out=\"$i\"; fi\n  prev=\"$i\"\ndone\necho plaintext > \"$out\"\nexit 0\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	s := Subprocess{ToolPath: script, Timeout: 5 * time.Second, WorkDir: dir}
	out, err := s.Decrypt(context.Background(), "game.self")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty decrypted output")
	}
}

func TestDecryptFailsOnEmptyOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell script test tool")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_decrypter.sh")
	body := "#!/bin/sh\nfor i in \"$@\"; do\n  if [ \"$prev\" = \"--output\" ]; then out=\"$i\"; fi\n  prev=\"$i\"\ndone\ntouch \"$out\"\nexit 0\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	s := Subprocess{ToolPath: script, Timeout: 5 * time.Second, WorkDir: dir}
	_, err := s.Decrypt(context.Background(), "game.self")
	if err == nil {
		t.Fatal("expected error for empty output file")
	}
}

func TestDecryptFailsOnNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell script test tool")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_decrypter.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := Subprocess{ToolPath: script, Timeout: 5 * time.Second, WorkDir: dir}
	_, err := s.Decrypt(context.Background(), "game.self")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}
