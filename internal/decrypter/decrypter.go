// Package decrypter implements the default external-tool-backed
// selfcontainer.Decrypter: it locates and invokes the SELF-decryption
// subprocess the rest of the pipeline delegates to for anything beyond
// header inspection.
package decrypter

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/zboralski/ps5kitchen/internal/backporterr"
)

const stageName = "decrypter"

// defaultTimeout bounds how long the external decrypter subprocess may
// run before the pipeline gives up on this file and moves on.
const defaultTimeout = 120 * time.Second

// Subprocess is a selfcontainer.Decrypter backed by an external
// SELF-decryption tool, invoked as `tool --verbose --overwrite --input
// <path> --output <path>`.
type Subprocess struct {
	ToolPath string
	Timeout  time.Duration
	WorkDir  string // directory temp output files are written under
}

// FindTool locates the decrypter executable: an explicit path, if it
// exists, takes priority; otherwise it walks up to 5 parent directories
// from searchFrom looking for a sibling SelfUtil/ directory.
func FindTool(explicitPath, searchFrom, exeName string) (string, bool) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err == nil {
			return explicitPath, true
		}
	}

	base := searchFrom
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(base, "SelfUtil", exeName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(base)
		if parent == base {
			break
		}
		base = parent
	}
	return "", false
}

// Decrypt runs the external tool against inputPath and returns the path
// to the plain-ELF output it produced. Success requires exit code 0 and
// a non-empty output file; both conditions are checked explicitly since
// a decrypter that exits 0 after silently failing is a known failure
// mode of these tools.
func (s Subprocess) Decrypt(ctx context.Context, inputPath string) (string, error) {
	if s.ToolPath == "" {
		return "", backporterr.New(backporterr.KindExternalToolFailure, stageName, "no decrypter tool configured")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outDir := s.WorkDir
	if outDir == "" {
		outDir = os.TempDir()
	}
	outPath := filepath.Join(outDir, filepath.Base(inputPath)+".plain.elf")

	cmd := exec.CommandContext(ctx, s.ToolPath,
		"--verbose", "--overwrite", "--input", inputPath, "--output", outPath)

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", backporterr.Wrap(backporterr.KindExternalToolFailure, stageName, "decrypter timed out", ctx.Err())
		}
		return "", backporterr.Wrap(backporterr.KindExternalToolFailure, stageName, "decrypter exited non-zero", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return "", backporterr.Wrap(backporterr.KindExternalToolFailure, stageName, "decrypter produced no output file", err)
	}
	if info.Size() == 0 {
		return "", backporterr.New(backporterr.KindExternalToolFailure, stageName, "decrypter produced an empty output file")
	}

	return outPath, nil
}
