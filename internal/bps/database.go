package bps

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// PatchEntry is one row of a patch database: the BPS file to apply when
// backporting lib from fwFrom to fwTo.
type PatchEntry struct {
	FWFrom       string `json:"fw_from"`
	FWTo         string `json:"fw_to"`
	Lib          string `json:"lib"`
	Patch        string `json:"patch"`
	SHA256Source string `json:"sha256_source,omitempty"`
	SHA256Target string `json:"sha256_target,omitempty"`
}

type patchDatabaseFile struct {
	Patches []PatchEntry `json:"patches"`
}

// Database indexes a JSON catalog of BPS patches keyed by firmware pair
// and library name.
type Database struct {
	baseDir string
	entries []PatchEntry
}

// LoadDatabase reads a patch database JSON file. A missing file yields
// an empty, valid Database rather than an error.
func LoadDatabase(dbPath string) (*Database, error) {
	d := &Database{baseDir: filepath.Dir(dbPath)}
	data, err := os.ReadFile(dbPath)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, err
	}
	var f patchDatabaseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	d.entries = f.Patches
	return d, nil
}

// FindPatch returns the path to the BPS file covering (fwFrom, fwTo,
// libName), joined onto the database file's directory, or "" if no
// entry matches. Library name
// comparison is case-insensitive.
func (d *Database) FindPatch(fwFrom, fwTo, libName string) string {
	for _, e := range d.entries {
		if e.FWFrom == fwFrom && e.FWTo == fwTo && strings.EqualFold(e.Lib, libName) {
			return filepath.Join(d.baseDir, e.Patch)
		}
	}
	return ""
}

// ListPatches returns every catalog entry.
func (d *Database) ListPatches() []PatchEntry {
	return d.entries
}

// AutoApplyResult summarizes an ApplyAuto pass over a directory.
type AutoApplyResult struct {
	Applied []string
	Skipped []string
	Errors  []AutoApplyError
}

// AutoApplyError pairs a file name with the error applying its patch.
type AutoApplyError struct {
	File string
	Err  error
}

// ApplyAuto walks sourceDir for .sprx/.prx files, applies whichever BPS
// patch the database has for each at (fwFrom, fwTo), and replaces the
// original file with the patched output in place.
func (d *Database) ApplyAuto(sourceDir, fwFrom, fwTo string, progress func(string)) (AutoApplyResult, error) {
	var res AutoApplyResult

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		lower := strings.ToLower(info.Name())
		if !strings.HasSuffix(lower, ".sprx") && !strings.HasSuffix(lower, ".prx") {
			return nil
		}

		patchPath := d.FindPatch(fwFrom, fwTo, info.Name())
		if patchPath == "" {
			res.Skipped = append(res.Skipped, info.Name())
			return nil
		}

		if progress != nil {
			progress("patching " + info.Name())
		}

		source, err := os.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, AutoApplyError{File: info.Name(), Err: err})
			return nil
		}
		patch, err := os.ReadFile(patchPath)
		if err != nil {
			res.Errors = append(res.Errors, AutoApplyError{File: info.Name(), Err: err})
			return nil
		}
		out, err := Apply(source, patch, true)
		if err != nil {
			res.Errors = append(res.Errors, AutoApplyError{File: info.Name(), Err: err})
			return nil
		}
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			res.Errors = append(res.Errors, AutoApplyError{File: info.Name(), Err: err})
			return nil
		}
		res.Applied = append(res.Applied, info.Name())
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}
