// Package param rewrites the SDK-version words embedded in a binary's
// process/module parameter segment, and the out-of-band param.json /
// param.sfo metadata files that ship alongside a game image, so a
// backported title reports itself as built for the target firmware.
package param

import (
	"encoding/binary"
	"fmt"
	"regexp"

	"github.com/zboralski/ps5kitchen/internal/elfraw"
)

// sdkWords holds the PS4 (param +0x10) and PS5 (param +0x14) SDK version
// words a firmware string maps to, matching the values every retail SDK
// release stamps into a binary's parameter segment.
type sdkWords struct {
	PS4 uint32
	PS5 uint32
}

// fwSDKMap is the fixed firmware -> SDK-word table, one entry per
// retail firmware release this tool knows about.
var fwSDKMap = map[string]sdkWords{
	"1.00":  {0x01000001, 0x05508001},
	"1.05":  {0x01050001, 0x05508001},
	"2.00":  {0x02000001, 0x06508001},
	"2.20":  {0x02200001, 0x06508001},
	"2.50":  {0x02500001, 0x06508001},
	"3.00":  {0x03000001, 0x07508001},
	"3.20":  {0x03200001, 0x07508001},
	"4.00":  {0x04000001, 0x08508001},
	"4.50":  {0x04500001, 0x08508001},
	"5.00":  {0x05000001, 0x08508001},
	"5.02":  {0x05020001, 0x08508001},
	"5.10":  {0x05100001, 0x08508001},
	"5.25":  {0x05250001, 0x08508001},
	"6.00":  {0x06000001, 0x09508001},
	"6.02":  {0x06020001, 0x09508001},
	"6.50":  {0x06500001, 0x09508001},
	"7.00":  {0x07000001, 0x09508001},
	"7.01":  {0x07010001, 0x09508001},
	"7.55":  {0x07550001, 0x09508001},
	"7.61":  {0x07610001, 0x09508001},
	"8.00":  {0x08000001, 0x09508001},
	"8.52":  {0x08520001, 0x09508001},
	"9.00":  {0x09000001, 0x09508001},
	"9.60":  {0x09600001, 0x09508001},
	"10.00": {0x0A000040, 0x12090001},
	"10.01": {0x0A010040, 0x12090001},
	"10.50": {0x0A500040, 0x12090001},
	"11.00": {0x0B000040, 0x12090001},
}

// SDKWordsFor returns the SDK version words a target firmware stamps,
// if known.
func SDKWordsFor(fwTarget string) (ps5, ps4 uint32, ok bool) {
	w, ok := fwSDKMap[fwTarget]
	return w.PS5, w.PS4, ok
}

// PatchResult describes what PatchSDKVersion changed, if anything.
type PatchResult struct {
	Patched bool
	Detail  string
}

// PatchSDKVersion rewrites the SDK version words in data's parameter
// segment to the words fwTarget's firmware stamps. Idempotent: a word
// already at zero (never set) or already at the target value is left
// untouched, matching the reference tool's refusal to "invent" a version
// where the compiler left a hole.
func PatchSDKVersion(data []byte, fwTarget string) (PatchResult, error) {
	ps5Target, ps4Target, ok := SDKWordsFor(fwTarget)
	if !ok {
		return PatchResult{}, fmt.Errorf("unknown target firmware %q", fwTarget)
	}

	f, err := elfraw.Parse(data)
	if err != nil {
		return PatchResult{}, err
	}
	if f.Param == nil || !f.Param.Valid() {
		return PatchResult{Patched: false, Detail: "no SCE param segment found"}, nil
	}

	ps4Off := f.Param.PS4SDKOff
	ps5Off := f.Param.PS5SDKOff
	if ps5Off+4 > uint64(len(data)) || ps4Off+4 > uint64(len(data)) {
		return PatchResult{Patched: false, Detail: "param SDK offsets out of bounds"}, nil
	}

	ps4Cur := binary.LittleEndian.Uint32(data[ps4Off:])
	ps5Cur := binary.LittleEndian.Uint32(data[ps5Off:])

	var detail string
	patched := false

	if ps5Cur != ps5Target && ps5Cur != 0 {
		detail = fmt.Sprintf("PROCPARAM: PS5 %s -> %s", formatSDKVersion(ps5Cur), formatSDKVersion(ps5Target))
		binary.LittleEndian.PutUint32(data[ps5Off:], ps5Target)
		patched = true
	}
	if ps4Cur != ps4Target && ps4Cur != 0 {
		binary.LittleEndian.PutUint32(data[ps4Off:], ps4Target)
		patched = true
	}

	if !patched {
		return PatchResult{Patched: false, Detail: "already at target version"}, nil
	}
	if detail == "" {
		detail = "SDK version words updated"
	}
	return PatchResult{Patched: true, Detail: detail}, nil
}

func formatSDKVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", (v>>24)&0xFF, (v>>16)&0xFF, (v>>8)&0xFF, v&0xFF)
}

// paramHexFor builds the "0xMMNN000000000000" string param.json expects
// for requiredSystemSoftwareVersion / sdkVersion fields.
func paramHexFor(fwTarget string) (string, error) {
	var major, minor int
	n, err := fmt.Sscanf(fwTarget, "%d.%d", &major, &minor)
	if err != nil || n < 1 {
		return "", fmt.Errorf("malformed firmware string %q", fwTarget)
	}
	return fmt.Sprintf("0x%02X%02X000000000000", major, minor), nil
}

var (
	reqSysVerRe = regexp.MustCompile(`("requiredSystemSoftwareVersion"\s*:\s*)"0x[0-9A-Fa-f]+"`)
	sdkVerRe    = regexp.MustCompile(`("sdkVersion"\s*:\s*)"0x[0-9A-Fa-f]+"`)
)

// PatchParamJSON rewrites requiredSystemSoftwareVersion and sdkVersion in
// a param.json document's raw bytes to fwTarget's hex representation.
// Returns the rewritten content and whether anything changed.
func PatchParamJSON(content []byte, fwTarget string) ([]byte, bool, error) {
	hex, err := paramHexFor(fwTarget)
	if err != nil {
		return content, false, err
	}
	repl := []byte(`${1}"` + hex + `"`)
	out := reqSysVerRe.ReplaceAll(content, repl)
	out = sdkVerRe.ReplaceAll(out, repl)
	changed := string(out) != string(content)
	return out, changed, nil
}

// PatchParamSFO rewrites param.sfo's SYSTEM_VER field. Per the open
// question this format leaves unresolved (no authoritative key->value
// offset table), this scans the back half of the file for a uint32
// matching the "major.minor.0.0" shape (low 16 bits zero, major byte
// <= 0x10) and overwrites the first candidate found.
func PatchParamSFO(data []byte, fwTarget string) ([]byte, bool, error) {
	var major, minor int
	n, err := fmt.Sscanf(fwTarget, "%d.%d", &major, &minor)
	if err != nil || n < 1 {
		return data, false, fmt.Errorf("malformed firmware string %q", fwTarget)
	}
	target := (uint32(major) << 24) | (uint32(minor) << 16)

	out := append([]byte(nil), data...)
	half := len(out) / 2
	for i := half; i+4 <= len(out); i++ {
		val := binary.LittleEndian.Uint32(out[i:])
		if val == 0 {
			continue
		}
		if val&0x0000FFFF != 0 {
			continue
		}
		if (val>>24)&0xFF > 0x10 {
			continue
		}
		if val == target {
			return data, false, nil
		}
		binary.LittleEndian.PutUint32(out[i:], target)
		return out, true, nil
	}
	return data, false, nil
}
