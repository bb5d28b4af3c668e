// Package loader handles the filesystem edges of the simulator: reading a
// code image in, and writing the decoded listing and memory dump back out.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oisee/sim8086/internal/cpu"
)

// MaxCodeSize is the largest code image the simulator will load, matching
// cpu.MemSize.
const MaxCodeSize = cpu.MemSize

// dumpPad is the extra padding written after the used portion of memory in
// a dump file, preserved from the reference tool's dump format so that
// dumps this simulator produces stay byte-comparable with it.
const dumpPad = 64 * 64 * 4

// ReadCode loads a flat binary code image from path.
func ReadCode(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	if len(data) > MaxCodeSize {
		return nil, fmt.Errorf("loader: %s is %d bytes, exceeds %d byte memory", path, len(data), MaxCodeSize)
	}
	return data, nil
}

// OutputName derives the decoded-listing filename from the input path: the
// base name is truncated at its second underscore (matching the
// listing_NNNN_description naming of the conformance corpus) and
// "_decoded.asm" is appended. A base name with fewer than two underscores
// is used in full instead.
func OutputName(path string) string {
	base := filepath.Base(path)
	cut := len(base)
	seen := 0
	for i, r := range base {
		if r != '_' {
			continue
		}
		seen++
		if seen == 2 {
			cut = i
			break
		}
	}
	return base[:cut] + "_decoded.asm"
}

// WriteListing writes the "bits 16" header followed by one line per
// instruction to path.
func WriteListing(path string, lines []string) error {
	var b strings.Builder
	b.WriteString("bits 16\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// DumpMemory writes the post-execution memory image to path: the used
// portion of mem plus a fixed trailing pad, clamped to mem's length.
func DumpMemory(path string, mem []byte, used int) error {
	n := used + dumpPad
	if n > len(mem) {
		n = len(mem)
	}
	return os.WriteFile(path, mem[:n], 0o644)
}
