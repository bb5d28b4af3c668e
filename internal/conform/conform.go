// Package conform fuzzes and verifies the decoder/executor against a set
// of documented conformance properties: a fixed seed corpus runs every
// time, and randomly generated programs run iteration-bounded and
// best-effort. Workers share no mutable state beyond the result table.
package conform

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/oisee/sim8086/internal/cpu"
	"github.com/oisee/sim8086/internal/decode"
	"github.com/oisee/sim8086/internal/loader"
	"github.com/oisee/sim8086/internal/report"
	"github.com/oisee/sim8086/internal/sim"
)

// Config controls one conformance run.
type Config struct {
	Iterations int   // randomly generated programs to check, beyond the seed corpus
	NumWorkers int   // 0 = runtime.NumCPU()
	Seed       int64 // seeds the random program generator
}

type task struct {
	name string
	code []byte
}

// Run checks every seed program (always) plus Config.Iterations randomly
// generated ones, and returns the table of any property violations found.
func Run(cfg Config) *report.Table {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}

	table := report.NewTable()

	tasks := make(chan task, len(seedPrograms)+cfg.Iterations)
	for _, s := range seedPrograms {
		tasks <- task{name: s.name, code: s.code}
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0xDEADBEEF))
	for i := 0; i < cfg.Iterations; i++ {
		tasks <- task{name: fmt.Sprintf("fuzz-%d", i), code: randomProgram(rng)}
	}
	close(tasks)

	var wg sync.WaitGroup
	for w := 0; w < cfg.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				checkTask(t, table)
			}
		}()
	}
	wg.Wait()

	return table
}

func checkTask(t task, table *report.Table) {
	if msg := checkDecodeCoverage(t.code); msg != "" {
		table.Add(report.Failure{Property: "P1/P3", Description: t.name + ": " + msg, Program: t.code})
		return
	}

	listing, err := sim.Run(t.code, true)
	if err != nil {
		table.Add(report.Failure{Property: "exec", Description: t.name + ": " + err.Error(), Program: t.code})
		return
	}

	if int(listing.State.Reg[cpu.IP]) != len(t.code) {
		table.Add(report.Failure{
			Property:    "P1",
			Description: fmt.Sprintf("%s: final ip %d != code length %d", t.name, listing.State.Reg[cpu.IP], len(t.code)),
			Program:     t.code,
		})
	}

	for _, seed := range seedPrograms {
		if seed.name != t.name {
			continue
		}
		if msg := seed.expect(listing.State); msg != "" {
			table.Add(report.Failure{Property: "seed", Description: t.name + ": " + msg, Program: t.code})
		}
	}

	checkRoundTrip(t, table)
}

// checkDecodeCoverage re-decodes code in a single linear pass (no
// execution, no branching) and verifies properties 1 and 3: every
// instruction's reported Length matches the cursor's actual consumption,
// and the lengths sum to exactly len(code).
func checkDecodeCoverage(code []byte) string {
	pos := 0
	for pos < len(code) {
		instr, err := decode.Decode(code, pos)
		if err != nil {
			return err.Error()
		}
		if instr.Length < 1 || instr.Length > 6 {
			return fmt.Sprintf("instruction at %d has out-of-range length %d", pos, instr.Length)
		}
		pos += instr.Length
	}
	if pos != len(code) {
		return fmt.Sprintf("decode pass ended at %d, want %d", pos, len(code))
	}
	return ""
}

// checkRoundTrip exercises property 2 when a nasm binary is available on
// PATH; otherwise it's skipped rather than failed, since the property
// depends on tooling this environment may not have.
func checkRoundTrip(t task, table *report.Table) {
	nasmPath, err := exec.LookPath("nasm")
	if err != nil {
		return
	}

	listing, err := sim.Run(t.code, false)
	if err != nil {
		return
	}

	dir, err := os.MkdirTemp("", "sim8086-conform-")
	if err != nil {
		return
	}
	defer os.RemoveAll(dir)

	asmPath := filepath.Join(dir, "listing.asm")
	binPath := filepath.Join(dir, "listing.bin")
	if err := loader.WriteListing(asmPath, listing.Lines); err != nil {
		return
	}

	if err := exec.Command(nasmPath, "-f", "bin", "-o", binPath, asmPath).Run(); err != nil {
		table.Add(report.Failure{Property: "P2", Description: fmt.Sprintf("%s: nasm failed: %v", t.name, err), Program: t.code})
		return
	}

	reassembled, err := os.ReadFile(binPath)
	if err != nil {
		return
	}
	if !bytes.Equal(reassembled, t.code) {
		table.Add(report.Failure{Property: "P2", Description: t.name + ": round-trip mismatch", Program: t.code})
	}
}
