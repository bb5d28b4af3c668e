// Package report collects conformance failures into a thread-safe table,
// checkpoints fuzzer progress to disk, and exports decoded programs as
// JSON for external tooling to diff two runs against.
package report

import (
	"encoding/gob"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/oisee/sim8086/internal/cpu"
)

// Failure records one conformance property violation found while fuzzing
// internal/decode and internal/cpu.
type Failure struct {
	Property    string
	Description string
	Program     []byte
	Seed        int64
}

// Table stores discovered failures from concurrent conform workers.
type Table struct {
	mu       sync.Mutex
	failures []Failure
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a failure into the table.
func (t *Table) Add(f Failure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, f)
}

// Failures returns a copy of all recorded failures, sorted by property
// name.
func (t *Table) Failures() []Failure {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Failure, len(t.failures))
	copy(out, t.failures)
	sort.Slice(out, func(i, j int) bool { return out[i].Property < out[j].Property })
	return out
}

// Len returns the number of recorded failures.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.failures)
}

// WriteJSON writes failures as an indented JSON array to path.
func WriteJSON(path string, failures []Failure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(failures)
}

// Checkpoint holds conform progress for resuming a long fuzz run.
type Checkpoint struct {
	Completed int
	Seed      int64
	Failures  []Failure
}

func init() {
	gob.Register(Failure{})
}

// SaveCheckpoint writes fuzzer state to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint loads fuzzer state from path.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}

// Program is the JSON-exportable form of a decoded listing: its text lines
// plus, when executed, the final register file and flags.
type Program struct {
	Lines     []string          `json:"lines"`
	Registers map[string]uint16 `json:"registers,omitempty"`
	Flags     string            `json:"flags,omitempty"`
}

// ExportListing serializes a decoded (and optionally executed) program to
// JSON at path.
func ExportListing(path string, lines []string, state *cpu.State) error {
	prog := Program{Lines: lines}
	if state != nil {
		prog.Registers = make(map[string]uint16, 9)
		for i := cpu.AX; i <= cpu.IP; i++ {
			prog.Registers[cpu.RegisterName(i)] = state.Reg[i]
		}
		prog.Flags = state.Flags.String()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(prog)
}
