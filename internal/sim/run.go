// Package sim drives the decode/execute loop shared by the CLI's decode
// command and the conformance harness: walk a code image instruction by
// instruction, optionally applying each one to a MachineState.
package sim

import (
	"github.com/oisee/sim8086/internal/asmtext"
	"github.com/oisee/sim8086/internal/cpu"
	"github.com/oisee/sim8086/internal/decode"
)

// Listing is the result of decoding, and optionally executing, a full code
// image: one rendered line per instruction, and the final machine state.
type Listing struct {
	Lines []string
	State *cpu.State
}

// Run decodes code from offset 0 until IP reaches the end of the image. If
// exec is true, each instruction is applied to a fresh MachineState and its
// listing line carries a diff comment; otherwise IP is advanced without
// touching registers, flags, or memory beyond the loaded code.
func Run(code []byte, exec bool) (Listing, error) {
	state := &cpu.State{}
	if err := state.Load(code); err != nil {
		return Listing{}, err
	}

	var lines []string
	for int(state.Reg[cpu.IP]) < len(code) {
		ip := int(state.Reg[cpu.IP])
		instr, err := decode.Decode(code, ip)
		if err != nil {
			return Listing{}, err
		}

		if exec {
			diff := instr.Exec(state)
			lines = append(lines, asmtext.Line(instr, &diff))
		} else {
			state.Reg[cpu.IP] = uint16(ip + instr.Length)
			lines = append(lines, asmtext.Line(instr, nil))
		}
	}

	return Listing{Lines: lines, State: state}, nil
}
