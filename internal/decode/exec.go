package decode

import "github.com/oisee/sim8086/internal/cpu"

// Diff captures what a single Exec call changed, so a printer can render
// the trailing "; ax:0x0->0x1 ip:0x0->0x3" style comment without having to
// re-derive it from before/after State snapshots.
type Diff struct {
	HasReg bool
	Reg    cpu.Access
	OldReg uint16
	NewReg uint16

	OldIP uint16
	NewIP uint16

	OldFlags cpu.Flags
	NewFlags cpu.Flags
}

// Exec applies instr to s and reports what changed. IP is advanced by
// instr.Length before the mnemonic-specific effect runs, mirroring how a
// real core fetches the next instruction before acting on the current one;
// JNZ's branch then adjusts IP again on top of that.
func (instr Instruction) Exec(s *cpu.State) Diff {
	diff := Diff{OldIP: s.Reg[cpu.IP], OldFlags: s.Flags}
	s.Reg[cpu.IP] += uint16(instr.Length)

	switch instr.Mnemonic {
	case MOV:
		applyRegDiff(&diff, execMov(instr, s))
	case ADD, SUB, CMP:
		applyRegDiff(&diff, execArith(instr, s))
	case JNZ:
		execJnz(instr, s)
	}

	diff.NewIP = s.Reg[cpu.IP]
	diff.NewFlags = s.Flags
	return diff
}

func applyRegDiff(diff *Diff, reg regDiff) {
	diff.HasReg = reg.has
	diff.Reg = reg.access
	diff.OldReg = reg.old
	diff.NewReg = reg.new_
}

type regDiff struct {
	has   bool
	access cpu.Access
	old   uint16
	new_  uint16
}

func execMov(instr Instruction, s *cpu.State) regDiff {
	wide := instr.W == 1
	val := readOperand(s, instr.Source, wide)

	var reg regDiff
	if instr.Dest.Kind == OperandRegister {
		reg.has = true
		reg.access = instr.Dest.Reg
		reg.old = s.Read(instr.Dest.Reg)
	}

	writeOperand(s, instr.Dest, val, wide)

	if reg.has {
		reg.new_ = s.Read(instr.Dest.Reg)
	}
	return reg
}

func execArith(instr Instruction, s *cpu.State) regDiff {
	wide := instr.W == 1
	src := readOperand(s, instr.Source, wide)
	dst := readOperand(s, instr.Dest, wide)

	var result uint16
	switch instr.Mnemonic {
	case ADD:
		result = dst + src
	case SUB, CMP:
		result = dst - src
	}

	var reg regDiff
	if instr.Dest.Kind == OperandRegister {
		reg.has = true
		reg.access = instr.Dest.Reg
		reg.old = s.Read(instr.Dest.Reg)
	}

	// CMP computes flags from the result but never stores it.
	if instr.Mnemonic != CMP {
		writeOperand(s, instr.Dest, result, wide)
	}

	if reg.has {
		reg.new_ = s.Read(instr.Dest.Reg)
	}

	setFlags(s, result, wide)
	return reg
}

// execJnz branches only when Zero is clear. The stored offset is the raw
// byte from the instruction stream; subtracting 2 counteracts the 2 bytes
// (opcode + offset) that IP has already advanced by at this point, so the
// net effect matches assembling the listing and re-running it through nasm.
func execJnz(instr Instruction, s *cpu.State) {
	if s.Flags&cpu.FlagZero != 0 {
		return
	}
	offset := int8(instr.Dest.Imm) - 2
	s.Reg[cpu.IP] = uint16(int(s.Reg[cpu.IP]) + int(offset))
}

func setFlags(s *cpu.State, result uint16, wide bool) {
	var isZero, isSign bool
	if wide {
		isZero = result == 0
		isSign = result&0x8000 != 0
	} else {
		isZero = uint8(result) == 0
		isSign = uint8(result)&0x80 != 0
	}

	s.Flags &^= cpu.FlagZero | cpu.FlagSign
	if isZero {
		s.Flags |= cpu.FlagZero
	}
	if isSign {
		s.Flags |= cpu.FlagSign
	}
}

// effectiveAddress evaluates one of the eight r/m base expressions plus its
// displacement. Only called for r/m encodings that address memory (mod !=
// 11 and not the mod=00,rm=110 direct-address escape, which the decoder
// already folds into an immediate operand).
func effectiveAddress(s *cpu.State, base uint8, disp int16) uint16 {
	var addr int
	switch base {
	case 0b000:
		addr = int(s.Read(cpu.Access{Index: cpu.BX, Half: cpu.Full})) + int(s.Read(cpu.Access{Index: cpu.SI, Half: cpu.Full}))
	case 0b001:
		addr = int(s.Read(cpu.Access{Index: cpu.BX, Half: cpu.Full})) + int(s.Read(cpu.Access{Index: cpu.DI, Half: cpu.Full}))
	case 0b010:
		addr = int(s.Read(cpu.Access{Index: cpu.BP, Half: cpu.Full})) + int(s.Read(cpu.Access{Index: cpu.SI, Half: cpu.Full}))
	case 0b011:
		addr = int(s.Read(cpu.Access{Index: cpu.BP, Half: cpu.Full})) + int(s.Read(cpu.Access{Index: cpu.DI, Half: cpu.Full}))
	case 0b100:
		addr = int(s.Read(cpu.Access{Index: cpu.SI, Half: cpu.Full}))
	case 0b101:
		addr = int(s.Read(cpu.Access{Index: cpu.DI, Half: cpu.Full}))
	case 0b110:
		addr = int(s.Read(cpu.Access{Index: cpu.BP, Half: cpu.Full}))
	case 0b111:
		addr = int(s.Read(cpu.Access{Index: cpu.BX, Half: cpu.Full}))
	}
	addr += int(disp)
	return uint16(addr)
}

func readOperand(s *cpu.State, op Operand, wide bool) uint16 {
	switch op.Kind {
	case OperandRegister:
		return s.Read(op.Reg)
	case OperandEffectiveAddress:
		addr := effectiveAddress(s, op.Base, op.Disp)
		if wide {
			return s.ReadMem16(addr)
		}
		return uint16(s.Mem[addr])
	case OperandImmediate:
		if op.ImmKind == ImmMemoryAbsolute {
			if wide {
				return s.ReadMem16(op.Imm)
			}
			return uint16(s.Mem[op.Imm])
		}
		return op.Imm
	default:
		return 0
	}
}

func writeOperand(s *cpu.State, op Operand, value uint16, wide bool) {
	switch op.Kind {
	case OperandRegister:
		s.Write(op.Reg, value)
	case OperandEffectiveAddress:
		addr := effectiveAddress(s, op.Base, op.Disp)
		if wide {
			s.WriteMem16(addr, value)
		} else {
			s.Mem[addr] = uint8(value)
		}
	case OperandImmediate: // direct memory address, e.g. mov [1000], ax
		if wide {
			s.WriteMem16(op.Imm, value)
		} else {
			s.Mem[op.Imm] = uint8(value)
		}
	}
}
