package decode

import (
	"github.com/oisee/sim8086/internal/cpu"
)

// Decode parses a single instruction from code starting at offset ip. It
// returns the structured Instruction (already canonicalised so Dest is
// always the write target), whose Length field holds the number of bytes
// consumed; callers advance their own IP by Length.
func Decode(code []byte, ip int) (Instruction, error) {
	cur := NewCursor(code, ip)

	b1, err := cur.Next()
	if err != nil {
		return Instruction{}, err
	}

	fam, mnemonic, err := classify(b1, ip)
	if err != nil {
		return Instruction{}, err
	}

	var instr Instruction
	switch fam {
	case famMovRegMemToReg, famArithRegMemToReg:
		instr, err = decodeRegMemToReg(cur, b1, mnemonic)
	case famMovImmToRegMem:
		instr, err = decodeImmToRegMem(cur, b1, MOV)
	case famSharedArithImmToRegMem:
		instr, err = decodeSharedArithImmToRegMem(cur, b1)
	case famMovImmToReg:
		instr, err = decodeImmToReg(cur, b1)
	case famMovMemToAcc:
		instr, err = decodeAccMem(cur, b1, true)
	case famMovAccToMem:
		instr, err = decodeAccMem(cur, b1, false)
	case famArithImmToAcc:
		instr, err = decodeImmToAcc(cur, b1, mnemonic)
	case famJnz:
		instr, err = decodeJnz(cur, b1)
	}
	if err != nil {
		return Instruction{}, err
	}

	instr.Length = cur.Pos() - ip
	if instr.D == 0 {
		instr.Dest, instr.Source = instr.Source, instr.Dest
	}
	return instr, nil
}

// readDisplacement reads 0, 1, or 2 displacement bytes per mod/rm and
// returns it sign-extended to int16. The "direct address" escape (mod=00,
// rm=110) is signalled via directAddr so callers can fold it into an
// immediate operand instead of an EffectiveAddress.
func readDisplacement(cur *Cursor, mod, rm uint8) (disp int16, directAddr bool, err error) {
	switch {
	case mod == 0b00 && rm == 0b110:
		v, err := cur.Next16()
		if err != nil {
			return 0, false, err
		}
		return int16(v), true, nil
	case mod == 0b01:
		b, err := cur.Next()
		if err != nil {
			return 0, false, err
		}
		return int16(int8(b)), false, nil
	case mod == 0b10:
		v, err := cur.Next16()
		if err != nil {
			return 0, false, err
		}
		return int16(v), false, nil
	default:
		return 0, false, nil
	}
}

// rmOperand materialises the r/m-addressed operand for a given mod/rm,
// given the displacement already read by readDisplacement.
func rmOperand(mod, rm, w uint8, disp int16, directAddr bool) Operand {
	if directAddr {
		return Immediate(uint16(disp), 16, ImmMemoryAbsolute)
	}
	if mod == 0b11 {
		return Register(cpu.AccessFromEncoding((rm << 1) | w))
	}
	return EffectiveAddress(rm, disp)
}

// decodeRegMemToReg handles the `100010dw` (MOV) and `000000dw`/`001010dw`/
// `001110dw` (ADD/SUB/CMP) register/memory-to/from-register family.
func decodeRegMemToReg(cur *Cursor, b1 byte, mnemonic Mnemonic) (Instruction, error) {
	d := (b1 >> 1) & 1
	w := b1 & 1

	b2, err := cur.Next()
	if err != nil {
		return Instruction{}, err
	}
	mod := (b2 >> 6) & 0b11
	reg := (b2 >> 3) & 0b111
	rm := b2 & 0b111

	disp, directAddr, err := readDisplacement(cur, mod, rm)
	if err != nil {
		return Instruction{}, err
	}

	regOp := Register(cpu.AccessFromEncoding((reg << 1) | w))
	otherOp := rmOperand(mod, rm, w, disp, directAddr)

	return Instruction{
		Mnemonic: mnemonic,
		Dest:     regOp,
		Source:   otherOp,
		D:        d, W: w, Mod: mod, Reg: reg, Rm: rm,
	}, nil
}

// decodeImmediate reads a 2-byte little-endian immediate when wide is true,
// else a single byte zero-extended to 16 bits.
func decodeImmediate(cur *Cursor, wide bool) (uint16, error) {
	if wide {
		return cur.Next16()
	}
	b, err := cur.Next()
	if err != nil {
		return 0, err
	}
	return uint16(b), nil
}

// decodeImmToRegMem handles MOV's `1100011w` immediate-to-register/memory
// variant. The immediate is 2 bytes when w=1, else 1 byte (MOV has no sign
// bit).
func decodeImmToRegMem(cur *Cursor, b1 byte, mnemonic Mnemonic) (Instruction, error) {
	w := b1 & 1

	b2, err := cur.Next()
	if err != nil {
		return Instruction{}, err
	}
	mod := (b2 >> 6) & 0b11
	rm := b2 & 0b111

	disp, directAddr, err := readDisplacement(cur, mod, rm)
	if err != nil {
		return Instruction{}, err
	}
	dest := rmOperand(mod, rm, w, disp, directAddr)

	immWidth := uint8(8)
	if w == 1 {
		immWidth = 16
	}
	imm, err := decodeImmediate(cur, w == 1)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Mnemonic: mnemonic,
		Dest:     dest,
		Source:   Immediate(imm, immWidth, ImmLiteral),
		D:        1, W: w, Mod: mod, Rm: rm,
	}, nil
}

// decodeSharedArithImmToRegMem handles the `100000sw` ADD/SUB/CMP
// immediate-to-register/memory family, resolving the mnemonic from the
// second byte's reg field and applying the s/w immediate-width rule: read
// 1 byte whenever s=1 or w=0; read 2 bytes only when s=0 and w=1.
func decodeSharedArithImmToRegMem(cur *Cursor, b1 byte) (Instruction, error) {
	s := (b1 >> 1) & 1
	w := b1 & 1

	b2, err := cur.Next()
	if err != nil {
		return Instruction{}, err
	}
	mod := (b2 >> 6) & 0b11
	reg := (b2 >> 3) & 0b111
	rm := b2 & 0b111

	mnemonic, err := resolveArithSubop(reg, cur.Pos()-2)
	if err != nil {
		return Instruction{}, err
	}

	disp, directAddr, err := readDisplacement(cur, mod, rm)
	if err != nil {
		return Instruction{}, err
	}
	dest := rmOperand(mod, rm, w, disp, directAddr)

	wide := s == 0 && w == 1
	immWidth := uint8(8)
	if w == 1 {
		immWidth = 16
	}
	raw, err := decodeImmediate(cur, wide)
	if err != nil {
		return Instruction{}, err
	}
	imm := raw
	if !wide && w == 1 {
		imm = uint16(int16(int8(raw))) // sign-extend 8-bit immediate to 16 bits
	}

	return Instruction{
		Mnemonic: mnemonic,
		Dest:     dest,
		Source:   Immediate(imm, immWidth, ImmLiteral),
		D:        1, S: s, W: w, Mod: mod, Reg: reg, Rm: rm,
	}, nil
}

// decodeImmToReg handles MOV's `1011wrrr` immediate-to-register variant.
func decodeImmToReg(cur *Cursor, b1 byte) (Instruction, error) {
	w := (b1 >> 3) & 1
	reg := b1 & 0b111

	immWidth := uint8(8)
	if w == 1 {
		immWidth = 16
	}
	imm, err := decodeImmediate(cur, w == 1)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Mnemonic: MOV,
		Dest:     Register(cpu.AccessFromEncoding((reg << 1) | w)),
		Source:   Immediate(imm, immWidth, ImmLiteral),
		D:        1, W: w, Reg: reg,
	}, nil
}

// decodeAccMem handles MOV's `1010000w` (memory-to-accumulator) and
// `1010001w` (accumulator-to-memory) variants.
func decodeAccMem(cur *Cursor, b1 byte, memToAcc bool) (Instruction, error) {
	w := b1 & 1

	addrWidth := uint8(8)
	if w == 1 {
		addrWidth = 16
	}
	addr, err := decodeImmediate(cur, w == 1)
	if err != nil {
		return Instruction{}, err
	}

	acc := Register(cpu.AccessFromEncoding((0 << 1) | w)) // al or ax
	mem := Immediate(addr, addrWidth, ImmMemoryAbsolute)

	if memToAcc {
		return Instruction{Mnemonic: MOV, Dest: acc, Source: mem, D: 1, W: w}, nil
	}
	return Instruction{Mnemonic: MOV, Dest: mem, Source: acc, D: 1, W: w}, nil
}

// decodeImmToAcc handles ADD/SUB/CMP's immediate-to-accumulator variant
// (`0000010w`, `0010110w`, `0011110w`).
func decodeImmToAcc(cur *Cursor, b1 byte, mnemonic Mnemonic) (Instruction, error) {
	w := b1 & 1

	immWidth := uint8(8)
	if w == 1 {
		immWidth = 16
	}
	imm, err := decodeImmediate(cur, w == 1)
	if err != nil {
		return Instruction{}, err
	}

	acc := Register(cpu.AccessFromEncoding((0 << 1) | w)) // al or ax
	return Instruction{
		Mnemonic: mnemonic,
		Dest:     acc,
		Source:   Immediate(imm, immWidth, ImmLiteral),
		D:        1, W: w,
	}, nil
}

// decodeJnz handles the single `01110101` 8-bit relative conditional jump.
// The operand stores the raw signed offset; the +2 assembler adjustment is
// applied only when formatting for the listing (internal/asmtext).
func decodeJnz(cur *Cursor, b1 byte) (Instruction, error) {
	offsetByte, err := cur.Next()
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{
		Mnemonic: JNZ,
		Dest:     Immediate(uint16(offsetByte), 8, ImmRelativeOffset),
		Source:   Operand{Kind: OperandNone},
		D:        1,
	}, nil
}
