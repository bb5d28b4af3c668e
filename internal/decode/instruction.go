package decode

import "github.com/oisee/sim8086/internal/cpu"

// Mnemonic identifies one of the five supported 8086 operations.
type Mnemonic int

const (
	MOV Mnemonic = iota
	ADD
	SUB
	CMP
	JNZ
)

func (m Mnemonic) String() string {
	switch m {
	case MOV:
		return "mov"
	case ADD:
		return "add"
	case SUB:
		return "sub"
	case CMP:
		return "cmp"
	case JNZ:
		return "jnz"
	default:
		return "???"
	}
}

// IsArithmetic reports whether m is one of ADD/SUB/CMP, the three mnemonics
// that derive flags from their result.
func (m Mnemonic) IsArithmetic() bool {
	return m == ADD || m == SUB || m == CMP
}

// OperandKind tags which variant an Operand holds.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandEffectiveAddress
	OperandImmediate
)

// ImmediateKind distinguishes the three uses of an immediate value: a
// literal constant, a direct memory address, and a PC-relative branch
// offset.
type ImmediateKind int

const (
	ImmLiteral ImmediateKind = iota
	ImmMemoryAbsolute
	ImmRelativeOffset
)

// Operand is a tagged union over the three operand shapes the decoder
// produces: a named register, a memory effective address, or an immediate
// (which may itself mean a literal, a direct address, or a branch offset).
type Operand struct {
	Kind OperandKind

	// OperandRegister
	Reg cpu.Access

	// OperandEffectiveAddress
	Base uint8 // r/m field, 0..7, selects one of the 8 base expressions
	Disp int16 // signed displacement, already sign-extended at decode time

	// OperandImmediate
	Imm      uint16
	ImmWidth uint8 // 8 or 16
	ImmKind  ImmediateKind
}

// Register builds a register operand.
func Register(a cpu.Access) Operand {
	return Operand{Kind: OperandRegister, Reg: a}
}

// EffectiveAddress builds a memory operand addressed via a base expression
// plus displacement.
func EffectiveAddress(base uint8, disp int16) Operand {
	return Operand{Kind: OperandEffectiveAddress, Base: base, Disp: disp}
}

// Immediate builds an immediate operand of the given width and kind.
func Immediate(value uint16, width uint8, kind ImmediateKind) Operand {
	return Operand{Kind: OperandImmediate, Imm: value, ImmWidth: width, ImmKind: kind}
}

// IsMemory reports whether the operand reads/writes main memory rather than
// a register: either an effective address, or an immediate flagged as a
// direct memory address.
func (o Operand) IsMemory() bool {
	return o.Kind == OperandEffectiveAddress || (o.Kind == OperandImmediate && o.ImmKind == ImmMemoryAbsolute)
}

// Instruction is the decoder's structured output for a single 8086
// instruction: the mnemonic, the canonicalised destination/source operands
// (after any d=0 swap), the encoding bits preserved verbatim, and the
// instruction's total byte length.
type Instruction struct {
	Mnemonic Mnemonic
	Dest     Operand
	Source   Operand

	D, S, W      uint8
	Mod, Reg, Rm uint8

	Length int
}
