// Package asmtext renders decoded instructions and final machine state as
// the assembler-syntax text a listing file or terminal report is made of.
package asmtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/sim8086/internal/cpu"
	"github.com/oisee/sim8086/internal/decode"
)

// eacBase names the eight r/m base expressions in encoding order.
var eacBase = [8]string{
	"bx + si", "bx + di", "bp + si", "bp + di",
	"si", "di", "bp", "bx",
}

// Line renders instr as a single listing line, e.g. "mov ax, bx". When diff
// is non-nil the line gets a trailing " ; " comment describing what
// executing instr changed.
func Line(instr decode.Instruction, diff *decode.Diff) string {
	var b strings.Builder
	b.WriteString(instr.Mnemonic.String())
	b.WriteByte(' ')
	b.WriteString(operandString(instr, instr.Dest, false))

	src := operandString(instr, instr.Source, true)
	if src != "" {
		b.WriteString(", ")
		b.WriteString(src)
	}

	if diff != nil {
		b.WriteString(" ; ")
		b.WriteString(diffComment(instr, *diff))
	}

	return b.String()
}

func operandString(instr decode.Instruction, op decode.Operand, isSource bool) string {
	switch op.Kind {
	case decode.OperandRegister:
		return op.Reg.Name()
	case decode.OperandEffectiveAddress:
		return "[" + eacBase[op.Base] + dispSuffix(op.Disp) + "]"
	case decode.OperandImmediate:
		return immediateString(instr, op, isSource)
	default:
		return ""
	}
}

func immediateString(instr decode.Instruction, op decode.Operand, isSource bool) string {
	switch op.ImmKind {
	case decode.ImmMemoryAbsolute:
		return "[" + strconv.Itoa(int(op.Imm)) + "]"
	case decode.ImmRelativeOffset:
		return relativeOffsetString(op.Imm)
	default:
		var prefix string
		if isSource && instr.Dest.IsMemory() {
			if instr.W == 1 {
				prefix = "word "
			} else {
				prefix = "byte "
			}
		}
		return prefix + strconv.Itoa(int(op.Imm))
	}
}

// dispSuffix renders a signed EAC displacement as " + N" or " - N". The
// sign is always shown, even for a zero displacement under mod=00, which
// matches the reference assembler's output for this addressing form.
func dispSuffix(disp int16) string {
	if disp < 0 {
		return fmt.Sprintf(" - %d", -int32(disp))
	}
	return fmt.Sprintf(" + %d", disp)
}

// relativeOffsetString reverses the executor's -2 adjustment so the
// printed operand matches what a programmer would have written as the
// jump target delta: the raw decoded byte, interpreted as signed, plus 2.
func relativeOffsetString(raw uint16) string {
	signed := int(int8(raw)) + 2
	if signed < 0 {
		return fmt.Sprintf("$%d", signed)
	}
	return fmt.Sprintf("$+%d", signed)
}

func diffComment(instr decode.Instruction, diff decode.Diff) string {
	var parts []string

	if diff.HasReg {
		parts = append(parts, fmt.Sprintf("%s:0x%x->0x%x", diff.Reg.Name(), diff.OldReg, diff.NewReg))
	}
	parts = append(parts, fmt.Sprintf("ip:0x%x->0x%x", diff.OldIP, diff.NewIP))

	if instr.Mnemonic.IsArithmetic() && (diff.OldFlags != 0 || diff.NewFlags != 0) {
		parts = append(parts, fmt.Sprintf("flags:%s->%s", diff.OldFlags, diff.NewFlags))
	}

	return strings.Join(parts, " ")
}

// FinalState renders the post-execution register and flag report: one line
// per non-zero register in ax,bx,cx,dx,sp,bp,si,di,ip order, then a flags
// line.
func FinalState(s *cpu.State) string {
	var b strings.Builder
	b.WriteString("Final registers:\n")
	for i := cpu.AX; i <= cpu.IP; i++ {
		v := s.Reg[i]
		if v != 0 {
			fmt.Fprintf(&b, "      %s: 0x%04x (%d)\n", cpu.RegisterName(i), v, v)
		}
	}
	fmt.Fprintf(&b, "   flags: %s\n", s.Flags)
	return b.String()
}
