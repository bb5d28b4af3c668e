package decode

import "fmt"

// UnknownOpcodeError reports a first byte that matches no supported
// encoding variant.
type UnknownOpcodeError struct {
	Byte   byte
	Offset int
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("decode: unknown opcode 0x%02x at offset %d", e.Byte, e.Offset)
}

// InvalidArithmeticSubopError reports a reg-field value in the shared
// 100000sw family that isn't ADD (000), SUB (101), or CMP (111).
type InvalidArithmeticSubopError struct {
	Bits   uint8
	Offset int
}

func (e *InvalidArithmeticSubopError) Error() string {
	return fmt.Sprintf("decode: invalid arithmetic sub-opcode 0b%03b at offset %d", e.Bits, e.Offset)
}
