package decode

// family identifies which of the supported 8086 encoding variants a first
// byte belongs to. A small switch over bit patterns, not a map, so the
// compiler can flag a missing case and there's no hashing on the hot path.
type family int

const (
	famMovRegMemToReg family = iota
	famMovImmToRegMem
	famMovImmToReg
	famMovMemToAcc
	famMovAccToMem
	famArithRegMemToReg
	famArithImmToAcc
	famSharedArithImmToRegMem
	famJnz
)

// classify maps the first instruction byte to its encoding family, and for
// the families whose mnemonic is fully determined by b1 alone, the
// mnemonic too. For famSharedArithImmToRegMem the mnemonic isn't known
// until the second byte's reg field is read (see resolveArithSubop).
func classify(b1 byte, offset int) (family, Mnemonic, error) {
	switch {
	case b1&0xFC == 0x88:
		return famMovRegMemToReg, MOV, nil
	case b1&0xFE == 0xC6:
		return famMovImmToRegMem, MOV, nil
	case b1&0xF0 == 0xB0:
		return famMovImmToReg, MOV, nil
	case b1&0xFE == 0xA0:
		return famMovMemToAcc, MOV, nil
	case b1&0xFE == 0xA2:
		return famMovAccToMem, MOV, nil
	case b1&0xFC == 0x00:
		return famArithRegMemToReg, ADD, nil
	case b1&0xFE == 0x04:
		return famArithImmToAcc, ADD, nil
	case b1&0xFC == 0x28:
		return famArithRegMemToReg, SUB, nil
	case b1&0xFE == 0x2C:
		return famArithImmToAcc, SUB, nil
	case b1&0xFC == 0x38:
		return famArithRegMemToReg, CMP, nil
	case b1&0xFE == 0x3C:
		return famArithImmToAcc, CMP, nil
	case b1&0xFC == 0x80:
		return famSharedArithImmToRegMem, 0, nil
	case b1 == 0x75:
		return famJnz, JNZ, nil
	default:
		return 0, 0, &UnknownOpcodeError{Byte: b1, Offset: offset}
	}
}

// resolveArithSubop maps the reg field (bits 3-5 of the second byte) of the
// shared 100000sw family to its mnemonic: 000 ADD, 101 SUB, 111 CMP.
func resolveArithSubop(reg uint8, offset int) (Mnemonic, error) {
	switch reg {
	case 0b000:
		return ADD, nil
	case 0b101:
		return SUB, nil
	case 0b111:
		return CMP, nil
	default:
		return 0, &InvalidArithmeticSubopError{Bits: reg, Offset: offset}
	}
}
