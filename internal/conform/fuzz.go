package conform

import "math/rand/v2"

// arithSubops are the reg-field values the shared 100000sw family accepts:
// ADD, SUB, CMP.
var arithSubops = [3]uint8{0b000, 0b101, 0b111}

// randomProgram generates a short, always-decodable instruction sequence
// restricted to register-only operands (mod=11), so fuzzing never has to
// reason about memory bounds or branch targets landing mid-instruction.
// JNZ is excluded here; its control-flow semantics are covered by the
// seed corpus's countdown loop instead, where the target is hand-verified.
func randomProgram(rng *rand.Rand) []byte {
	n := 1 + rng.IntN(8)
	var code []byte
	for i := 0; i < n; i++ {
		code = append(code, randomInstruction(rng)...)
	}
	return code
}

func randomInstruction(rng *rand.Rand) []byte {
	switch rng.IntN(3) {
	case 0:
		return encodeMovRegImm(rng)
	case 1:
		return encodeMovRegReg(rng)
	default:
		return encodeArithRegImm(rng)
	}
}

func encodeMovRegImm(rng *rand.Rand) []byte {
	w := uint8(rng.IntN(2))
	reg := uint8(rng.IntN(8))
	b1 := 0xB0 | (w << 3) | reg
	if w == 1 {
		imm := uint16(rng.IntN(65536))
		return []byte{b1, byte(imm), byte(imm >> 8)}
	}
	return []byte{b1, byte(rng.IntN(256))}
}

func encodeMovRegReg(rng *rand.Rand) []byte {
	w := uint8(rng.IntN(2))
	reg := uint8(rng.IntN(8))
	rm := uint8(rng.IntN(8))
	b1 := 0x88 | (1 << 1) | w // d=1
	b2 := 0xC0 | (reg << 3) | rm
	return []byte{b1, b2}
}

func encodeArithRegImm(rng *rand.Rand) []byte {
	reg := arithSubops[rng.IntN(len(arithSubops))]
	w := uint8(rng.IntN(2))
	var s uint8
	if w == 1 {
		s = uint8(rng.IntN(2))
	}
	rm := uint8(rng.IntN(8))
	b1 := 0x80 | (s << 1) | w
	b2 := 0xC0 | (reg << 3) | rm

	out := []byte{b1, b2}
	if w == 1 && s == 0 {
		v := uint16(rng.IntN(65536))
		return append(out, byte(v), byte(v>>8))
	}
	return append(out, byte(rng.IntN(256)))
}
