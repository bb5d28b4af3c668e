package decode

import (
	"testing"

	"github.com/oisee/sim8086/internal/cpu"
)

func decodeOne(t *testing.T, code []byte) Instruction {
	t.Helper()
	instr, err := Decode(code, 0)
	if err != nil {
		t.Fatalf("Decode(%v): %v", code, err)
	}
	return instr
}

func TestExecMovRegisterRoundTrip(t *testing.T) {
	var s cpu.State
	// mov ax,1234
	instr := decodeOne(t, []byte{0xB8, 0xD2, 0x04})
	instr.Exec(&s)
	if s.Reg[cpu.AX] != 1234 {
		t.Fatalf("ax = %d, want 1234", s.Reg[cpu.AX])
	}

	// mov bx,ax
	instr = decodeOne(t, []byte{0x89, 0xC3})
	diff := instr.Exec(&s)
	if s.Reg[cpu.BX] != 1234 {
		t.Fatalf("bx = %d, want 1234", s.Reg[cpu.BX])
	}
	if !diff.HasReg || diff.Reg.Name() != "bx" || diff.OldReg != 0 || diff.NewReg != 1234 {
		t.Errorf("diff = %+v, want bx 0->1234", diff)
	}
}

func TestExecAdvancesIPByInstructionLength(t *testing.T) {
	var s cpu.State
	instr := decodeOne(t, []byte{0xB8, 0x01, 0x00}) // mov ax,1 (3 bytes)
	diff := instr.Exec(&s)
	if diff.OldIP != 0 || diff.NewIP != 3 {
		t.Errorf("ip diff = %d->%d, want 0->3", diff.OldIP, diff.NewIP)
	}
}

func TestExecSubSetsZeroFlag(t *testing.T) {
	var s cpu.State
	s.Reg[cpu.AX] = 100
	s.Reg[cpu.BX] = 100
	instr := decodeOne(t, []byte{0x29, 0xD8}) // sub ax,bx
	instr.Exec(&s)
	if s.Reg[cpu.AX] != 0 {
		t.Errorf("ax = %d, want 0", s.Reg[cpu.AX])
	}
	if s.Flags&cpu.FlagZero == 0 {
		t.Errorf("flags = %v, want Zero set", s.Flags)
	}
	if s.Flags&cpu.FlagSign != 0 {
		t.Errorf("flags = %v, want Sign clear", s.Flags)
	}
}

func TestExecSubSetsSignFlagOnNegativeResult(t *testing.T) {
	var s cpu.State
	s.Reg[cpu.AX] = 0
	instr := decodeOne(t, []byte{0x2D, 0x01, 0x00}) // sub ax,1
	instr.Exec(&s)
	if s.Reg[cpu.AX] != 0xFFFF {
		t.Errorf("ax = 0x%04X, want 0xFFFF", s.Reg[cpu.AX])
	}
	if s.Flags&cpu.FlagSign == 0 {
		t.Errorf("flags = %v, want Sign set", s.Flags)
	}
	if s.Flags&cpu.FlagZero != 0 {
		t.Errorf("flags = %v, want Zero clear", s.Flags)
	}
}

func TestExecCmpDiscardsResultButSetsFlags(t *testing.T) {
	var s cpu.State
	s.Reg[cpu.BX] = 5
	instr := decodeOne(t, []byte{0x83, 0xFB, 0x05}) // cmp bx,5
	instr.Exec(&s)
	if s.Reg[cpu.BX] != 5 {
		t.Errorf("bx = %d, want unchanged 5", s.Reg[cpu.BX])
	}
	if s.Flags&cpu.FlagZero == 0 {
		t.Errorf("flags = %v, want Zero set", s.Flags)
	}
}

func TestExecJnzBranchesOnlyWhenZeroClear(t *testing.T) {
	var s cpu.State
	s.Flags = 0 // zero clear
	instr := decodeOne(t, []byte{0x75, 0xFA})
	diff := instr.Exec(&s)
	// ip advances by Length(2) then by int8(0xFA)-2 = -6-2 = -8... compute directly:
	// int8(0xFA) = -6, offset = -6-2 = -8, newIP = 2 + (-8) = -6 -> wraps as uint16
	raw := byte(0xFA)
	want := uint16(int(diff.OldIP) + 2 + (int(int8(raw)) - 2))
	if s.Reg[cpu.IP] != want {
		t.Errorf("ip = %d, want %d", s.Reg[cpu.IP], want)
	}
}

func TestExecJnzDoesNotBranchWhenZeroSet(t *testing.T) {
	var s cpu.State
	s.Flags = cpu.FlagZero
	instr := decodeOne(t, []byte{0x75, 0xFA})
	instr.Exec(&s)
	if s.Reg[cpu.IP] != 2 {
		t.Errorf("ip = %d, want 2 (fell through, no branch)", s.Reg[cpu.IP])
	}
}

func TestExecJnzCountdownLoopTerminates(t *testing.T) {
	// mov bx,3 / loop: sub bx,1 / jnz loop
	code := []byte{
		0xBB, 0x03, 0x00,
		0x83, 0xEB, 0x01,
		0x75, 0xFD,
	}
	var s cpu.State
	steps := 0
	for int(s.Reg[cpu.IP]) < len(code) {
		steps++
		if steps > 100 {
			t.Fatal("loop did not terminate")
		}
		instr, err := Decode(code, int(s.Reg[cpu.IP]))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		instr.Exec(&s)
	}
	if s.Reg[cpu.BX] != 0 {
		t.Errorf("bx = %d, want 0", s.Reg[cpu.BX])
	}
	if s.Flags&cpu.FlagZero == 0 {
		t.Errorf("flags = %v, want Zero set at loop exit", s.Flags)
	}
}

func TestExecDirectAddressMemoryRoundTrip(t *testing.T) {
	var s cpu.State
	// mov word [1000], 42
	instr := decodeOne(t, []byte{0xC7, 0x06, 0xE8, 0x03, 0x2A, 0x00})
	instr.Exec(&s)
	if s.Mem[1000] != 0x2A || s.Mem[1001] != 0x00 {
		t.Fatalf("mem[1000:1002] = %02X %02X, want 2A 00", s.Mem[1000], s.Mem[1001])
	}

	// mov ax, [1000]
	s.Reg[cpu.IP] = 0
	instr = decodeOne(t, []byte{0xA1, 0xE8, 0x03})
	instr.Exec(&s)
	if s.Reg[cpu.AX] != 42 {
		t.Errorf("ax = %d, want 42", s.Reg[cpu.AX])
	}
}

func TestExecEffectiveAddressRegisterSum(t *testing.T) {
	var s cpu.State
	s.Reg[cpu.BX] = 100
	s.Reg[cpu.SI] = 5
	s.Mem[105] = 0x07
	// mov al, [bx+si]
	instr := decodeOne(t, []byte{0x8A, 0x00})
	instr.Exec(&s)
	if got := s.Read(cpu.Access{Index: cpu.AX, Half: cpu.Low}); got != 0x07 {
		t.Errorf("al = 0x%02X, want 0x07", got)
	}
}
