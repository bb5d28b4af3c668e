package sim

import (
	"testing"

	"github.com/oisee/sim8086/internal/cpu"
)

// These mirror the scenarios hand-verified in internal/conform/seeds.go:
// immediate loads, register-to-register copies, arithmetic with flags, a
// negative-result sign flag, a JNZ-terminated countdown loop, and a
// direct-address memory round trip.

func TestRunDecodeOnlyDoesNotTouchState(t *testing.T) {
	code := []byte{0xB8, 0x01, 0x00, 0xBB, 0x02, 0x00} // mov ax,1 / mov bx,2
	listing, err := Run(code, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if listing.State.Reg[cpu.AX] != 0 || listing.State.Reg[cpu.BX] != 0 {
		t.Errorf("registers = %+v, want untouched (decode-only run)", listing.State.Reg)
	}
	if len(listing.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(listing.Lines))
	}
	if listing.Lines[0] != "mov ax, 1" || listing.Lines[1] != "mov bx, 2" {
		t.Errorf("Lines = %v", listing.Lines)
	}
}

func TestRunExecImmediateLoads(t *testing.T) {
	code := []byte{
		0xB8, 0x01, 0x00,
		0xBB, 0x02, 0x00,
		0xB9, 0x03, 0x00,
		0xBA, 0x04, 0x00,
		0xBC, 0x05, 0x00,
		0xBD, 0x06, 0x00,
		0xBE, 0x07, 0x00,
		0xBF, 0x08, 0x00,
	}
	listing, err := Run(code, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := listing.State
	want := map[int]uint16{
		cpu.AX: 1, cpu.BX: 2, cpu.CX: 3, cpu.DX: 4,
		cpu.SP: 5, cpu.BP: 6, cpu.SI: 7, cpu.DI: 8,
	}
	for idx, v := range want {
		if s.Reg[idx] != v {
			t.Errorf("register %s = %d, want %d", cpu.RegisterName(idx), s.Reg[idx], v)
		}
	}
	if s.Flags != 0 {
		t.Errorf("flags = %v, want none set", s.Flags)
	}
}

func TestRunExecRegisterCopies(t *testing.T) {
	code := []byte{
		0xB8, 0x04, 0x00,
		0xBB, 0x03, 0x00,
		0xB9, 0x02, 0x00,
		0xBA, 0x01, 0x00,
		0x8B, 0xE2, // mov sp, dx
		0x8B, 0xE9, // mov bp, cx
		0x8B, 0xF3, // mov si, bx
		0x8B, 0xF8, // mov di, ax
	}
	listing, err := Run(code, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := listing.State
	want := map[int]uint16{
		cpu.AX: 4, cpu.BX: 3, cpu.CX: 2, cpu.DX: 1,
		cpu.SP: 1, cpu.BP: 2, cpu.SI: 3, cpu.DI: 4,
	}
	for idx, v := range want {
		if s.Reg[idx] != v {
			t.Errorf("register %s = %d, want %d", cpu.RegisterName(idx), s.Reg[idx], v)
		}
	}
}

func TestRunExecArithmeticZeroFlag(t *testing.T) {
	code := []byte{
		0xB8, 0x64, 0x00, // mov ax,100
		0xBB, 0x64, 0x00, // mov bx,100
		0x2B, 0xD8, // sub bx,ax
		0x83, 0xFB, 0x00, // cmp bx,0
	}
	listing, err := Run(code, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := listing.State
	if s.Reg[cpu.AX] != 100 || s.Reg[cpu.BX] != 0 {
		t.Errorf("ax,bx = %d,%d, want 100,0", s.Reg[cpu.AX], s.Reg[cpu.BX])
	}
	if s.Flags != cpu.FlagZero {
		t.Errorf("flags = %v, want Zero only", s.Flags)
	}
}

func TestRunExecNegativeResultSignFlag(t *testing.T) {
	code := []byte{0xB8, 0x00, 0x00, 0x2D, 0x01, 0x00} // mov ax,0 / sub ax,1
	listing, err := Run(code, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := listing.State
	if s.Reg[cpu.AX] != 0xFFFF {
		t.Errorf("ax = 0x%04X, want 0xFFFF", s.Reg[cpu.AX])
	}
	if s.Flags != cpu.FlagSign {
		t.Errorf("flags = %v, want Sign only", s.Flags)
	}
}

func TestRunExecJnzCountdownLoop(t *testing.T) {
	code := []byte{
		0xBB, 0x03, 0x00, // mov bx,3
		0x83, 0xEB, 0x01, // sub bx,1
		0x75, 0xFD, // jnz loop
	}
	listing, err := Run(code, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := listing.State
	if s.Reg[cpu.BX] != 0 {
		t.Errorf("bx = %d, want 0", s.Reg[cpu.BX])
	}
	if s.Flags != cpu.FlagZero {
		t.Errorf("flags = %v, want Zero only", s.Flags)
	}
	if int(s.Reg[cpu.IP]) != len(code) {
		t.Errorf("ip = %d, want %d (landed exactly on end of image)", s.Reg[cpu.IP], len(code))
	}
}

func TestRunExecDirectAddressRoundTrip(t *testing.T) {
	code := []byte{
		0xC7, 0x06, 0xE8, 0x03, 0x2A, 0x00, // mov word [1000], 42
		0xA1, 0xE8, 0x03, // mov ax, [1000]
	}
	listing, err := Run(code, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := listing.State
	if s.Reg[cpu.AX] != 42 {
		t.Errorf("ax = %d, want 42", s.Reg[cpu.AX])
	}
	if s.Mem[1000] != 0x2A || s.Mem[1001] != 0x00 {
		t.Errorf("mem[1000:1002] = %02X %02X, want 2A 00", s.Mem[1000], s.Mem[1001])
	}
}
