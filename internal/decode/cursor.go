package decode

import "fmt"

// Cursor is a read-only view over a code image plus a position cursor. It
// hands the decoder 1–6 bytes at a time and reports running off the end of
// the image as an error rather than panicking, so a truncated instruction
// never gets silently misread as a shorter one.
type Cursor struct {
	code []byte
	pos  int
}

// NewCursor creates a Cursor starting at the given byte offset.
func NewCursor(code []byte, start int) *Cursor {
	return &Cursor{code: code, pos: start}
}

// Pos returns the current offset into the code image.
func (c *Cursor) Pos() int { return c.pos }

// Next consumes and returns the next byte, or a TruncatedInstruction error
// if the cursor is already at the end of the image.
func (c *Cursor) Next() (byte, error) {
	if c.pos >= len(c.code) {
		return 0, &TruncatedInstructionError{Offset: c.pos}
	}
	b := c.code[c.pos]
	c.pos++
	return b, nil
}

// Next16 consumes two bytes and assembles them little-endian.
func (c *Cursor) Next16() (uint16, error) {
	lo, err := c.Next()
	if err != nil {
		return 0, err
	}
	hi, err := c.Next()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// TruncatedInstructionError reports that the decoder ran off the end of the
// code image mid-instruction.
type TruncatedInstructionError struct {
	Offset int
}

func (e *TruncatedInstructionError) Error() string {
	return fmt.Sprintf("decode: truncated instruction at offset %d", e.Offset)
}
