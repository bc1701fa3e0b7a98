package bits

import "testing"

func TestSignedWord(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int16
	}{
		{"zero", 0, 0},
		{"max positive", 32767, 32767},
		{"wraps to negative", 32768, -32768},
		{"wraps to -1", 65535, -1},
		{"already negative", -5, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignedWord(tt.in); got != tt.want {
				t.Fatalf("SignedWord(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnsignedWord(t *testing.T) {
	if got := UnsignedWord(-1); got != 0xffff {
		t.Fatalf("UnsignedWord(-1) = %#x, want 0xffff", got)
	}
	if got := UnsignedWord(70000); got != 4464 {
		t.Fatalf("UnsignedWord(70000) = %d, want 4464", got)
	}
}

func TestBit(t *testing.T) {
	w := uint16(0b1010_0000_0000_0001)
	if !Bit(w, 0) {
		t.Fatalf("bit 0 should be set")
	}
	if Bit(w, 1) {
		t.Fatalf("bit 1 should be clear")
	}
	if !Bit(w, 13) {
		t.Fatalf("bit 13 should be set")
	}
}

func TestBitRange(t *testing.T) {
	w := uint16(0b1100_0000_0000_0000)
	if got := BitRange(w, 15, 14); got != 0b11 {
		t.Fatalf("BitRange(15,14) = %b, want 11", got)
	}
	w2 := uint16(0x1f << 5)
	if got := BitRange(w2, 9, 5); got != 0x1f {
		t.Fatalf("BitRange(9,5) = %#x, want 0x1f", got)
	}
}
