package story

import (
	"testing"

	"github.com/zm3core/zm3/internal/memory"
)

func newTestStory(dyn []byte) Story {
	return Story{
		Header: Header{Version: 3, AbbrBase: 0},
		Mem:    memory.New(dyn, nil),
	}
}

var zsciiDecodingTests = []struct {
	in  []byte
	out string
}{
	{[]byte{0xa0, 0xd9}, "cat"}, // c a t, single word, end bit set
	{[]byte{0x32, 0x80, 0x4e, 0x97, 0xe5, 0xa5}, "go north"},
}

func TestZSCIIDecoding(t *testing.T) {
	for _, tt := range zsciiDecodingTests {
		t.Run(tt.out, func(t *testing.T) {
			s := newTestStory(tt.in)
			got, n, err := s.DecodeZSCII(0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.out {
				t.Fatalf("DecodeZSCII = %q, want %q", got, tt.out)
			}
			if int(n) != len(tt.in) {
				t.Fatalf("bytes read = %d, want %d", n, len(tt.in))
			}
		})
	}
}

func TestZSCIIRoundTrip(t *testing.T) {
	tests := []string{"a", "cat", "go north", "zzz"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			enc := EncodeZSCII(s)
			st := newTestStory(enc)
			got, n, err := st.DecodeZSCII(0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != s {
				t.Fatalf("round trip = %q, want %q", got, s)
			}
			if int(n) != len(enc) {
				t.Fatalf("bytes read = %d, want %d", n, len(enc))
			}
		})
	}
}

func TestAbbreviationExpansion(t *testing.T) {
	// Layout: [0:2) the instruction's own z-string (references abbreviation
	// 0), [2:4) the one-entry abbreviation table, [4:) "hello" encoded.
	helloEnc := EncodeZSCII("hello")
	dyn := make([]byte, 4+len(helloEnc))

	// zchars [1 (abbreviation base 0), 0 (index 0 -> abbreviation 0), 5 (pad)]
	w := uint16(0x8000) | uint16(1)<<10 | uint16(0)<<5 | uint16(5)
	dyn[0] = byte(w >> 8)
	dyn[1] = byte(w)

	strWordAddr := uint16(4 / 2)
	dyn[2] = byte(strWordAddr >> 8)
	dyn[3] = byte(strWordAddr)
	copy(dyn[4:], helloEnc)

	s := newTestStory(dyn)
	s.Header.AbbrBase = 2

	got, _, err := s.DecodeZSCII(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("abbreviation expansion = %q, want %q", got, "hello")
	}
}
