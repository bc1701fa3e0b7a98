package story

import "github.com/zm3core/zm3/zmerr"

// Alphabet tables for version 3. Grounded on zstring.a0_default/a1_default/
// a2_v2_default (_examples/DaveTCode-zmachine-golang/zstring/zstring.go);
// the teacher's ReadZString panics with "TODO - Abbreviations not handled"
// whenever it meets an abbreviation z-char, so the state machine below is
// instead built directly from the decoder description this core targets,
// reusing only the teacher's alphabet tables and general shift-state shape.
var a0Table = [26]byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z'}
var a1Table = [26]byte{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}
var a2Table = [24]byte{'\n', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '('}

// alphabetChar renders one non-special z-char (6..31) in the given
// alphabet (0, 1 or 2) to its ZSCII byte.
func alphabetChar(alphabet int, z uint8) byte {
	switch alphabet {
	case 0:
		return a0Table[z-6]
	case 1:
		return a1Table[z-6]
	default:
		idx := int(z) - 7
		if idx < 0 || idx >= len(a2Table) {
			return ')' // zchar 31, the one slot past the teacher's 24-entry table
		}
		return a2Table[idx]
	}
}

// DecodeZSCII decodes the abbreviation-expanding z-string starting at addr
// and returns the decoded text together with the number of bytes the
// encoded form occupied (always a multiple of 2 - one per 16-bit word read,
// including any trailing words consumed purely by shift or abbreviation
// codes).
func (s Story) DecodeZSCII(addr uint32) (string, uint32, error) {
	return s.decodeZSCII(addr, true)
}

func (s Story) decodeZSCII(addr uint32, allowAbbrev bool) (string, uint32, error) {
	var out []byte
	alphabet := 0
	abbrevBase := -1
	leadingStage := 0 // 0 = idle, 1 = saw alphabet-2 zchar 6 (Leading), 2 = have high half (Trailing)
	leadingHigh := 0

	ptr := addr
	var bytesRead uint32

	for {
		w := s.ReadWord(ptr)
		ptr += 2
		bytesRead += 2
		end := w&0x8000 != 0

		zchars := [3]uint8{
			uint8((w >> 10) & 0x1f),
			uint8((w >> 5) & 0x1f),
			uint8(w & 0x1f),
		}

		for _, z := range zchars {
			switch {
			case abbrevBase >= 0:
				if !allowAbbrev {
					return "", 0, zmerr.At(zmerr.InvalidAbbreviationIndex, ptr, "abbreviation text must not itself contain an abbreviation code")
				}
				text, err := s.expandAbbreviation(uint8(abbrevBase) + z)
				if err != nil {
					return "", 0, err
				}
				out = append(out, text...)
				abbrevBase = -1
				alphabet = 0

			case leadingStage == 1:
				leadingHigh = int(z)
				leadingStage = 2

			case leadingStage == 2:
				out = append(out, byte(leadingHigh*32+int(z)))
				leadingStage = 0
				alphabet = 0

			case z == 0:
				out = append(out, ' ')
				alphabet = 0

			case z == 1:
				if !allowAbbrev {
					return "", 0, zmerr.At(zmerr.InvalidAbbreviationIndex, ptr, "abbreviation text must not itself contain an abbreviation code")
				}
				abbrevBase = 0

			case z == 2:
				if !allowAbbrev {
					return "", 0, zmerr.At(zmerr.InvalidAbbreviationIndex, ptr, "abbreviation text must not itself contain an abbreviation code")
				}
				abbrevBase = 32

			case z == 3:
				if !allowAbbrev {
					return "", 0, zmerr.At(zmerr.InvalidAbbreviationIndex, ptr, "abbreviation text must not itself contain an abbreviation code")
				}
				abbrevBase = 64

			case z == 4:
				alphabet = 1

			case z == 5:
				alphabet = 2

			case alphabet == 2 && z == 6:
				leadingStage = 1

			default:
				out = append(out, alphabetChar(alphabet, z))
				alphabet = 0
			}
		}

		if end {
			break
		}
	}

	return string(out), bytesRead, nil
}

// expandAbbreviation looks up abbreviation number idx (0..95) and decodes
// its text. Abbreviation text may not itself reference another
// abbreviation (spec's non-recursion rule for v3).
func (s Story) expandAbbreviation(idx uint8) (string, error) {
	if idx >= 96 {
		return "", zmerr.New(zmerr.InvalidAbbreviationIndex, "abbreviation index out of range 0..95")
	}
	entryAddr := uint32(s.Header.AbbrBase) + 2*uint32(idx)
	wordAddr := s.ReadWord(entryAddr)
	strAddr := uint32(wordAddr) * 2
	text, _, err := s.decodeZSCII(strAddr, false)
	return text, err
}

// zcharsForRune maps one rune to the z-char sequence that encodes it,
// shifting alphabet as needed. Used by EncodeZSCII/EncodeDictWord; the
// teacher repo has no inverse of ReadZString, so this is new code grounded
// on the same alphabet tables decode uses.
func zcharsForRune(r rune) []uint8 {
	switch {
	case r == ' ':
		return []uint8{0}
	case r >= 'a' && r <= 'z':
		return []uint8{uint8(r-'a') + 6}
	case r >= 'A' && r <= 'Z':
		return []uint8{4, uint8(r-'A') + 6}
	default:
		for i, c := range a2Table {
			if byte(r) == c {
				return []uint8{5, uint8(i) + 7}
			}
		}
		return []uint8{5, 7} // best-effort fallback: '\n' slot
	}
}

func zcharsForString(s string) []uint8 {
	var z []uint8
	for _, r := range s {
		z = append(z, zcharsForRune(r)...)
	}
	return z
}

func packWords(z []uint8) []byte {
	out := make([]byte, 0, len(z)/3*2)
	for i := 0; i < len(z); i += 3 {
		w := uint16(z[i])<<10 | uint16(z[i+1])<<5 | uint16(z[i+2])
		if i+3 >= len(z) {
			w |= 0x8000
		}
		out = append(out, byte(w>>8), byte(w))
	}
	return out
}

// EncodeZSCII encodes s (expected to contain only lowercase letters and
// spaces for the round-trip property this is tested against) into its
// z-char word stream, padding the final word with shift codes as needed.
func EncodeZSCII(s string) []byte {
	z := zcharsForString(s)
	for len(z)%3 != 0 {
		z = append(z, 5)
	}
	return packWords(z)
}

// EncodeDictWord encodes s into the fixed 4-byte (2-word) form v3
// dictionary entries use, truncating long words and padding short ones
// with shift-2 filler per the standard dictionary encoding.
func EncodeDictWord(s string) [4]byte {
	z := zcharsForString(s)
	if len(z) > 6 {
		z = z[:6]
	}
	for len(z) < 6 {
		z = append(z, 5)
	}
	packed := packWords(z)
	var out [4]byte
	copy(out[:], packed)
	return out
}
