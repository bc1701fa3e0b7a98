package interp

import (
	"github.com/zm3core/zm3/story"
	"github.com/zm3core/zm3/zmerr"
)

// StepWithInput supplies one typed character to an interpreter sitting in
// WaitingForInput (spec §5: "input as an interrupt, not a blocking read").
// A newline completes the line: the buffered text is written to the text
// buffer, tokenised into the parse buffer, and the interpreter resumes
// Running just past the sread instruction.
func (ip Interpreter) StepWithInput(r rune) (Interpreter, error) {
	if ip.State != WaitingForInput || ip.line == nil {
		return ip, zmerr.At(zmerr.IllegalInstruction, ip.PC, "StepWithInput called while not waiting for a line")
	}
	if r == '\n' || r == '\r' {
		return ip.completeSread()
	}

	pl := *ip.line
	pl.buf = append(append([]byte(nil), pl.buf...), lowerASCII(byte(r)))
	ip2 := ip
	ip2.line = &pl
	return ip2, nil
}

// StepWithChar supplies one keystroke to an interpreter sitting in
// WaitingForChar (read_char), storing it directly and resuming.
func (ip Interpreter) StepWithChar(r rune) (Interpreter, error) {
	if ip.State != WaitingForChar || ip.char == nil {
		return ip, zmerr.At(zmerr.IllegalInstruction, ip.PC, "StepWithChar called while not waiting for a character")
	}
	pc := *ip.char

	instr, err := ip.Story.DecodeInstruction(pc.instrAddr)
	if err != nil {
		return ip, err
	}
	ip2, err := ip.writeVariable(pc.store, uint16(r))
	if err != nil {
		return ip, err
	}
	ip2.State = Running
	ip2.char = nil
	ip2.PC = pc.instrAddr + instr.Length
	return ip2, nil
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func (ip Interpreter) completeSread() (Interpreter, error) {
	pl := *ip.line

	maxLen := ip.Story.ReadByte(pl.textBufAddr)
	text := pl.buf
	if len(text) > int(maxLen) {
		text = text[:maxLen]
	}

	st := ip.Story
	var err error
	for i, c := range text {
		st, err = st.WriteByte(pl.textBufAddr+1+uint32(i), c)
		if err != nil {
			return ip, err
		}
	}
	st, err = st.WriteByte(pl.textBufAddr+1+uint32(len(text)), 0)
	if err != nil {
		return ip, err
	}

	if pl.parseBufAddr != 0 {
		st, err = tokenise(st, text, pl.textBufAddr, pl.parseBufAddr)
		if err != nil {
			return ip, err
		}
	}

	instr, err := st.DecodeInstruction(pl.instrAddr)
	if err != nil {
		return ip, err
	}

	ip2 := ip
	ip2.Story = st
	ip2.State = Running
	ip2.line = nil
	ip2.PC = pl.instrAddr + instr.Length
	return ip2, nil
}

// tokenise splits text on spaces and the dictionary's separator
// characters (separators count as their own one-character words), encodes
// each word the way the dictionary does, and writes the parse-buffer entry
// format: a count byte followed by (dictionary address, length, position)
// per word.
func tokenise(st story.Story, text []byte, textBufAddr, parseBufAddr uint32) (story.Story, error) {
	if parseBufAddr == 0 {
		return st, nil
	}
	dict, err := st.Dictionary()
	if err != nil {
		return st, err
	}
	maxWords := st.ReadByte(parseBufAddr)

	type span struct{ start, length int }
	var words []span
	i := 0
	for i < len(text) {
		switch {
		case text[i] == ' ':
			i++
		case dict.IsSeparator(text[i]):
			words = append(words, span{i, 1})
			i++
		default:
			start := i
			for i < len(text) && text[i] != ' ' && !dict.IsSeparator(text[i]) {
				i++
			}
			words = append(words, span{start, i - start})
		}
	}
	if len(words) > int(maxWords) {
		words = words[:maxWords]
	}

	st2 := st
	st2, err = st2.WriteByte(parseBufAddr+1, uint8(len(words)))
	if err != nil {
		return st, err
	}

	ptr := parseBufAddr + 2
	for _, w := range words {
		enc := story.EncodeDictWord(string(text[w.start : w.start+w.length]))
		addr := dict.Find(enc)
		st2, err = st2.WriteWord(ptr, addr)
		if err != nil {
			return st, err
		}
		st2, err = st2.WriteByte(ptr+2, uint8(w.length))
		if err != nil {
			return st, err
		}
		st2, err = st2.WriteByte(ptr+3, uint8(w.start+1))
		if err != nil {
			return st, err
		}
		ptr += 4
	}
	return st2, nil
}
