package interp

import (
	"strconv"

	"github.com/zm3core/zm3/story"
	"github.com/zm3core/zm3/zmerr"
)

func execVar(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	switch instr.Opcode {
	case 0: // call
		return ip.doCall(instr, ops)
	case 1: // storew
		st, err := ip.Story.WriteWord(uint32(ops[0])+2*uint32(ops[1]), ops[2])
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 2: // storeb
		st, err := ip.Story.WriteByte(uint32(ops[0])+uint32(ops[1]), byte(ops[2]))
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 3: // put_prop
		st, err := ip.Story.SetProperty(ops[0], uint8(ops[1]), ops[2])
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 4: // sread
		var parseBuf uint32
		if len(ops) > 1 {
			parseBuf = uint32(ops[1])
		}
		ip.State = WaitingForInput
		ip.line = &pendingLine{instrAddr: instr.Addr, textBufAddr: uint32(ops[0]), parseBufAddr: parseBuf}
		return ip, nil
	case 5: // print_char
		ip.Output += string(rune(ops[0]))
		return ip.fallThrough(instr)
	case 6: // print_num
		ip.Output += strconv.Itoa(int(signed(ops[0])))
		return ip.fallThrough(instr)
	case 7: // random
		n := signed(ops[0])
		switch {
		case n > 0:
			ip2, r := ip.nextRand()
			v := uint16(r%uint32(n)) + 1
			ip2, err := ip2.storeResult(instr, v)
			if err != nil {
				return ip, err
			}
			return ip2.fallThrough(instr)
		case n < 0:
			ip2 := ip
			ip2.rng = uint32(-n)
			ip2, err := ip2.storeResult(instr, 0)
			if err != nil {
				return ip, err
			}
			return ip2.fallThrough(instr)
		default:
			ip2, _ := ip.nextRand()
			ip2, err := ip2.storeResult(instr, 0)
			if err != nil {
				return ip, err
			}
			return ip2.fallThrough(instr)
		}
	case 8: // push
		ip = ip.withFrame(ip.frame().push(ops[0]))
		return ip.fallThrough(instr)
	case 9: // pull
		f, v := ip.frame().pop()
		ip = ip.withFrame(f)
		ip, err := ip.indirectWrite(uint8(ops[0]), v)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 10, 11, 13, 14, 15, 17, 18, 19, 20, 21: // windowing/stream opcodes belong to the host's screen model
		return ip.fallThrough(instr)
	case 16: // get_cursor: no screen model in this core
		ip, err := ip.storeResult(instr, 0)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 22: // read_char
		ip.State = WaitingForChar
		ip.char = &pendingChar{instrAddr: instr.Addr, store: *instr.Store}
		return ip, nil
	case 23: // scan_table
		return execScanTable(ip, instr, ops)
	case 24: // not
		ip, err := ip.storeResult(instr, ^ops[0])
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 27: // tokenise
		var parseBuf uint32
		if len(ops) > 1 {
			parseBuf = uint32(ops[1])
		}
		maxLen := ip.Story.ReadByte(uint32(ops[0]))
		var text []byte
		for i := uint32(0); i < uint32(maxLen); i++ {
			b := ip.Story.ReadByte(uint32(ops[0]) + 1 + i)
			if b == 0 {
				break
			}
			text = append(text, b)
		}
		st, err := tokenise(ip.Story, text, uint32(ops[0]), parseBuf)
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 29: // copy_table
		return execCopyTable(ip, instr, ops)
	case 30: // print_table
		return execPrintTable(ip, instr, ops)
	case 31: // check_arg_count
		return ip.doBranch(instr, uint16(ip.frame().ArgsPassed) >= ops[0])
	default:
		return ip, zmerr.At(zmerr.IllegalInstruction, instr.Addr, "var opcode not implemented for v3 (includes v4+ call_vs2/call_vn/call_vn2)")
	}
}

// execScanTable implements scan_table: search table (operand1) of len
// (operand2) entries - 2-byte words by default, or bytes when operand3's
// bit 7 is set - for value (operand0), storing the matching entry's
// address (or 0) and branching on whether it was found.
func execScanTable(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	value, table, length := ops[0], uint32(ops[1]), ops[2]
	wordsForm := true
	if len(ops) > 3 {
		wordsForm = ops[3]&0x80 == 0
	}
	stride := uint32(2)
	if !wordsForm {
		stride = 1
	}

	var found uint32
	for i := uint16(0); i < length; i++ {
		addr := table + uint32(i)*stride
		var v uint16
		if wordsForm {
			v = ip.Story.ReadWord(addr)
		} else {
			v = uint16(ip.Story.ReadByte(addr))
		}
		if v == value {
			found = addr
			break
		}
	}

	ip, err := ip.storeResult(instr, uint16(found))
	if err != nil {
		return ip, err
	}
	return ip.doBranch(instr, found != 0)
}

// execCopyTable implements copy_table: copy len(operand2) bytes from
// operand0 to operand1, or (if operand1 is 0) zero-fill operand0. A
// negative length forces a forward byte-by-byte copy even when the
// regions overlap; a positive length with overlap copies backward to
// avoid corrupting unread source bytes.
func execCopyTable(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	src, dst := uint32(ops[0]), uint32(ops[1])
	n := signed(ops[2])

	if dst == 0 {
		st := ip.Story
		for i := uint32(0); i < uint32(n); i++ {
			var err error
			st, err = st.WriteByte(src+i, 0)
			if err != nil {
				return ip, err
			}
		}
		ip.Story = st
		return ip.fallThrough(instr)
	}

	length := int(n)
	forward := n < 0
	if length < 0 {
		length = -length
	}
	st := ip.Story
	if forward || dst <= src {
		for i := 0; i < length; i++ {
			v := st.ReadByte(src + uint32(i))
			var err error
			st, err = st.WriteByte(dst+uint32(i), v)
			if err != nil {
				return ip, err
			}
		}
	} else {
		for i := length - 1; i >= 0; i-- {
			v := st.ReadByte(src + uint32(i))
			var err error
			st, err = st.WriteByte(dst+uint32(i), v)
			if err != nil {
				return ip, err
			}
		}
	}
	ip.Story = st
	return ip.fallThrough(instr)
}

// execPrintTable renders a rectangular block of ZSCII bytes - width
// operand1, height operand2 (default 1) - starting at operand0, one row
// per line. Cursor positioning for the upper window is the host's concern.
func execPrintTable(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	table, width := uint32(ops[0]), ops[1]
	height := uint16(1)
	if len(ops) > 2 {
		height = ops[2]
	}
	skip := uint16(0)
	if len(ops) > 3 {
		skip = ops[3]
	}

	for row := uint16(0); row < height; row++ {
		if row > 0 {
			ip.Output += "\n"
		}
		rowAddr := table + uint32(row)*uint32(uint16(width)+skip)
		for col := uint16(0); col < width; col++ {
			ip.Output += string(rune(ip.Story.ReadByte(rowAddr + uint32(col))))
		}
	}
	return ip.fallThrough(instr)
}
