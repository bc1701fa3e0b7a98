package story

import (
	"github.com/zm3core/zm3/internal/bits"
	"github.com/zm3core/zm3/zmerr"
)

// DecodeInstruction decodes one instruction at addr: its form, operand
// count, operands, and - per the opcode's metadata - its store target,
// branch spec, and inline text.
//
// Grounded on zmachine.ParseOpcode/parseVariableOperands
// (_examples/DaveTCode-zmachine-golang/zmachine/opcode.go); the extended
// (0xbe) form is dropped since it only exists from version 5 onward
// (Non-goal: versions other than 3).
func (s Story) DecodeInstruction(addr uint32) (Instruction, error) {
	ptr := addr
	first := s.ReadByte(ptr)
	ptr++

	form := first >> 6
	var count OperandCount
	var opcode uint8
	var operands []Operand

	switch {
	case form == 0b11: // variable form
		opcode = first & 0x1f
		if (first>>5)&1 == 0 {
			count = OP2
		} else {
			count = VAR
		}
		operands, ptr = s.readVarOperands(ptr, opcode, count)

	case form == 0b10: // short form
		opcode = first & 0x0f
		ot := (first >> 4) & 0b11
		switch ot {
		case 0b00:
			count = OP1
			var op Operand
			op, ptr = s.readOperand(ptr, OperandLarge)
			operands = []Operand{op}
		case 0b01:
			count = OP1
			var op Operand
			op, ptr = s.readOperand(ptr, OperandSmall)
			operands = []Operand{op}
		case 0b10:
			count = OP1
			var op Operand
			op, ptr = s.readOperand(ptr, OperandVariable)
			operands = []Operand{op}
		default:
			count = OP0
		}

	default: // long form
		count = OP2
		opcode = first & 0x1f
		t1, t2 := OperandSmall, OperandSmall
		if (first>>6)&1 == 1 {
			t1 = OperandVariable
		}
		if (first>>5)&1 == 1 {
			t2 = OperandVariable
		}
		var o1, o2 Operand
		o1, ptr = s.readOperand(ptr, t1)
		o2, ptr = s.readOperand(ptr, t2)
		operands = []Operand{o1, o2}
	}

	meta := lookupMeta(count, opcode)

	// Operand munging: a call's first operand is a packed routine address;
	// v3 unpacks it by doubling to get the byte address. Only constant
	// operands (large or small) can be doubled here - a Variable operand
	// is a selector, not yet a value, and doubling it would corrupt which
	// variable gets read. interp.doCall doubles the variable case itself
	// once it has resolved the operand to an actual value.
	if meta.isCall && len(operands) > 0 && operands[0].Type != OperandVariable {
		operands[0].Value *= 2
	}

	instr := Instruction{Addr: addr, Count: count, Opcode: opcode, Operands: operands}

	if meta.hasStore {
		b := s.ReadByte(ptr)
		ptr++
		v := VarRefFromByte(b)
		instr.Store = &v
	}

	var branchOffset int32
	var haveBranch bool
	if meta.hasBranch {
		b1 := s.ReadByte(ptr)
		ptr++
		sense := b1&0x80 != 0
		short := b1&0x40 != 0
		var offset int32
		if short {
			offset = int32(b1 & 0x3f)
		} else {
			b2 := s.ReadByte(ptr)
			ptr++
			raw := (uint16(b1&0x3f) << 8) | uint16(b2)
			offset = int32(raw)
			if raw >= 8192 {
				offset -= 16384
			}
		}
		branchOffset = offset
		haveBranch = true
		instr.Branch = &BranchSpec{Sense: sense}
		switch offset {
		case 0:
			instr.Branch.Kind = BranchReturnFalse
		case 1:
			instr.Branch.Kind = BranchReturnTrue
		default:
			instr.Branch.Kind = BranchAddress
		}
	}

	if meta.hasText {
		text, n, err := s.decodeZSCII(ptr, true)
		if err != nil {
			return Instruction{}, err
		}
		instr.Text = text
		instr.HasText = true
		ptr += n
	}

	instr.Length = ptr - addr

	if haveBranch && instr.Branch.Kind == BranchAddress {
		instr.Branch.Addr = uint32(int64(addr) + int64(instr.Length) + int64(branchOffset) - 2)
	}

	if count == OP1 && opcode == 12 { // jump: operand is a signed offset, applied the same way a branch address is
		if operands[0].Type != OperandLarge {
			return Instruction{}, zmerr.At(zmerr.BadOperandShape, addr, "jump operand must be a large constant")
		}
		offset := bits.SignedWord(int(operands[0].Value))
		instr.IsJump = true
		instr.JumpTarget = uint32(int64(addr) + int64(instr.Length) + int64(offset) - 2)
	}

	return instr, nil
}

func (s Story) readOperand(ptr uint32, t OperandType) (Operand, uint32) {
	if t == OperandLarge {
		v := s.ReadWord(ptr)
		return Operand{Type: t, Value: v}, ptr + 2
	}
	v := s.ReadByte(ptr)
	return Operand{Type: t, Value: uint16(v)}, ptr + 1
}

// readVarOperands reads the operand-type byte(s) and the operands they
// describe. call_vs2 (VAR:12) and call_vn2 (VAR:26) read a second type
// byte and admit up to 8 operands instead of 4.
func (s Story) readVarOperands(ptr uint32, opcode uint8, count OperandCount) ([]Operand, uint32) {
	typeByte := s.ReadByte(ptr)
	ptr++

	extended := count == VAR && (opcode == 12 || opcode == 26)
	var typeByte2 byte
	max := 4
	if extended {
		typeByte2 = s.ReadByte(ptr)
		ptr++
		max = 8
	}

	var operands []Operand
	for i := 0; i < max; i++ {
		var raw byte
		if i < 4 {
			raw = (typeByte >> uint(2*(3-i))) & 0b11
		} else {
			raw = (typeByte2 >> uint(2*(7-i))) & 0b11
		}
		if raw == 0b11 {
			break
		}
		var op Operand
		op, ptr = s.readOperand(ptr, operandTypeFromBits(raw))
		operands = append(operands, op)
	}
	return operands, ptr
}

func operandTypeFromBits(b byte) OperandType {
	switch b {
	case 0b00:
		return OperandLarge
	case 0b01:
		return OperandSmall
	default:
		return OperandVariable
	}
}

// DisplayInstruction renders instr as a single human-readable line:
// mnemonic, operands, and its store/branch annotation if any.
func (s Story) DisplayInstruction(instr Instruction) string {
	name := Mnemonic(instr.Count, instr.Opcode)
	out := name
	for _, op := range instr.Operands {
		switch op.Type {
		case OperandVariable:
			out += " " + displayVarRef(VarRefFromByte(uint8(op.Value)))
		default:
			out += " #" + itoa(int(op.Value))
		}
	}
	if instr.Store != nil {
		out += " -> " + displayVarRef(*instr.Store)
	}
	if instr.Branch != nil {
		sense := "false"
		if instr.Branch.Sense {
			sense = "true"
		}
		switch instr.Branch.Kind {
		case BranchReturnFalse:
			out += " [" + sense + "] rfalse"
		case BranchReturnTrue:
			out += " [" + sense + "] rtrue"
		default:
			out += " [" + sense + "] " + itoa(int(instr.Branch.Addr))
		}
	}
	if instr.IsJump {
		out += " " + itoa(int(instr.JumpTarget))
	}
	if instr.HasText {
		out += " \"" + instr.Text + "\""
	}
	return out
}

func displayVarRef(v VarRef) string {
	switch v.Kind {
	case VarStack:
		return "sp"
	case VarLocal:
		return "local" + itoa(int(v.Num))
	default:
		return "g" + itoa(int(v.Num-16))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
