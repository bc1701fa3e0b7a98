package interp

import (
	"github.com/zm3core/zm3/story"
	"github.com/zm3core/zm3/zmerr"
)

// execute runs one already-decoded instruction against ip, returning the
// successor interpreter. Grounded on zmachine.StepMachine's four
// operand-count switches (_examples/DaveTCode-zmachine-golang/zmachine/zmachine.go);
// unlike the teacher, operand evaluation, store, and branch handling are
// centralised instead of repeated per opcode, since opcode_meta.go already
// told the decoder which of them apply.
func execute(ip Interpreter, instr story.Instruction) (Interpreter, error) {
	ip, operands, err := ip.evalOperands(instr)
	if err != nil {
		return ip, err
	}

	switch instr.Count {
	case story.OP0:
		return execOp0(ip, instr, operands)
	case story.OP1:
		return execOp1(ip, instr, operands)
	case story.OP2:
		return execOp2(ip, instr, operands)
	default:
		return execVar(ip, instr, operands)
	}
}

func (ip Interpreter) fallThrough(instr story.Instruction) (Interpreter, error) {
	ip.PC = instr.Addr + instr.Length
	return ip, nil
}

func (ip Interpreter) storeResult(instr story.Instruction, v uint16) (Interpreter, error) {
	if instr.Store == nil {
		return ip, zmerr.At(zmerr.BadOperandShape, instr.Addr, "opcode expected a store target")
	}
	return ip.writeVariable(*instr.Store, v)
}

func execOp0(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	switch instr.Opcode {
	case 0: // rtrue
		return ip.doReturn(1)
	case 1: // rfalse
		return ip.doReturn(0)
	case 2: // print
		ip.Output += instr.Text
		return ip.fallThrough(instr)
	case 3: // print_ret
		ip.Output += instr.Text + "\n"
		return ip.doReturn(1)
	case 4: // nop
		return ip.fallThrough(instr)
	case 5, 6: // save, restore: no persistence layer in this core, so both fail
		return ip.doBranch(instr, false)
	case 7: // restart
		ip.State = Halted
		return ip, nil
	case 8: // ret_popped
		f, v := ip.frame().pop()
		return ip.withFrame(f).doReturn(v)
	case 9: // pop
		f, _ := ip.frame().pop()
		ip = ip.withFrame(f)
		return ip.fallThrough(instr)
	case 10: // quit
		ip.State = Halted
		return ip, nil
	case 11: // new_line
		ip.Output += "\n"
		return ip.fallThrough(instr)
	case 12: // show_status: status-line rendering belongs to the host, not this core
		return ip.fallThrough(instr)
	case 13: // verify: no checksum without the raw file bytes retained, so always succeeds
		return ip.doBranch(instr, true)
	case 15: // piracy: always "genuine"
		return ip.doBranch(instr, true)
	default:
		return ip, zmerr.At(zmerr.IllegalInstruction, instr.Addr, "op0 opcode not implemented for v3")
	}
}

func execOp1(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	a := ops[0]
	switch instr.Opcode {
	case 0: // jz
		return ip.doBranch(instr, a == 0)
	case 1: // get_sibling
		obj, err := ip.Story.Object(a)
		if err != nil {
			return ip, err
		}
		ip, err = ip.storeResult(instr, obj.Sibling)
		if err != nil {
			return ip, err
		}
		return ip.doBranch(instr, obj.Sibling != 0)
	case 2: // get_child
		obj, err := ip.Story.Object(a)
		if err != nil {
			return ip, err
		}
		ip, err = ip.storeResult(instr, obj.Child)
		if err != nil {
			return ip, err
		}
		return ip.doBranch(instr, obj.Child != 0)
	case 3: // get_parent
		obj, err := ip.Story.Object(a)
		if err != nil {
			return ip, err
		}
		ip, err = ip.storeResult(instr, obj.Parent)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 4: // get_prop_len
		ip, err := ip.storeResult(instr, ip.Story.GetPropertyLen(a))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 5: // inc
		ip2, cur, err := ip.indirectRead(uint8(a))
		if err != nil {
			return ip, err
		}
		ip2, err = ip2.indirectWrite(uint8(a), uint16(signed(cur)+1))
		if err != nil {
			return ip, err
		}
		return ip2.fallThrough(instr)
	case 6: // dec
		ip2, cur, err := ip.indirectRead(uint8(a))
		if err != nil {
			return ip, err
		}
		ip2, err = ip2.indirectWrite(uint8(a), uint16(signed(cur)-1))
		if err != nil {
			return ip, err
		}
		return ip2.fallThrough(instr)
	case 7: // print_addr
		text, _, err := ip.Story.DecodeZSCII(uint32(a))
		if err != nil {
			return ip, err
		}
		ip.Output += text
		return ip.fallThrough(instr)
	case 9: // remove_obj
		st, err := ip.Story.RemoveObject(a)
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 10: // print_obj
		name, err := ip.Story.ObjectName(a)
		if err != nil {
			return ip, err
		}
		ip.Output += name
		return ip.fallThrough(instr)
	case 11: // ret
		return ip.doReturn(a)
	case 12: // jump
		ip.PC = instr.JumpTarget
		return ip, nil
	case 13: // print_paddr
		text, _, err := ip.Story.DecodeZSCII(uint32(a) * 2)
		if err != nil {
			return ip, err
		}
		ip.Output += text
		return ip.fallThrough(instr)
	case 14: // load
		ip2, v, err := ip.indirectRead(uint8(a))
		if err != nil {
			return ip, err
		}
		ip2, err = ip2.storeResult(instr, v)
		if err != nil {
			return ip, err
		}
		return ip2.fallThrough(instr)
	case 15: // not
		ip, err := ip.storeResult(instr, ^a)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	default:
		return ip, zmerr.At(zmerr.IllegalInstruction, instr.Addr, "op1 opcode not implemented for v3")
	}
}

func execOp2(ip Interpreter, instr story.Instruction, ops []uint16) (Interpreter, error) {
	if len(ops) < 2 {
		return ip, zmerr.At(zmerr.BadOperandShape, instr.Addr, "2OP opcode given fewer than two operands")
	}
	a, b := ops[0], ops[1]
	switch instr.Opcode {
	case 1: // je: true if a equals any later operand
		for _, v := range ops[1:] {
			if a == v {
				return ip.doBranch(instr, true)
			}
		}
		return ip.doBranch(instr, false)
	case 2: // jl
		return ip.doBranch(instr, signed(a) < signed(b))
	case 3: // jg
		return ip.doBranch(instr, signed(a) > signed(b))
	case 4: // dec_chk
		ip2, cur, err := ip.indirectRead(uint8(a))
		if err != nil {
			return ip, err
		}
		next := signed(cur) - 1
		ip2, err = ip2.indirectWrite(uint8(a), uint16(next))
		if err != nil {
			return ip, err
		}
		return ip2.doBranch(instr, next < signed(b))
	case 5: // inc_chk
		ip2, cur, err := ip.indirectRead(uint8(a))
		if err != nil {
			return ip, err
		}
		next := signed(cur) + 1
		ip2, err = ip2.indirectWrite(uint8(a), uint16(next))
		if err != nil {
			return ip, err
		}
		return ip2.doBranch(instr, next > signed(b))
	case 6: // jin
		obj, err := ip.Story.Object(a)
		if err != nil {
			return ip, err
		}
		return ip.doBranch(instr, obj.Parent == b)
	case 7: // test
		return ip.doBranch(instr, a&b == b)
	case 8: // or
		ip, err := ip.storeResult(instr, a|b)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 9: // and
		ip, err := ip.storeResult(instr, a&b)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 10: // test_attr
		obj, err := ip.Story.Object(a)
		if err != nil {
			return ip, err
		}
		return ip.doBranch(instr, obj.TestAttribute(b))
	case 11: // set_attr
		st, err := ip.Story.SetAttribute(a, b)
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 12: // clear_attr
		st, err := ip.Story.ClearAttribute(a, b)
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 13: // store
		ip2, err := ip.indirectWrite(uint8(a), b)
		if err != nil {
			return ip, err
		}
		return ip2.fallThrough(instr)
	case 14: // insert_obj
		st, err := ip.Story.InsertObject(a, b)
		if err != nil {
			return ip, err
		}
		ip.Story = st
		return ip.fallThrough(instr)
	case 15: // loadw
		v := ip.Story.ReadWord(uint32(a) + 2*uint32(b))
		ip, err := ip.storeResult(instr, v)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 16: // loadb
		v := uint16(ip.Story.ReadByte(uint32(a) + uint32(b)))
		ip, err := ip.storeResult(instr, v)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 17: // get_prop
		v, err := ip.Story.GetProperty(a, uint8(b))
		if err != nil {
			return ip, err
		}
		ip, err = ip.storeResult(instr, v)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 18: // get_prop_addr
		v, err := ip.Story.GetPropertyAddr(a, uint8(b))
		if err != nil {
			return ip, err
		}
		ip, err = ip.storeResult(instr, v)
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 19: // get_next_prop
		v, err := ip.Story.GetNextProperty(a, uint8(b))
		if err != nil {
			return ip, err
		}
		ip, err = ip.storeResult(instr, uint16(v))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 20: // add
		ip, err := ip.storeResult(instr, uint16(signed(a)+signed(b)))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 21: // sub
		ip, err := ip.storeResult(instr, uint16(signed(a)-signed(b)))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 22: // mul
		ip, err := ip.storeResult(instr, uint16(signed(a)*signed(b)))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 23: // div
		if signed(b) == 0 {
			return ip, zmerr.At(zmerr.DivideByZero, instr.Addr, "div by zero")
		}
		ip, err := ip.storeResult(instr, uint16(signed(a)/signed(b)))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 24: // mod
		if signed(b) == 0 {
			return ip, zmerr.At(zmerr.DivideByZero, instr.Addr, "mod by zero")
		}
		ip, err := ip.storeResult(instr, uint16(signed(a)%signed(b)))
		if err != nil {
			return ip, err
		}
		return ip.fallThrough(instr)
	case 27: // set_colour: screen colour state belongs to the host
		return ip.fallThrough(instr)
	default:
		return ip, zmerr.At(zmerr.IllegalInstruction, instr.Addr, "op2 opcode not implemented for v3 (includes v4+ call_2s/call_2n/throw)")
	}
}
