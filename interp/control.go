package interp

import (
	"github.com/zm3core/zm3/story"
	"github.com/zm3core/zm3/zmerr"
)

// doBranch applies instr's branch spec to condition, following the fall
// through/return/jump rules of spec §4.4.
func (ip Interpreter) doBranch(instr story.Instruction, condition bool) (Interpreter, error) {
	if instr.Branch == nil {
		ip.PC = instr.Addr + instr.Length
		return ip, nil
	}
	if condition != instr.Branch.Sense {
		ip.PC = instr.Addr + instr.Length
		return ip, nil
	}
	switch instr.Branch.Kind {
	case story.BranchReturnFalse:
		return ip.doReturn(0)
	case story.BranchReturnTrue:
		return ip.doReturn(1)
	default:
		ip.PC = instr.Branch.Addr
		return ip, nil
	}
}

// doReturn pops the current frame, delivering value to its store target if
// any, and restores the caller's PC by re-decoding the instruction at the
// recorded caller address and adding its length. Returning from the
// outermost frame halts the machine rather than underflowing the stack.
func (ip Interpreter) doReturn(value uint16) (Interpreter, error) {
	if len(ip.Frames) <= 1 {
		ip2 := ip
		ip2.State = Halted
		return ip2, nil
	}
	ip2, old := ip.popFrame()
	callerInstr, err := ip2.Story.DecodeInstruction(old.CallerInstrAddr)
	if err != nil {
		return ip, err
	}
	if old.Store != nil {
		ip2, err = ip2.writeVariable(*old.Store, value)
		if err != nil {
			return ip, err
		}
	}
	ip2.PC = old.CallerInstrAddr + callerInstr.Length
	return ip2, nil
}

// doCall implements the single v3 calling convention (VAR:224). ops is
// every evaluated operand, routine address first, remaining args after.
// A large or small routine operand arrives already unpacked - decode
// doubled the constant directly - but a Variable operand names a
// selector, not a value, so decode left it alone; doCall doubles the
// resolved value here itself, the same way execOp1's print_paddr doubles
// its already-resolved operand at runtime.
func (ip Interpreter) doCall(instr story.Instruction, ops []uint16) (Interpreter, error) {
	if len(ops) == 0 {
		return ip, zmerr.At(zmerr.BadOperandShape, instr.Addr, "call requires a routine operand")
	}
	routine := uint32(ops[0])
	if instr.Operands[0].Type == story.OperandVariable {
		routine *= 2
	}
	args := ops[1:]

	if routine == 0 {
		// Calling address 0 is a no-op that "returns" false.
		if instr.Store == nil {
			ip.PC = instr.Addr + instr.Length
			return ip, nil
		}
		ip2, err := ip.writeVariable(*instr.Store, 0)
		if err != nil {
			return ip, err
		}
		ip2.PC = instr.Addr + instr.Length
		return ip2, nil
	}

	count := ip.Story.ReadByte(routine)
	if count > 15 {
		return ip, zmerr.At(zmerr.TooManyLocals, routine, "routine header claims more than 15 locals")
	}

	var locals [15]uint16
	for i := uint8(0); i < count; i++ {
		locals[i] = ip.Story.ReadWord(routine + 1 + uint32(i)*2)
	}
	for i := 0; i < len(args) && i < int(count); i++ {
		locals[i] = args[i]
	}

	var store *story.VarRef
	if instr.Store != nil {
		s := *instr.Store
		store = &s
	}

	frame := Frame{
		NumLocals:       count,
		Locals:          locals,
		ArgsPassed:      uint8(len(args)),
		CallerInstrAddr: instr.Addr,
		Store:           store,
	}

	ip2 := ip.pushFrame(frame)
	ip2.PC = ip.Story.RoutineFirstInstruction(routine)
	return ip2, nil
}
