// Package interp implements the call-frame stack machine that executes
// decoded instructions against a story.Story (spec §4.4). Every operation
// is pure: Step and StepWithInput return a successor Interpreter and leave
// their receiver untouched, so a host can keep arbitrarily many prior
// snapshots around for free.
//
// Grounded on zmachine.ZMachine/zmachine.StepMachine
// (_examples/DaveTCode-zmachine-golang/zmachine/zmachine.go) for the
// dispatch shape and per-opcode semantics, and zmachine.CallStackFrame
// (_examples/DaveTCode-zmachine-golang/zmachine/callstack.go) for the
// frame layout - reshaped from a mutable, pointer-chasing call stack onto
// plain value types so that pushing a frame is "append to a new slice"
// rather than "mutate in place".
package interp

import (
	"github.com/zm3core/zm3/story"
	"github.com/zm3core/zm3/zmerr"
)

// State is the interpreter's externally visible phase (spec §5).
type State int

const (
	Running State = iota
	WaitingForInput
	WaitingForChar
	Halted
)

// Frame is one call-frame activation record.
type Frame struct {
	Stack     []uint16
	Locals    [15]uint16
	NumLocals uint8

	// ArgsPassed is the number of operands the call actually supplied
	// (beyond the routine address), used by check_arg_count.
	ArgsPassed uint8

	// CallerInstrAddr is the address of the instruction that pushed this
	// frame (zero for the initial frame). On return, the caller's PC is
	// recovered by re-decoding the instruction at this address and adding
	// its length, rather than storing an already-advanced PC directly.
	CallerInstrAddr uint32
	Store           *story.VarRef
}

func (f Frame) push(v uint16) Frame {
	f.Stack = append(append([]uint16(nil), f.Stack...), v)
	return f
}

func (f Frame) pop() (Frame, uint16) {
	if len(f.Stack) == 0 {
		return f, 0
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return f, v
}

// pendingLine holds a sread instruction's operands and in-progress input
// line while the interpreter sits in WaitingForInput.
type pendingLine struct {
	instrAddr     uint32
	textBufAddr   uint32
	parseBufAddr  uint32
	buf           []byte
}

// pendingChar holds a read_char instruction's store target while waiting
// for a single keystroke.
type pendingChar struct {
	instrAddr uint32
	store     story.VarRef
}

// Interpreter is the full machine state: program counter, non-empty frame
// stack, the Story it executes against, and any in-flight input request.
// Mutating methods return a new value; the receiver is never modified.
type Interpreter struct {
	Story  story.Story
	PC     uint32
	Frames []Frame
	State  State

	rng uint32

	Output string // all screen text produced since New; never cleared (spec's "Out of scope" renderer consumes this)

	line *pendingLine
	char *pendingChar
}

// New builds the initial interpreter for a freshly loaded story: one frame
// with an empty stack and no locals, PC at the header's initial PC.
func New(st story.Story) Interpreter {
	return Interpreter{
		Story:  st,
		PC:     st.InitialPC(),
		Frames: []Frame{{}},
		State:  Running,
		rng:    0x2545F491, // arbitrary odd seed; deterministic by construction
	}
}

func (ip Interpreter) frame() Frame {
	return ip.Frames[len(ip.Frames)-1]
}

func (ip Interpreter) withFrame(f Frame) Interpreter {
	ip2 := ip
	ip2.Frames = append(append([]Frame(nil), ip.Frames[:len(ip.Frames)-1]...), f)
	return ip2
}

func (ip Interpreter) pushFrame(f Frame) Interpreter {
	ip2 := ip
	ip2.Frames = append(append([]Frame(nil), ip.Frames...), f)
	return ip2
}

func (ip Interpreter) popFrame() (Interpreter, Frame) {
	f := ip.frame()
	ip2 := ip
	ip2.Frames = ip.Frames[:len(ip.Frames)-1]
	return ip2, f
}

// Step decodes and executes exactly one instruction at the current PC.
// Calling Step while State is not Running is a programming error reported
// as IllegalInstruction rather than panicking.
func (ip Interpreter) Step() (Interpreter, error) {
	if ip.State != Running {
		return ip, zmerr.At(zmerr.IllegalInstruction, ip.PC, "Step called while not Running")
	}

	instr, err := ip.Story.DecodeInstruction(ip.PC)
	if err != nil {
		return ip, err
	}

	return execute(ip, instr)
}

// readVariable evaluates a variable reference, popping the current frame's
// stack when it names the stack. Returns the (possibly mutated) interpreter
// and the value.
func (ip Interpreter) readVariable(ref story.VarRef) (Interpreter, uint16, error) {
	switch ref.Kind {
	case story.VarStack:
		f, v := ip.frame().pop()
		return ip.withFrame(f), v, nil
	case story.VarLocal:
		f := ip.frame()
		if ref.Num < 1 || int(ref.Num) > int(f.NumLocals) {
			return ip, 0, zmerr.At(zmerr.InvalidLocal, ip.PC, "local out of range for this frame")
		}
		return ip, f.Locals[ref.Num-1], nil
	default:
		v, err := ip.Story.ReadGlobal(ref.Num)
		return ip, v, err
	}
}

// writeVariable stores v into a variable reference, pushing onto the stack
// when it names the stack.
func (ip Interpreter) writeVariable(ref story.VarRef, v uint16) (Interpreter, error) {
	switch ref.Kind {
	case story.VarStack:
		return ip.withFrame(ip.frame().push(v)), nil
	case story.VarLocal:
		f := ip.frame()
		if ref.Num < 1 || int(ref.Num) > int(f.NumLocals) {
			return ip, zmerr.At(zmerr.InvalidLocal, ip.PC, "local out of range for this frame")
		}
		f.Locals[ref.Num-1] = v
		return ip.withFrame(f), nil
	default:
		st, err := ip.Story.WriteGlobal(ref.Num, v)
		if err != nil {
			return ip, err
		}
		ip2 := ip
		ip2.Story = st
		return ip2, nil
	}
}

// evalOperand evaluates one decoded operand left to right, threading the
// (possibly mutated, on a stack pop) interpreter through.
func (ip Interpreter) evalOperand(op story.Operand) (Interpreter, uint16, error) {
	if op.Type != story.OperandVariable {
		return ip, op.Value, nil
	}
	return ip.readVariable(story.VarRefFromByte(uint8(op.Value)))
}

// evalOperands evaluates every operand of instr in order, left to right.
func (ip Interpreter) evalOperands(instr story.Instruction) (Interpreter, []uint16, error) {
	vals := make([]uint16, len(instr.Operands))
	for i, op := range instr.Operands {
		var v uint16
		var err error
		ip, v, err = ip.evalOperand(op)
		if err != nil {
			return ip, nil, err
		}
		vals[i] = v
	}
	return ip, vals, nil
}

// indirectRead reads the variable named by num, treating the stack specially:
// an indirect reference to the stack reads its top value without popping.
func (ip Interpreter) indirectRead(num uint8) (Interpreter, uint16, error) {
	ref := story.VarRefFromByte(num)
	if ref.Kind == story.VarStack {
		f := ip.frame()
		if len(f.Stack) == 0 {
			return ip, 0, nil
		}
		return ip, f.Stack[len(f.Stack)-1], nil
	}
	return ip.readVariable(ref)
}

// indirectWrite writes v into the variable named by num. An indirect write
// to the stack replaces its top value in place rather than pushing.
func (ip Interpreter) indirectWrite(num uint8, v uint16) (Interpreter, error) {
	ref := story.VarRefFromByte(num)
	if ref.Kind == story.VarStack {
		f := ip.frame()
		if len(f.Stack) == 0 {
			return ip.withFrame(f.push(v)), nil
		}
		f2 := f
		f2.Stack = append([]uint16(nil), f.Stack...)
		f2.Stack[len(f2.Stack)-1] = v
		return ip.withFrame(f2), nil
	}
	ip2, err := ip.writeVariable(ref, v)
	return ip2, err
}

func signed(v uint16) int16 { return int16(v) }

// nextRand advances the interpreter's deterministic generator. A simple
// linear congruential generator keeps state transitions a pure function of
// the prior state (spec §5), unlike the teacher's time-seeded math/rand.
func (ip Interpreter) nextRand() (Interpreter, uint32) {
	ip2 := ip
	ip2.rng = ip.rng*1103515245 + 12345
	return ip2, ip2.rng
}
