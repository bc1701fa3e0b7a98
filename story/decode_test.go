package story

import (
	"testing"

	"github.com/zm3core/zm3/internal/memory"
)

func storyAt(addr uint32, bytes []byte) Story {
	dyn := make([]byte, int(addr)+len(bytes))
	copy(dyn[addr:], bytes)
	return Story{Header: Header{Version: 3}, Mem: memory.New(dyn, nil)}
}

func TestDecodeJump(t *testing.T) {
	// 0x8C = short form, large operand, opcode 12 (jump); operand 0xFFFB
	// is signed -5. Target = 0x4000 + 3 + (-5) - 2 = 0x3FFC.
	s := storyAt(0x4000, []byte{0x8C, 0xFF, 0xFB})

	instr, err := s.DecodeInstruction(0x4000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if instr.Count != OP1 || instr.Opcode != 12 {
		t.Fatalf("decoded as count=%v opcode=%d, want OP1/12", instr.Count, instr.Opcode)
	}
	if instr.Length != 3 {
		t.Fatalf("length = %d, want 3", instr.Length)
	}
	if !instr.IsJump {
		t.Fatalf("expected IsJump")
	}
	if instr.JumpTarget != 0x3FFC {
		t.Fatalf("JumpTarget = %#x, want 0x3ffc", instr.JumpTarget)
	}
}

func TestDecodeCall(t *testing.T) {
	// VAR form, opcode 0 (call); operand types [large, small]; operands
	// [0x1234, 0x05]; store -> local 3. The first operand is a packed
	// routine address and comes out of decoding already doubled.
	s := storyAt(0x5000, []byte{0xE0, 0x1F, 0x12, 0x34, 0x05, 0x03})

	instr, err := s.DecodeInstruction(0x5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if instr.Count != VAR || instr.Opcode != 0 {
		t.Fatalf("decoded as count=%v opcode=%d, want VAR/0", instr.Count, instr.Opcode)
	}
	if len(instr.Operands) != 2 {
		t.Fatalf("operand count = %d, want 2", len(instr.Operands))
	}
	if instr.Operands[0].Type != OperandLarge || instr.Operands[0].Value != 0x2468 {
		t.Fatalf("operand0 = %+v, want large 0x2468 (0x1234 doubled)", instr.Operands[0])
	}
	if instr.Operands[1].Type != OperandSmall || instr.Operands[1].Value != 0x05 {
		t.Fatalf("operand1 = %+v, want small 0x05", instr.Operands[1])
	}
	if instr.Store == nil || instr.Store.Kind != VarLocal || instr.Store.Num != 3 {
		t.Fatalf("store = %+v, want local 3", instr.Store)
	}
	if instr.Length != 6 {
		t.Fatalf("length = %d, want 6", instr.Length)
	}
}

func TestBranchReturnFalse(t *testing.T) {
	// jz (OP1:0) has a branch; branch byte 0x40: sense=false, short form,
	// offset bits = 0 -> ReturnFalse. 0x90 = short form, operand type
	// small (01), opcode 0 (jz).
	s := storyAt(0, []byte{0x90, 0x01, 0x40})

	instr, err := s.DecodeInstruction(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if instr.Branch == nil {
		t.Fatalf("expected branch spec")
	}
	if instr.Branch.Sense != false {
		t.Fatalf("sense = %v, want false", instr.Branch.Sense)
	}
	if instr.Branch.Kind != BranchReturnFalse {
		t.Fatalf("kind = %v, want ReturnFalse", instr.Branch.Kind)
	}
}

func TestInstructionLengthSelfConsistency(t *testing.T) {
	s := storyAt(0, []byte{
		0x8C, 0xFF, 0xFB, // jump -5
		0x90, 0x00, 0x40, // jz small-const 0, branch return-false
	})
	first, err := s.DecodeInstruction(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.DecodeInstruction(first.Length)
	if err != nil {
		t.Fatalf("unexpected error decoding second instruction: %v", err)
	}
	if second.Count != OP1 || second.Opcode != 0 {
		t.Fatalf("second instruction decoded as count=%v opcode=%d, want OP1/0 (jz)", second.Count, second.Opcode)
	}
}
