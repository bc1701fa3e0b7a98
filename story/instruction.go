package story

// Instruction-decoding types. Grounded on zmachine/opcode.go's
// Operand/Opcode/OperandType/OperandCount
// (_examples/DaveTCode-zmachine-golang/zmachine/opcode.go); the teacher
// scatters has-store/has-branch/has-text knowledge across
// zmachine.StepMachine's switch arms, which this core instead hoists into
// the per-opcode metadata table in opcode_meta.go so the decoder can stay
// ignorant of opcode semantics.

type OperandType int

const (
	OperandLarge OperandType = iota
	OperandSmall
	OperandVariable
)

type OperandCount int

const (
	OP0 OperandCount = iota
	OP1
	OP2
	VAR
)

type Operand struct {
	Type  OperandType
	Value uint16
}

type VarKind int

const (
	VarStack VarKind = iota
	VarLocal
	VarGlobal
)

// VarRef names a storable location: the evaluation stack, a local
// (Num 1..15), or a global (Num 16..255).
type VarRef struct {
	Kind VarKind
	Num  uint8
}

// VarRefFromByte decodes the variable-number byte used by store targets
// and by Variable-type operands alike.
func VarRefFromByte(b uint8) VarRef {
	switch {
	case b == 0:
		return VarRef{Kind: VarStack}
	case b < 16:
		return VarRef{Kind: VarLocal, Num: b}
	default:
		return VarRef{Kind: VarGlobal, Num: b}
	}
}

type BranchKind int

const (
	BranchReturnFalse BranchKind = iota
	BranchReturnTrue
	BranchAddress
)

type BranchSpec struct {
	Sense bool
	Kind  BranchKind
	Addr  uint32
}

// Instruction is one fully decoded instruction: its operands plus
// whichever of a store target, branch spec, and inline text its opcode's
// metadata says it carries.
type Instruction struct {
	Addr     uint32
	Length   uint32
	Count    OperandCount
	Opcode   uint8
	Operands []Operand
	Store    *VarRef
	Branch   *BranchSpec
	Text     string
	HasText  bool

	// JumpTarget is set instead of Branch for the "jump" opcode, whose
	// operand is a signed offset applied the same way a branch address
	// is, but unconditionally and without a branch byte.
	JumpTarget uint32
	IsJump     bool
}
