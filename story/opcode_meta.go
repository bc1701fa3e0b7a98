package story

// opMeta is the constant, per-opcode metadata spec calls for: whether the
// opcode is followed by a store-target byte, a branch spec, inline text,
// whether it is a call, and whether control falls through to the next
// instruction absent a taken branch/return/jump.
//
// Grounded on the shape of zmachine.StepMachine's four operand-count
// switches (_examples/DaveTCode-zmachine-golang/zmachine/zmachine.go),
// which scatter this same information across each opcode's case body
// (calls to z.writeVariable, z.handleBranch, zstring.Decode); this table
// hoists it out so the decoder needs no opcode-specific knowledge.
type opMeta struct {
	name      string
	hasStore  bool
	hasBranch bool
	hasText   bool
	isCall    bool
	continues bool
}

var op0Meta = [16]opMeta{
	0:  {name: "rtrue", continues: false},
	1:  {name: "rfalse", continues: false},
	2:  {name: "print", hasText: true, continues: true},
	3:  {name: "print_ret", hasText: true, continues: false},
	4:  {name: "nop", continues: true},
	5:  {name: "save", hasBranch: true, continues: true},
	6:  {name: "restore", hasBranch: true, continues: true},
	7:  {name: "restart", continues: false},
	8:  {name: "ret_popped", continues: false},
	9:  {name: "pop", continues: true},
	10: {name: "quit", continues: false},
	11: {name: "new_line", continues: true},
	12: {name: "show_status", continues: true},
	13: {name: "verify", hasBranch: true, continues: true},
	14: {name: "illegal", continues: true},
	15: {name: "piracy", hasBranch: true, continues: true},
}

var op1Meta = [16]opMeta{
	0:  {name: "jz", hasBranch: true, continues: true},
	1:  {name: "get_sibling", hasStore: true, hasBranch: true, continues: true},
	2:  {name: "get_child", hasStore: true, hasBranch: true, continues: true},
	3:  {name: "get_parent", hasStore: true, continues: true},
	4:  {name: "get_prop_len", hasStore: true, continues: true},
	5:  {name: "inc", continues: true},
	6:  {name: "dec", continues: true},
	7:  {name: "print_addr", continues: true},
	8:  {name: "illegal", continues: true},
	9:  {name: "remove_obj", continues: true},
	10: {name: "print_obj", continues: true},
	11: {name: "ret", continues: false},
	12: {name: "jump", continues: false},
	13: {name: "print_paddr", continues: true},
	14: {name: "load", hasStore: true, continues: true},
	15: {name: "not", hasStore: true, continues: true},
}

var op2Meta = [32]opMeta{
	1:  {name: "je", hasBranch: true, continues: true},
	2:  {name: "jl", hasBranch: true, continues: true},
	3:  {name: "jg", hasBranch: true, continues: true},
	4:  {name: "dec_chk", hasBranch: true, continues: true},
	5:  {name: "inc_chk", hasBranch: true, continues: true},
	6:  {name: "jin", hasBranch: true, continues: true},
	7:  {name: "test", hasBranch: true, continues: true},
	8:  {name: "or", hasStore: true, continues: true},
	9:  {name: "and", hasStore: true, continues: true},
	10: {name: "test_attr", hasBranch: true, continues: true},
	11: {name: "set_attr", continues: true},
	12: {name: "clear_attr", continues: true},
	13: {name: "store", continues: true},
	14: {name: "insert_obj", continues: true},
	15: {name: "loadw", hasStore: true, continues: true},
	16: {name: "loadb", hasStore: true, continues: true},
	17: {name: "get_prop", hasStore: true, continues: true},
	18: {name: "get_prop_addr", hasStore: true, continues: true},
	19: {name: "get_next_prop", hasStore: true, continues: true},
	20: {name: "add", hasStore: true, continues: true},
	21: {name: "sub", hasStore: true, continues: true},
	22: {name: "mul", hasStore: true, continues: true},
	23: {name: "div", hasStore: true, continues: true},
	24: {name: "mod", hasStore: true, continues: true},
	25: {name: "call_2s", hasStore: true, isCall: true, continues: true},
	26: {name: "call_2n", isCall: true, continues: true},
	27: {name: "set_colour", continues: true},
	28: {name: "throw", continues: false},
}

var varMeta = [32]opMeta{
	0:  {name: "call", hasStore: true, isCall: true, continues: true},
	1:  {name: "storew", continues: true},
	2:  {name: "storeb", continues: true},
	3:  {name: "put_prop", continues: true},
	4:  {name: "sread", continues: true},
	5:  {name: "print_char", continues: true},
	6:  {name: "print_num", continues: true},
	7:  {name: "random", hasStore: true, continues: true},
	8:  {name: "push", continues: true},
	9:  {name: "pull", continues: true},
	10: {name: "split_window", continues: true},
	11: {name: "set_window", continues: true},
	12: {name: "call_vs2", hasStore: true, isCall: true, continues: true},
	13: {name: "erase_window", continues: true},
	14: {name: "erase_line", continues: true},
	15: {name: "set_cursor", continues: true},
	16: {name: "get_cursor", hasStore: true, continues: true},
	17: {name: "set_text_style", continues: true},
	18: {name: "buffer_mode", continues: true},
	19: {name: "output_stream", continues: true},
	20: {name: "input_stream", continues: true},
	21: {name: "sound_effect", continues: true},
	22: {name: "read_char", hasStore: true, continues: true},
	23: {name: "scan_table", hasStore: true, hasBranch: true, continues: true},
	24: {name: "not", hasStore: true, continues: true},
	25: {name: "call_vn", isCall: true, continues: true},
	26: {name: "call_vn2", isCall: true, continues: true},
	27: {name: "tokenise", continues: true},
	28: {name: "encode_text", continues: true},
	29: {name: "copy_table", continues: true},
	30: {name: "print_table", continues: true},
	31: {name: "check_arg_count", hasBranch: true, continues: true},
}

func lookupMeta(count OperandCount, opcode uint8) opMeta {
	switch count {
	case OP0:
		return op0Meta[opcode]
	case OP1:
		return op1Meta[opcode]
	case OP2:
		return op2Meta[opcode]
	default:
		return varMeta[opcode]
	}
}

// Mnemonic returns an opcode's display name, used by DisplayInstruction
// and the disassembler.
func Mnemonic(count OperandCount, opcode uint8) string {
	return lookupMeta(count, opcode).name
}
