package story

// Reachable computes the set of instruction addresses reachable from
// start by following each instruction's normal fall-through (when its
// opcode metadata says it continues) together with any branch target or
// jump target it carries. It is a pure, address-only analysis - it does
// not execute anything and does not follow calls into other routines.
func (s Story) Reachable(start uint32) (map[uint32]bool, error) {
	seen := map[uint32]bool{}
	stack := []uint32{start}

	for len(stack) > 0 {
		addr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[addr] {
			continue
		}
		instr, err := s.DecodeInstruction(addr)
		if err != nil {
			return nil, err
		}
		seen[addr] = true

		meta := lookupMeta(instr.Count, instr.Opcode)
		if meta.continues {
			stack = append(stack, addr+instr.Length)
		}
		if instr.Branch != nil && instr.Branch.Kind == BranchAddress {
			stack = append(stack, instr.Branch.Addr)
		}
		if instr.IsJump {
			stack = append(stack, instr.JumpTarget)
		}
	}

	return seen, nil
}

// RoutineFirstInstruction returns the address of a called routine's first
// instruction, given the byte address its packed call operand resolves
// to: a one-byte local count followed by that many default-value words
// (v3 layout).
func (s Story) RoutineFirstInstruction(routineAddr uint32) uint32 {
	count := s.ReadByte(routineAddr)
	return routineAddr + 1 + uint32(count)*2
}

// AllRoutines walks the call graph reachable from firstInstr (the address
// of the first instruction to execute, e.g. Header.InitialPC for the
// entry routine), returning the first-instruction address of every
// routine a call instruction in the reachable set can reach.
func (s Story) AllRoutines(firstInstr uint32) ([]uint32, error) {
	visited := map[uint32]bool{}
	var order []uint32
	queue := []uint32{firstInstr}

	for len(queue) > 0 {
		routine := queue[0]
		queue = queue[1:]
		if visited[routine] {
			continue
		}
		visited[routine] = true
		order = append(order, routine)

		instrs, err := s.Reachable(routine)
		if err != nil {
			return nil, err
		}
		for addr := range instrs {
			instr, err := s.DecodeInstruction(addr)
			if err != nil {
				return nil, err
			}
			meta := lookupMeta(instr.Count, instr.Opcode)
			if !meta.isCall || len(instr.Operands) == 0 {
				continue
			}
			routineAddr := instr.Operands[0].Value
			if routineAddr == 0 {
				continue
			}
			target := s.RoutineFirstInstruction(uint32(routineAddr))
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	return order, nil
}
