// Package disasm renders a story file's reachable routines as text,
// using story.Reachable/story.AllRoutines for the address-level walk and
// story.DisplayInstruction for per-line formatting. Grounded on the
// commented opcode switches of zmachine.StepMachine
// (_examples/DaveTCode-zmachine-golang/zmachine/zmachine.go), whose
// "// JZ", "// GET_SIBLING" style comments are exactly the mnemonic
// table story.Mnemonic pulls from.
package disasm

import (
	"sort"

	"github.com/zm3core/zm3/story"
)

// Listing renders every instruction reachable from routineAddr's first
// instruction, one per line, in address order, prefixed with its address.
func Listing(s story.Story, routineAddr uint32) (string, error) {
	first := s.RoutineFirstInstruction(routineAddr)
	reachable, err := s.Reachable(first)
	if err != nil {
		return "", err
	}

	addrs := make([]uint32, 0, len(reachable))
	for addr := range reachable {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var out []byte
	for _, addr := range addrs {
		instr, err := s.DecodeInstruction(addr)
		if err != nil {
			return "", err
		}
		out = append(out, formatAddr(addr)...)
		out = append(out, "  "...)
		out = append(out, s.DisplayInstruction(instr)...)
		out = append(out, '\n')
	}
	return string(out), nil
}

// Program renders the full call graph reachable from the story's initial
// PC: every routine AllRoutines finds, each as its own Listing, separated
// by a blank line and a routine-address header.
func Program(s story.Story) (string, error) {
	routines, err := s.AllRoutines(s.InitialPC())
	if err != nil {
		return "", err
	}

	var out []byte
	for i, r := range routines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, "routine "...)
		out = append(out, formatAddr(r)...)
		out = append(out, ":\n"...)

		// AllRoutines already gives first-instruction addresses; Listing
		// expects a routine header address, so walk from r directly
		// instead of re-deriving RoutineFirstInstruction(r).
		reachable, err := s.Reachable(r)
		if err != nil {
			return "", err
		}
		addrs := make([]uint32, 0, len(reachable))
		for addr := range reachable {
			addrs = append(addrs, addr)
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		for _, addr := range addrs {
			instr, err := s.DecodeInstruction(addr)
			if err != nil {
				return "", err
			}
			out = append(out, "  "...)
			out = append(out, formatAddr(addr)...)
			out = append(out, "  "...)
			out = append(out, s.DisplayInstruction(instr)...)
			out = append(out, '\n')
		}
	}
	return string(out), nil
}

func formatAddr(addr uint32) string {
	const hex = "0123456789abcdef"
	buf := [8]byte{}
	for i := 7; i >= 0; i-- {
		buf[i] = hex[addr&0xf]
		addr >>= 4
	}
	return "0x" + string(buf[:])
}
