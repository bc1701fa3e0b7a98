// Package membuf implements the persistent byte buffer the rest of the core
// is built on: an immutable base slice plus a persistent trie of edits, so
// that writing a byte produces a new Buffer value in O(depth) while sharing
// every node untouched by the write with the buffer it came from.
//
// This has no direct analogue in the teacher repo - zcore.Core holds a
// single mutable []uint8 and zmachine/savestates.go instead deep-copies
// that slice wholesale to snapshot it for undo. membuf generalizes the
// same idea (keep the unmodified bytes around, capture only what changed)
// into something that shares structure continuously rather than copying at
// checkpoints.
package membuf

// addrBits is the number of trie levels walked per access; 32 keeps the
// trie correct for any uint32 address without needing to know the
// buffer's length up front.
const addrBits = 32

type trieNode struct {
	children [2]*trieNode
	has      bool
	value    byte
}

func trieGet(n *trieNode, addr uint32, depth int) (byte, bool) {
	if n == nil {
		return 0, false
	}
	if depth == addrBits {
		return n.value, n.has
	}
	bit := (addr >> uint(addrBits-1-depth)) & 1
	return trieGet(n.children[bit], addr, depth+1)
}

func trieSet(n *trieNode, addr uint32, v byte, depth int) *trieNode {
	nn := new(trieNode)
	if n != nil {
		*nn = *n
	}
	if depth == addrBits {
		nn.has = true
		nn.value = v
		return nn
	}
	bit := (addr >> uint(addrBits-1-depth)) & 1
	var child *trieNode
	if n != nil {
		child = n.children[bit]
	}
	nn.children[bit] = trieSet(child, addr, v, depth+1)
	return nn
}

// Buffer is an immutable byte buffer: a fixed base plus a persistent
// overlay of edits. The zero Buffer reads as all zeroes.
type Buffer struct {
	base  []byte
	edits *trieNode
}

// New wraps base as a Buffer's initial content. base is never mutated by
// any Buffer operation and may be shared freely by the caller.
func New(base []byte) Buffer {
	return Buffer{base: base}
}

// Len reports the length of the base slice the buffer was built from.
func (b Buffer) Len() int {
	return len(b.base)
}

// ReadByte returns the byte at addr: the most recent edit if one exists,
// otherwise the base content (zero past the end of base).
func (b Buffer) ReadByte(addr uint32) byte {
	if v, ok := trieGet(b.edits, addr, 0); ok {
		return v
	}
	if int(addr) < len(b.base) {
		return b.base[addr]
	}
	return 0
}

// WriteByte returns a new Buffer with addr set to v. b itself is left
// unchanged and remains valid to read.
func (b Buffer) WriteByte(addr uint32, v byte) Buffer {
	return Buffer{base: b.base, edits: trieSet(b.edits, addr, v, 0)}
}
