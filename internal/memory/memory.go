// Package memory implements the split dynamic/static address space a story
// file is mapped into (spec §3, §4.1): bytes below the static-memory base
// are writable through a persistent overlay, bytes at or above it are a
// fixed, shared, read-only tail.
//
// Grounded on zcore.Core's ReadZByte/ReadHalfWord/WriteHalfWord
// (_examples/DaveTCode-zmachine-golang/zcore/core.go), reshaped from a
// single mutable []uint8 into the persistent split buffer the core
// requires.
package memory

import "github.com/zm3core/zm3/internal/membuf"

// Memory is an immutable value: every mutating method returns a new
// Memory and leaves its receiver unchanged.
type Memory struct {
	dynamic membuf.Buffer
	dynLen  uint32
	static  []byte
}

// New builds a Memory from the dynamic-memory region (writable, becomes
// the buffer's base) and the static-memory region (shared, read-only).
// Both slices are retained by reference and must not be mutated by the
// caller afterward.
func New(dynamic []byte, static []byte) Memory {
	return Memory{
		dynamic: membuf.New(dynamic),
		dynLen:  uint32(len(dynamic)),
		static:  static,
	}
}

// StaticOffset is the first address that falls in static memory.
func (m Memory) StaticOffset() uint32 {
	return m.dynLen
}

// Length is the total addressable length of the story's memory map.
func (m Memory) Length() uint32 {
	return m.dynLen + uint32(len(m.static))
}

// ReadByte reads one byte from anywhere in the address space. Addresses
// past the end of the file read as zero.
func (m Memory) ReadByte(addr uint32) byte {
	if addr < m.dynLen {
		return m.dynamic.ReadByte(addr)
	}
	off := addr - m.dynLen
	if int(off) < len(m.static) {
		return m.static[off]
	}
	return 0
}

// ReadWord reads a big-endian word at addr.
func (m Memory) ReadWord(addr uint32) uint16 {
	return uint16(m.ReadByte(addr))<<8 | uint16(m.ReadByte(addr+1))
}

// WriteByte writes one byte and returns the resulting Memory. Writing at
// or above StaticOffset is rejected - static memory is never mutable.
func (m Memory) WriteByte(addr uint32, v byte) (Memory, error) {
	if addr >= m.dynLen {
		return m, errWriteToStatic(addr)
	}
	m2 := m
	m2.dynamic = m.dynamic.WriteByte(addr, v)
	return m2, nil
}

// WriteWord writes a big-endian word and returns the resulting Memory.
func (m Memory) WriteWord(addr uint32, v uint16) (Memory, error) {
	m2, err := m.WriteByte(addr, byte(v>>8))
	if err != nil {
		return m, err
	}
	m3, err := m2.WriteByte(addr+1, byte(v))
	if err != nil {
		return m, err
	}
	return m3, nil
}
