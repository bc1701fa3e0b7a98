// Package story implements the structural view of a loaded Z-machine v3
// story file: its header, memory map, ZSCII decoder, object tree,
// dictionary, and instruction decoder. Every method is pure - mutating
// operations return a new Story rather than editing the receiver.
//
// Grounded on zcore.Core (_examples/DaveTCode-zmachine-golang/zcore/core.go)
// for header layout, reshaped onto the persistent memory.Memory split
// this core requires instead of zcore's single mutable []uint8.
package story

import (
	"encoding/binary"

	"github.com/zm3core/zm3/internal/memory"
	"github.com/zm3core/zm3/zmerr"
)

// Header holds the story-file header fields this core acts on. Only v3
// is supported (Non-goal: other versions), so the many v4+ header fields
// zcore.Core also models (screen dimensions, colour table, and so on) are
// left out - there is nothing in this core that would read them.
type Header struct {
	Version         uint8
	HighMemBase     uint16
	InitialPC       uint16
	DictBase        uint16
	ObjectTableBase uint16
	GlobalVarBase   uint16
	StaticMemBase   uint16
	AbbrBase        uint16
}

// Story is an immutable value wrapping a parsed header and its memory map.
type Story struct {
	Header Header
	Mem    memory.Memory
}

const headerSize = 64

// Load parses a raw story-file image into a Story. The header is read
// directly from raw before the memory map is split, since the split point
// (StaticMemBase) is itself a header field.
func Load(raw []byte) (Story, error) {
	if len(raw) < headerSize {
		return Story{}, zmerr.New(zmerr.InvalidStoryFile, "file shorter than the 64-byte header")
	}
	version := raw[0]
	if version != 3 {
		return Story{}, zmerr.New(zmerr.InvalidStoryFile, "only version 3 story files are supported")
	}
	staticBase := binary.BigEndian.Uint16(raw[0x0e:0x10])
	if int(staticBase) > len(raw) {
		return Story{}, zmerr.New(zmerr.InvalidStoryFile, "static memory base beyond end of file")
	}

	h := Header{
		Version:         version,
		HighMemBase:     binary.BigEndian.Uint16(raw[0x04:0x06]),
		InitialPC:       binary.BigEndian.Uint16(raw[0x06:0x08]),
		DictBase:        binary.BigEndian.Uint16(raw[0x08:0x0a]),
		ObjectTableBase: binary.BigEndian.Uint16(raw[0x0a:0x0c]),
		GlobalVarBase:   binary.BigEndian.Uint16(raw[0x0c:0x0e]),
		StaticMemBase:   staticBase,
		AbbrBase:        binary.BigEndian.Uint16(raw[0x18:0x1a]),
	}

	dyn := append([]byte(nil), raw[:staticBase]...)
	static := append([]byte(nil), raw[staticBase:]...)

	return Story{Header: h, Mem: memory.New(dyn, static)}, nil
}

func (s Story) ReadByte(addr uint32) byte   { return s.Mem.ReadByte(addr) }
func (s Story) ReadWord(addr uint32) uint16 { return s.Mem.ReadWord(addr) }

func (s Story) WriteByte(addr uint32, v byte) (Story, error) {
	m2, err := s.Mem.WriteByte(addr, v)
	if err != nil {
		return s, err
	}
	s2 := s
	s2.Mem = m2
	return s2, nil
}

func (s Story) WriteWord(addr uint32, v uint16) (Story, error) {
	m2, err := s.Mem.WriteWord(addr, v)
	if err != nil {
		return s, err
	}
	s2 := s
	s2.Mem = m2
	return s2, nil
}

// InitialPC is the byte address execution starts at.
func (s Story) InitialPC() uint32 {
	return uint32(s.Header.InitialPC)
}

// ReadGlobal reads global variable n (16..255).
func (s Story) ReadGlobal(n uint8) (uint16, error) {
	if n < 16 {
		return 0, zmerr.New(zmerr.InvalidGlobal, "global numbers start at 16")
	}
	return s.ReadWord(uint32(s.Header.GlobalVarBase) + 2*uint32(n-16)), nil
}

// WriteGlobal writes global variable n (16..255).
func (s Story) WriteGlobal(n uint8, v uint16) (Story, error) {
	if n < 16 {
		return s, zmerr.New(zmerr.InvalidGlobal, "global numbers start at 16")
	}
	return s.WriteWord(uint32(s.Header.GlobalVarBase)+2*uint32(n-16), v)
}
