package story

// DictEntry is one fixed-length entry in the dictionary table.
//
// Grounded on dictionary.ParseDictionary/DictionaryEntry
// (_examples/DaveTCode-zmachine-golang/dictionary/dictionary.go); the
// version>3 6-byte encoded-word branch is dropped (Non-goal: versions
// other than 3).
type DictEntry struct {
	Addr    uint16
	Encoded [4]byte
}

// Dictionary is the parsed separator list and word table read from the
// story's dictionary header.
type Dictionary struct {
	Separators []byte
	EntryLen   uint8
	Entries    []DictEntry
}

// Dictionary parses the dictionary table. It is pure and reparses from
// Story memory on every call rather than caching, since Story values are
// cheap, persistent, and otherwise have no mutable cache to keep coherent.
func (s Story) Dictionary() (Dictionary, error) {
	base := uint32(s.Header.DictBase)
	n := s.ReadByte(base)
	seps := make([]byte, n)
	for i := uint32(0); i < uint32(n); i++ {
		seps[i] = s.ReadByte(base + 1 + i)
	}

	entryLenAddr := base + 1 + uint32(n)
	entryLen := s.ReadByte(entryLenAddr)
	count := s.ReadWord(entryLenAddr + 1)
	entriesBase := entryLenAddr + 3

	entries := make([]DictEntry, count)
	for i := uint16(0); i < count; i++ {
		addr := entriesBase + uint32(i)*uint32(entryLen)
		var enc [4]byte
		for j := 0; j < 4; j++ {
			enc[j] = s.ReadByte(addr + uint32(j))
		}
		entries[i] = DictEntry{Addr: uint16(addr), Encoded: enc}
	}

	return Dictionary{Separators: seps, EntryLen: entryLen, Entries: entries}, nil
}

// Find returns the dictionary address of the entry matching the given
// encoded word form, or 0 if the word isn't in the dictionary.
func (d Dictionary) Find(encoded [4]byte) uint16 {
	for _, e := range d.Entries {
		if e.Encoded == encoded {
			return e.Addr
		}
	}
	return 0
}

// IsSeparator reports whether b is one of the dictionary's word
// separator characters.
func (d Dictionary) IsSeparator(b byte) bool {
	for _, s := range d.Separators {
		if s == b {
			return true
		}
	}
	return false
}
