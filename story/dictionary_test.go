package story

import (
	"testing"

	"github.com/zm3core/zm3/internal/memory"
)

func dictionaryTestStory(t *testing.T, words []string) Story {
	t.Helper()
	const base = 0x0200
	const entryLen = 7 // 4 bytes encoded text + 3 data bytes, typical v3 shape

	seps := []byte{',', '.'}
	entriesBase := base + 1 + uint32(len(seps)) + 3
	dyn := make([]byte, int(entriesBase)+len(words)*entryLen)

	dyn[base] = byte(len(seps))
	for i, c := range seps {
		dyn[base+1+uint32(i)] = c
	}
	dyn[base+1+uint32(len(seps))] = entryLen
	count := uint16(len(words))
	dyn[base+1+uint32(len(seps))+1] = byte(count >> 8)
	dyn[base+1+uint32(len(seps))+2] = byte(count)

	for i, w := range words {
		enc := EncodeDictWord(w)
		addr := entriesBase + uint32(i)*entryLen
		copy(dyn[addr:addr+4], enc[:])
	}

	return Story{
		Header: Header{Version: 3, DictBase: base},
		Mem:    memory.New(dyn, nil),
	}
}

func TestDictionaryParseAndFind(t *testing.T) {
	s := dictionaryTestStory(t, []string{"cat", "dog", "north"})

	dict, err := s.Dictionary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dict.EntryLen != 7 {
		t.Fatalf("EntryLen = %d, want 7", dict.EntryLen)
	}
	if len(dict.Entries) != 3 {
		t.Fatalf("entry count = %d, want 3", len(dict.Entries))
	}
	if !dict.IsSeparator(',') || !dict.IsSeparator('.') {
		t.Fatalf("expected ',' and '.' to be separators")
	}
	if dict.IsSeparator('x') {
		t.Fatalf("'x' should not be a separator")
	}

	addr := dict.Find(EncodeDictWord("dog"))
	if addr == 0 {
		t.Fatalf("expected to find %q in the dictionary", "dog")
	}
	if addr != dict.Entries[1].Addr {
		t.Fatalf("Find(dog) = %#x, want %#x", addr, dict.Entries[1].Addr)
	}

	if got := dict.Find(EncodeDictWord("xyz")); got != 0 {
		t.Fatalf("Find(xyz) = %#x, want 0 (not present)", got)
	}
}
