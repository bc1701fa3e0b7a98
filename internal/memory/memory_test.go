package memory

import (
	"testing"

	"github.com/zm3core/zm3/zmerr"
)

func TestReadAcrossSplit(t *testing.T) {
	dyn := []byte{1, 2, 3, 4}
	static := []byte{5, 6, 7, 8}
	m := New(dyn, static)

	if got := m.ReadByte(0); got != 1 {
		t.Fatalf("ReadByte(0) = %d, want 1", got)
	}
	if got := m.ReadByte(4); got != 5 {
		t.Fatalf("ReadByte(4) (first static byte) = %d, want 5", got)
	}
	if got := m.ReadByte(7); got != 8 {
		t.Fatalf("ReadByte(7) = %d, want 8", got)
	}
	if got := m.Length(); got != 8 {
		t.Fatalf("Length() = %d, want 8", got)
	}
}

func TestWriteDynamicIsPersistent(t *testing.T) {
	m := New([]byte{0, 0}, []byte{})
	m2, err := m.WriteByte(0, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.ReadByte(0); got != 0 {
		t.Fatalf("original Memory mutated: ReadByte(0) = %d", got)
	}
	if got := m2.ReadByte(0); got != 42 {
		t.Fatalf("new Memory missing write: ReadByte(0) = %d", got)
	}
}

func TestWriteStaticRejected(t *testing.T) {
	m := New([]byte{0, 0}, []byte{9, 9})
	_, err := m.WriteByte(2, 1)
	if err == nil {
		t.Fatalf("expected error writing to static memory")
	}
	if !zmerr.Is(err, zmerr.WriteToStaticMemory) {
		t.Fatalf("expected WriteToStaticMemory, got %v", err)
	}
}

func TestWriteWordSpansBytes(t *testing.T) {
	m := New([]byte{0, 0, 0, 0}, nil)
	m2, err := m.WriteWord(0, 0x1234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m2.ReadWord(0); got != 0x1234 {
		t.Fatalf("ReadWord(0) = %#x, want 0x1234", got)
	}
	if got := m2.ReadByte(0); got != 0x12 {
		t.Fatalf("high byte = %#x, want 0x12", got)
	}
}
