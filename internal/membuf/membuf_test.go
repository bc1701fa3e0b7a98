package membuf

import "testing"

func TestReadUnwrittenFallsThroughToBase(t *testing.T) {
	b := New([]byte{1, 2, 3, 4})
	for i, want := range []byte{1, 2, 3, 4} {
		if got := b.ReadByte(uint32(i)); got != want {
			t.Fatalf("ReadByte(%d) = %d, want %d", i, got, want)
		}
	}
	if got := b.ReadByte(100); got != 0 {
		t.Fatalf("ReadByte past base end = %d, want 0", got)
	}
}

func TestWriteReturnsNewValueLeavesOriginalUntouched(t *testing.T) {
	base := []byte{1, 2, 3, 4}
	b1 := New(base)
	b2 := b1.WriteByte(1, 99)

	if got := b1.ReadByte(1); got != 2 {
		t.Fatalf("original buffer mutated: ReadByte(1) = %d, want 2", got)
	}
	if got := b2.ReadByte(1); got != 99 {
		t.Fatalf("new buffer missing edit: ReadByte(1) = %d, want 99", got)
	}
	if base[1] != 2 {
		t.Fatalf("base slice mutated in place")
	}
}

func TestChainedWritesShareUnrelatedEdits(t *testing.T) {
	b := New(make([]byte, 16))
	b = b.WriteByte(0, 10)
	b1 := b.WriteByte(5, 20)
	b2 := b.WriteByte(5, 30)

	if got := b1.ReadByte(0); got != 10 {
		t.Fatalf("b1 lost earlier edit: got %d", got)
	}
	if got := b2.ReadByte(0); got != 10 {
		t.Fatalf("b2 lost earlier edit: got %d", got)
	}
	if got := b1.ReadByte(5); got != 20 {
		t.Fatalf("b1.ReadByte(5) = %d, want 20", got)
	}
	if got := b2.ReadByte(5); got != 30 {
		t.Fatalf("b2.ReadByte(5) = %d, want 30", got)
	}
}

func TestOverwriteSameAddress(t *testing.T) {
	b := New([]byte{0})
	b = b.WriteByte(0, 1)
	b = b.WriteByte(0, 2)
	if got := b.ReadByte(0); got != 2 {
		t.Fatalf("ReadByte(0) = %d, want 2", got)
	}
}
