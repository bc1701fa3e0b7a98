package story

import "github.com/zm3core/zm3/zmerr"

// Object is a read-only snapshot of one object-tree entry (v3 layout: a
// 9-byte entry - 4 bytes of attribute flags, 3 parent/sibling/child bytes,
// a 2-byte property-table pointer). Mutating the tree always goes back
// through a Story method keyed by object ID, since Object itself carries
// no connection back to the Story it was read from.
//
// Grounded on zobject.Object / zobject.GetObject
// (_examples/DaveTCode-zmachine-golang/zobject/object.go) - the v3 branch
// of GetObject's layout math is preserved verbatim; the v4+ 14-byte layout
// the teacher also supports is dropped (Non-goal: versions other than 3).
type Object struct {
	ID         uint16
	BaseAddr   uint32
	Attributes uint32
	Parent     uint16
	Sibling    uint16
	Child      uint16
	PropAddr   uint16
}

func (s Story) objectTreeBase() uint32 {
	return uint32(s.Header.ObjectTableBase) + 31*2
}

// Object reads the entry for object id.
func (s Story) Object(id uint16) (Object, error) {
	if id == 0 {
		return Object{}, zmerr.New(zmerr.BadOperandShape, "object 0 is the null object and has no entry")
	}
	base := s.objectTreeBase() + uint32(id-1)*9
	attrs := uint32(s.ReadWord(base))<<16 | uint32(s.ReadWord(base+2))
	return Object{
		ID:         id,
		BaseAddr:   base,
		Attributes: attrs,
		Parent:     uint16(s.ReadByte(base + 4)),
		Sibling:    uint16(s.ReadByte(base + 5)),
		Child:      uint16(s.ReadByte(base + 6)),
		PropAddr:   s.ReadWord(base + 7),
	}, nil
}

// ObjectCount derives the number of objects in the tree from the address
// gap between the tree base and object 1's property table - there is no
// explicit count field in the v3 header. The result is right only when
// object 1's property table starts immediately after the last object
// entry; any other data placed between them is counted as extra objects.
func (s Story) ObjectCount() (uint32, error) {
	obj1, err := s.Object(1)
	if err != nil {
		return 0, err
	}
	return (uint32(obj1.PropAddr) - s.objectTreeBase()) / 9, nil
}

// TestAttribute reports whether attribute attr (0..31, 0 = top bit of the
// first byte) is set.
func (o Object) TestAttribute(attr uint16) bool {
	if attr > 31 {
		return false
	}
	return o.Attributes&(uint32(1)<<(31-attr)) != 0
}

func (s Story) setAttributeBit(id uint16, attr uint16, set bool) (Story, error) {
	obj, err := s.Object(id)
	if err != nil {
		return s, err
	}
	if attr > 31 {
		return s, zmerr.At(zmerr.BadOperandShape, s.Mem.StaticOffset(), "attribute number out of range 0..31")
	}
	mask := uint32(1) << (31 - attr)
	attrs := obj.Attributes
	if set {
		attrs |= mask
	} else {
		attrs &^= mask
	}
	s2, err := s.WriteWord(obj.BaseAddr, uint16(attrs>>16))
	if err != nil {
		return s, err
	}
	return s2.WriteWord(obj.BaseAddr+2, uint16(attrs))
}

func (s Story) SetAttribute(id uint16, attr uint16) (Story, error) {
	return s.setAttributeBit(id, attr, true)
}

func (s Story) ClearAttribute(id uint16, attr uint16) (Story, error) {
	return s.setAttributeBit(id, attr, false)
}

func (s Story) SetParent(id uint16, parent uint16) (Story, error) {
	obj, err := s.Object(id)
	if err != nil {
		return s, err
	}
	return s.WriteByte(obj.BaseAddr+4, uint8(parent))
}

func (s Story) SetSibling(id uint16, sibling uint16) (Story, error) {
	obj, err := s.Object(id)
	if err != nil {
		return s, err
	}
	return s.WriteByte(obj.BaseAddr+5, uint8(sibling))
}

func (s Story) SetChild(id uint16, child uint16) (Story, error) {
	obj, err := s.Object(id)
	if err != nil {
		return s, err
	}
	return s.WriteByte(obj.BaseAddr+6, uint8(child))
}

// ObjectName decodes the short name stored at the head of the object's
// property table.
func (s Story) ObjectName(id uint16) (string, error) {
	obj, err := s.Object(id)
	if err != nil {
		return "", err
	}
	nameLenWords := s.ReadByte(uint32(obj.PropAddr))
	if nameLenWords == 0 {
		return "", nil
	}
	text, _, err := s.decodeZSCII(uint32(obj.PropAddr)+1, true)
	return text, err
}

// RemoveObject detaches id from its parent's child list, relinking the
// parent's remaining children around it. A no-op if id has no parent.
func (s Story) RemoveObject(id uint16) (Story, error) {
	obj, err := s.Object(id)
	if err != nil {
		return s, err
	}
	if obj.Parent == 0 {
		return s, nil
	}
	parent, err := s.Object(obj.Parent)
	if err != nil {
		return s, err
	}
	s2 := s
	if parent.Child == id {
		s2, err = s2.SetChild(obj.Parent, obj.Sibling)
		if err != nil {
			return s, err
		}
	} else {
		sib := parent.Child
		for sib != 0 {
			sibObj, err := s2.Object(sib)
			if err != nil {
				return s, err
			}
			if sibObj.Sibling == id {
				s2, err = s2.SetSibling(sib, obj.Sibling)
				if err != nil {
					return s, err
				}
				break
			}
			sib = sibObj.Sibling
		}
	}
	s2, err = s2.SetParent(id, 0)
	if err != nil {
		return s, err
	}
	s2, err = s2.SetSibling(id, 0)
	if err != nil {
		return s, err
	}
	return s2, nil
}

// InsertObject detaches id from wherever it currently sits and makes it
// the first child of dest.
func (s Story) InsertObject(id uint16, dest uint16) (Story, error) {
	s2, err := s.RemoveObject(id)
	if err != nil {
		return s, err
	}
	destObj, err := s2.Object(dest)
	if err != nil {
		return s, err
	}
	s2, err = s2.SetSibling(id, destObj.Child)
	if err != nil {
		return s, err
	}
	s2, err = s2.SetChild(dest, id)
	if err != nil {
		return s, err
	}
	return s2.SetParent(id, dest)
}
