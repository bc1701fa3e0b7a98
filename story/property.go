package story

import "github.com/zm3core/zm3/zmerr"

// Property is a read-only view of one decoded property-table entry
// (v3 layout: one size/id header byte, length = top 3 bits + 1, id =
// bottom 5 bits).
//
// Grounded on zobject.Property / GetPropertyByAddress
// (_examples/DaveTCode-zmachine-golang/zobject/property.go); only the
// version<=3 branch of that logic is kept (Non-goal: versions other than
// 3, so the two-byte v4+ property header is dropped entirely).
type Property struct {
	ID       uint8
	Length   uint8
	DataAddr uint32
}

func (s Story) firstPropertyAddr(obj Object) uint32 {
	nameLenWords := s.ReadByte(uint32(obj.PropAddr))
	return uint32(obj.PropAddr) + 1 + uint32(nameLenWords)*2
}

func (s Story) propertyAt(addr uint32) (Property, bool) {
	b := s.ReadByte(addr)
	if b == 0 {
		return Property{}, false
	}
	return Property{
		ID:       b & 0x1f,
		Length:   (b >> 5) + 1,
		DataAddr: addr + 1,
	}, true
}

// DefaultProperty reads the global default value for property id (1..31),
// used when an object's own table has no entry for it.
func (s Story) DefaultProperty(id uint8) (uint16, error) {
	if id < 1 || id > 31 {
		return 0, zmerr.New(zmerr.InvalidDefaultProperty, "default property ids run 1..31")
	}
	addr := uint32(s.Header.ObjectTableBase) + 2*uint32(id-1)
	return s.ReadWord(addr), nil
}

// GetPropertyLen recovers a property's length from the address of its
// data (one past its size byte) - the address get_prop_addr/get_prop
// return, and the one get_prop_len is handed back.
func (s Story) GetPropertyLen(dataAddr uint16) uint16 {
	if dataAddr == 0 {
		return 0
	}
	b := s.ReadByte(uint32(dataAddr) - 1)
	return uint16(b>>5) + 1
}

// GetProperty returns objID's value for propID, falling back to the
// table-wide default if the object has no entry for it. Properties of
// length other than 1 or 2 bytes can't be returned as a single word.
func (s Story) GetProperty(objID uint16, propID uint8) (uint16, error) {
	obj, err := s.Object(objID)
	if err != nil {
		return 0, err
	}
	addr := s.firstPropertyAddr(obj)
	for {
		p, ok := s.propertyAt(addr)
		if !ok {
			break
		}
		if p.ID == propID {
			switch p.Length {
			case 1:
				return uint16(s.ReadByte(p.DataAddr)), nil
			case 2:
				return s.ReadWord(p.DataAddr), nil
			default:
				return 0, zmerr.At(zmerr.InvalidProperty, p.DataAddr, "get_prop on a property longer than 2 bytes")
			}
		}
		if p.ID < propID {
			break // properties are stored in descending id order
		}
		addr = p.DataAddr + uint32(p.Length)
	}
	return s.DefaultProperty(propID)
}

// GetPropertyAddr returns the address of propID's data on objID, or 0 if
// the object has no such property.
func (s Story) GetPropertyAddr(objID uint16, propID uint8) (uint16, error) {
	obj, err := s.Object(objID)
	if err != nil {
		return 0, err
	}
	addr := s.firstPropertyAddr(obj)
	for {
		p, ok := s.propertyAt(addr)
		if !ok {
			return 0, nil
		}
		if p.ID == propID {
			return uint16(p.DataAddr), nil
		}
		if p.ID < propID {
			return 0, nil
		}
		addr = p.DataAddr + uint32(p.Length)
	}
}

// GetNextProperty returns the id of the property following propID on
// objID's table, 0 if propID was the last, or the first property's id
// when propID is 0.
func (s Story) GetNextProperty(objID uint16, propID uint8) (uint8, error) {
	obj, err := s.Object(objID)
	if err != nil {
		return 0, err
	}
	if propID == 0 {
		p, ok := s.propertyAt(s.firstPropertyAddr(obj))
		if !ok {
			return 0, nil
		}
		return p.ID, nil
	}
	addr := s.firstPropertyAddr(obj)
	for {
		p, ok := s.propertyAt(addr)
		if !ok {
			return 0, zmerr.At(zmerr.InvalidProperty, addr, "get_next_prop: property not present on object")
		}
		if p.ID == propID {
			next, ok := s.propertyAt(p.DataAddr + uint32(p.Length))
			if !ok {
				return 0, nil
			}
			return next.ID, nil
		}
		addr = p.DataAddr + uint32(p.Length)
	}
}

// SetProperty writes value into propID's data on objID. The property
// must already exist on the object (put_prop can't create one) and must
// be 1 or 2 bytes wide.
func (s Story) SetProperty(objID uint16, propID uint8, value uint16) (Story, error) {
	obj, err := s.Object(objID)
	if err != nil {
		return s, err
	}
	addr := s.firstPropertyAddr(obj)
	for {
		p, ok := s.propertyAt(addr)
		if !ok {
			return s, zmerr.At(zmerr.InvalidProperty, addr, "put_prop: property not present on object")
		}
		if p.ID == propID {
			switch p.Length {
			case 1:
				return s.WriteByte(p.DataAddr, uint8(value))
			case 2:
				return s.WriteWord(p.DataAddr, value)
			default:
				return s, zmerr.At(zmerr.InvalidProperty, p.DataAddr, "put_prop on a property longer than 2 bytes")
			}
		}
		addr = p.DataAddr + uint32(p.Length)
	}
}
