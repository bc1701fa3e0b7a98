package memory

import "github.com/zm3core/zm3/zmerr"

func errWriteToStatic(addr uint32) error {
	return zmerr.At(zmerr.WriteToStaticMemory, addr, "write to static memory is rejected")
}
