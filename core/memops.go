// memops.go - CPU-side load/store helpers: translation, alignment
// checking, and the unaligned LWL/LWR family of §4.E.

package core

func (c *CPU) translateForAccess(vaddr uint64, isLoad bool) (uint32, bool) {
	paddr, err := c.TranslateVAddr(vaddr)
	if err != noException {
		if err == ExcTLBMissLoad && !isLoad {
			err = ExcTLBMissStore
		}
		c.throwException(c.prevPC, err, 0)
		return 0, false
	}
	return paddr, true
}

func (c *CPU) checkAlign(vaddr uint64, width uint64, isLoad bool) bool {
	if vaddr&(width-1) != 0 {
		c.throwAddressError(vaddr, isLoad)
		return false
	}
	return true
}

func (c *CPU) loadByte(vaddr uint64) (uint8, bool) {
	p, ok := c.translateForAccess(vaddr, true)
	if !ok {
		return 0, false
	}
	return c.bus.ReadByte(p), true
}

func (c *CPU) loadHalf(vaddr uint64) (uint16, bool) {
	if !c.checkAlign(vaddr, 2, true) {
		return 0, false
	}
	p, ok := c.translateForAccess(vaddr, true)
	if !ok {
		return 0, false
	}
	return c.bus.ReadHalf(p), true
}

func (c *CPU) loadWord(vaddr uint64) (uint32, bool) {
	if !c.checkAlign(vaddr, 4, true) {
		return 0, false
	}
	p, ok := c.translateForAccess(vaddr, true)
	if !ok {
		return 0, false
	}
	return c.bus.ReadWord(p), true
}

func (c *CPU) loadDouble(vaddr uint64) (uint64, bool) {
	if !c.checkAlign(vaddr, 8, true) {
		return 0, false
	}
	p, ok := c.translateForAccess(vaddr, true)
	if !ok {
		return 0, false
	}
	return c.bus.ReadDouble(p), true
}

func (c *CPU) storeByte(vaddr uint64, v uint8) bool {
	p, ok := c.translateForAccess(vaddr, false)
	if !ok {
		return false
	}
	c.bus.WriteByte(p, v)
	return true
}

func (c *CPU) storeHalf(vaddr uint64, v uint16) bool {
	if !c.checkAlign(vaddr, 2, false) {
		return false
	}
	p, ok := c.translateForAccess(vaddr, false)
	if !ok {
		return false
	}
	c.bus.WriteHalf(p, v)
	return true
}

func (c *CPU) storeWord(vaddr uint64, v uint32) bool {
	if !c.checkAlign(vaddr, 4, false) {
		return false
	}
	p, ok := c.translateForAccess(vaddr, false)
	if !ok {
		return false
	}
	c.bus.WriteWord(p, v)
	return true
}

func (c *CPU) storeDouble(vaddr uint64, v uint64) bool {
	if !c.checkAlign(vaddr, 8, false) {
		return false
	}
	p, ok := c.translateForAccess(vaddr, false)
	if !ok {
		return false
	}
	c.bus.WriteDouble(p, v)
	return true
}

// alignedWordAt/alignedDoubleAt load the naturally-aligned unit containing
// vaddr, used by the unaligned LWL/LWR/LDL/LDR/SWL/SWR/SDL/SDR family to
// merge bytes in big-endian order (§4.E).
func (c *CPU) alignedWordAt(vaddr uint64) (uint32, bool) {
	p, ok := c.translateForAccess(vaddr&^3, true)
	if !ok {
		return 0, false
	}
	return c.bus.ReadWord(p), true
}

func (c *CPU) alignedDoubleAt(vaddr uint64) (uint64, bool) {
	p, ok := c.translateForAccess(vaddr&^7, true)
	if !ok {
		return 0, false
	}
	return c.bus.ReadDouble(p), true
}

func (c *CPU) storeAlignedWordAt(vaddr uint64, v uint32) bool {
	p, ok := c.translateForAccess(vaddr&^3, false)
	if !ok {
		return false
	}
	c.bus.WriteWord(p, v)
	return true
}

func (c *CPU) storeAlignedDoubleAt(vaddr uint64, v uint64) bool {
	p, ok := c.translateForAccess(vaddr&^7, false)
	if !ok {
		return false
	}
	c.bus.WriteDouble(p, v)
	return true
}
