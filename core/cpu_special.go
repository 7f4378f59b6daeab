// cpu_special.go - SPECIAL (funct-decoded) and REGIMM (rt-decoded) opcode
// families, §4.E.

package core

func registerSpecialOps() {
	specialTable[0x00] = opSLL
	specialTable[0x02] = opSRL
	specialTable[0x03] = opSRA
	specialTable[0x04] = opSLLV
	specialTable[0x06] = opSRLV
	specialTable[0x07] = opSRAV
	specialTable[0x08] = opJR
	specialTable[0x09] = opJALR
	specialTable[0x0C] = opSYSCALL
	specialTable[0x0D] = opBREAK
	specialTable[0x0F] = opSYNC
	specialTable[0x10] = opMFHI
	specialTable[0x11] = opMTHI
	specialTable[0x12] = opMFLO
	specialTable[0x13] = opMTLO
	specialTable[0x14] = opDSLLV
	specialTable[0x16] = opDSRLV
	specialTable[0x17] = opDSRAV
	specialTable[0x18] = opMULT
	specialTable[0x19] = opMULTU
	specialTable[0x1A] = opDIV
	specialTable[0x1B] = opDIVU
	specialTable[0x1C] = opDMULT
	specialTable[0x1D] = opDMULTU
	specialTable[0x1E] = opDDIV
	specialTable[0x1F] = opDDIVU
	specialTable[0x20] = opADD
	specialTable[0x21] = opADDU
	specialTable[0x22] = opSUB
	specialTable[0x23] = opSUBU
	specialTable[0x24] = opAND
	specialTable[0x25] = opOR
	specialTable[0x26] = opXOR
	specialTable[0x27] = opNOR
	specialTable[0x2A] = opSLT
	specialTable[0x2B] = opSLTU
	specialTable[0x2C] = opDADD
	specialTable[0x2D] = opDADDU
	specialTable[0x2E] = opDSUB
	specialTable[0x2F] = opDSUBU
	specialTable[0x30] = opTGE
	specialTable[0x31] = opTGEU
	specialTable[0x32] = opTLT
	specialTable[0x33] = opTLTU
	specialTable[0x34] = opTEQ
	specialTable[0x36] = opTNE
	specialTable[0x38] = opDSLL
	specialTable[0x3A] = opDSRL
	specialTable[0x3B] = opDSRA
	specialTable[0x3C] = opDSLL32
	specialTable[0x3E] = opDSRL32
	specialTable[0x3F] = opDSRA32
}

func registerRegimmOps() {
	regimmTable[0x00] = opBLTZ
	regimmTable[0x01] = opBGEZ
	regimmTable[0x02] = opBLTZL
	regimmTable[0x03] = opBGEZL
	regimmTable[0x08] = opTGEI
	regimmTable[0x09] = opTGEIU
	regimmTable[0x0A] = opTLTI
	regimmTable[0x0B] = opTLTIU
	regimmTable[0x0C] = opTEQI
	regimmTable[0x0E] = opTNEI
	regimmTable[0x10] = opBLTZAL
	regimmTable[0x11] = opBGEZAL
	regimmTable[0x12] = opBLTZALL
	regimmTable[0x13] = opBGEZALL
}

// ---- Shifts ----

func opSLL(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rd(), uint32(c.GPR.Get(i.Rt()))<<i.Sa())
}

func opSRL(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rd(), uint32(c.GPR.Get(i.Rt()))>>i.Sa())
}

func opSRA(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rd(), uint32(int32(uint32(c.GPR.Get(i.Rt())))>>i.Sa()))
}

func opSLLV(c *CPU, i Instruction) {
	sh := uint(c.GPR.Get(i.Rs())) & 0x1F
	c.GPR.SetSignExtend32(i.Rd(), uint32(c.GPR.Get(i.Rt()))<<sh)
}

func opSRLV(c *CPU, i Instruction) {
	sh := uint(c.GPR.Get(i.Rs())) & 0x1F
	c.GPR.SetSignExtend32(i.Rd(), uint32(c.GPR.Get(i.Rt()))>>sh)
}

func opSRAV(c *CPU, i Instruction) {
	sh := uint(c.GPR.Get(i.Rs())) & 0x1F
	c.GPR.SetSignExtend32(i.Rd(), uint32(int32(uint32(c.GPR.Get(i.Rt())))>>sh))
}

func opDSLLV(c *CPU, i Instruction) {
	sh := uint(c.GPR.Get(i.Rs())) & 0x3F
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rt())<<sh)
}

func opDSRLV(c *CPU, i Instruction) {
	sh := uint(c.GPR.Get(i.Rs())) & 0x3F
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rt())>>sh)
}

func opDSRAV(c *CPU, i Instruction) {
	sh := uint(c.GPR.Get(i.Rs())) & 0x3F
	c.GPR.Set(i.Rd(), uint64(c.GPR.GetS(i.Rt())>>sh))
}

func opDSLL(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rt())<<i.Sa())
}

func opDSRL(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rt())>>i.Sa())
}

func opDSRA(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), uint64(c.GPR.GetS(i.Rt())>>i.Sa()))
}

func opDSLL32(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rt())<<(i.Sa()+32))
}

func opDSRL32(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rt())>>(i.Sa()+32))
}

func opDSRA32(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), uint64(c.GPR.GetS(i.Rt())>>(i.Sa()+32)))
}

// ---- Jumps ----

func opJR(c *CPU, i Instruction) {
	c.takeBranch(c.GPR.Get(i.Rs()))
}

func opJALR(c *CPU, i Instruction) {
	target := c.GPR.Get(i.Rs())
	link := linkAddr(c)
	rd := i.Rd()
	if rd == 0 {
		rd = 31
	}
	c.GPR.Set(rd, link)
	c.takeBranch(target)
}

// ---- HI/LO move ----

func opMFHI(c *CPU, i Instruction) { c.GPR.Set(i.Rd(), c.hi) }
func opMTHI(c *CPU, i Instruction) { c.hi = c.GPR.Get(i.Rs()) }
func opMFLO(c *CPU, i Instruction) { c.GPR.Set(i.Rd(), c.lo) }
func opMTLO(c *CPU, i Instruction) { c.lo = c.GPR.Get(i.Rs()) }

// ---- Multiply/divide ----

func opMULT(c *CPU, i Instruction) {
	a := int64(int32(c.GPR.Get(i.Rs())))
	b := int64(int32(c.GPR.Get(i.Rt())))
	p := a * b
	c.lo = uint64(int64(int32(p)))
	c.hi = uint64(int64(int32(p >> 32)))
}

func opMULTU(c *CPU, i Instruction) {
	a := uint64(uint32(c.GPR.Get(i.Rs())))
	b := uint64(uint32(c.GPR.Get(i.Rt())))
	p := a * b
	c.lo = uint64(int64(int32(uint32(p))))
	c.hi = uint64(int64(int32(uint32(p >> 32))))
}

// DIV/DIVU: division by zero per §4.E — quotient is 1 or -1 (signed,
// matching the numerator's sign) or all-ones (unsigned), and the
// remainder is always the numerator unchanged.
func opDIV(c *CPU, i Instruction) {
	a := int32(c.GPR.Get(i.Rs()))
	b := int32(c.GPR.Get(i.Rt()))
	if b == 0 {
		quotient := int32(-1)
		if a < 0 {
			quotient = 1
		}
		c.lo = uint64(int64(quotient))
		c.hi = uint64(int64(a))
		return
	}
	if a == -0x8000_0000 && b == -1 {
		c.lo = uint64(int64(int32(a)))
		c.hi = 0
		return
	}
	c.lo = uint64(int64(a / b))
	c.hi = uint64(int64(a % b))
}

func opDIVU(c *CPU, i Instruction) {
	a := uint32(c.GPR.Get(i.Rs()))
	b := uint32(c.GPR.Get(i.Rt()))
	if b == 0 {
		c.lo = ^uint64(0)
		c.hi = uint64(int64(int32(a)))
		return
	}
	c.lo = uint64(int64(int32(a / b)))
	c.hi = uint64(int64(int32(a % b)))
}

func opDMULT(c *CPU, i Instruction) {
	a := c.GPR.GetS(i.Rs())
	b := c.GPR.GetS(i.Rt())
	hi, lo := mul128(a, b)
	c.hi, c.lo = hi, lo
}

func opDMULTU(c *CPU, i Instruction) {
	a := c.GPR.Get(i.Rs())
	b := c.GPR.Get(i.Rt())
	hi, lo := mul128u(a, b)
	c.hi, c.lo = hi, lo
}

func opDDIV(c *CPU, i Instruction) {
	a := c.GPR.GetS(i.Rs())
	b := c.GPR.GetS(i.Rt())
	if b == 0 {
		quotient := int64(-1)
		if a < 0 {
			quotient = 1
		}
		c.lo = uint64(quotient)
		c.hi = uint64(a)
		return
	}
	if a == -0x8000_0000_0000_0000 && b == -1 {
		c.lo = uint64(a)
		c.hi = 0
		return
	}
	c.lo = uint64(a / b)
	c.hi = uint64(a % b)
}

func opDDIVU(c *CPU, i Instruction) {
	a := c.GPR.Get(i.Rs())
	b := c.GPR.Get(i.Rt())
	if b == 0 {
		c.lo = ^uint64(0)
		c.hi = a
		return
	}
	c.lo = a / b
	c.hi = a % b
}

func mul128u(a, b uint64) (hi, lo uint64) {
	aLo, aHi := a&0xFFFFFFFF, a>>32
	bLo, bHi := b&0xFFFFFFFF, b>>32

	low := aLo * bLo
	mid1 := aHi * bLo
	mid2 := aLo * bHi
	high := aHi * bHi

	carry := (low>>32 + mid1&0xFFFFFFFF + mid2&0xFFFFFFFF) >> 32
	lo = low + (mid1 << 32) + (mid2 << 32)
	hi = high + (mid1 >> 32) + (mid2 >> 32) + carry
	return hi, lo
}

func mul128(a, b int64) (hi, lo uint64) {
	neg := false
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		ua = uint64(-a)
		neg = !neg
	}
	if b < 0 {
		ub = uint64(-b)
		neg = !neg
	}
	hi, lo = mul128u(ua, ub)
	if neg {
		lo = ^lo
		hi = ^hi
		lo++
		if lo == 0 {
			hi++
		}
	}
	return hi, lo
}

// ---- ALU ----

func opADD(c *CPU, i Instruction) {
	a := int32(c.GPR.Get(i.Rs()))
	b := int32(c.GPR.Get(i.Rt()))
	sum := a + b
	if overflowsAdd32(a, b, sum) {
		c.throwException(c.prevPC, ExcIntegerOverflow, 0)
		return
	}
	c.GPR.SetSignExtend32(i.Rd(), uint32(sum))
}

func opADDU(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rd(), uint32(c.GPR.Get(i.Rs())+c.GPR.Get(i.Rt())))
}

func opSUB(c *CPU, i Instruction) {
	a := int32(c.GPR.Get(i.Rs()))
	b := int32(c.GPR.Get(i.Rt()))
	diff := a - b
	if overflowsSub32(a, b, diff) {
		c.throwException(c.prevPC, ExcIntegerOverflow, 0)
		return
	}
	c.GPR.SetSignExtend32(i.Rd(), uint32(diff))
}

func opSUBU(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rd(), uint32(c.GPR.Get(i.Rs())-c.GPR.Get(i.Rt())))
}

func opAND(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rs())&c.GPR.Get(i.Rt()))
}

func opOR(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rs())|c.GPR.Get(i.Rt()))
}

func opXOR(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rs())^c.GPR.Get(i.Rt()))
}

func opNOR(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), ^(c.GPR.Get(i.Rs()) | c.GPR.Get(i.Rt())))
}

func opSLT(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) < c.GPR.GetS(i.Rt()) {
		c.GPR.Set(i.Rd(), 1)
	} else {
		c.GPR.Set(i.Rd(), 0)
	}
}

func opSLTU(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) < c.GPR.Get(i.Rt()) {
		c.GPR.Set(i.Rd(), 1)
	} else {
		c.GPR.Set(i.Rd(), 0)
	}
}

func opDADD(c *CPU, i Instruction) {
	a := c.GPR.GetS(i.Rs())
	b := c.GPR.GetS(i.Rt())
	sum := a + b
	if overflowsAdd64(a, b, sum) {
		c.throwException(c.prevPC, ExcIntegerOverflow, 0)
		return
	}
	c.GPR.Set(i.Rd(), uint64(sum))
}

func opDADDU(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rs())+c.GPR.Get(i.Rt()))
}

func opDSUB(c *CPU, i Instruction) {
	a := c.GPR.GetS(i.Rs())
	b := c.GPR.GetS(i.Rt())
	diff := a - b
	if overflowsSub64(a, b, diff) {
		c.throwException(c.prevPC, ExcIntegerOverflow, 0)
		return
	}
	c.GPR.Set(i.Rd(), uint64(diff))
}

func opDSUBU(c *CPU, i Instruction) {
	c.GPR.Set(i.Rd(), c.GPR.Get(i.Rs())-c.GPR.Get(i.Rt()))
}

// ---- Traps ----

func opSYSCALL(c *CPU, i Instruction) { c.throwException(c.prevPC, ExcSyscall, 0) }
func opBREAK(c *CPU, i Instruction)   { c.throwException(c.prevPC, ExcBreakpoint, 0) }
func opSYNC(c *CPU, i Instruction)    {}

func opTGE(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) >= c.GPR.GetS(i.Rt()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTGEU(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) >= c.GPR.Get(i.Rt()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTLT(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) < c.GPR.GetS(i.Rt()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTLTU(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) < c.GPR.Get(i.Rt()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTEQ(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) == c.GPR.Get(i.Rt()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTNE(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) != c.GPR.Get(i.Rt()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTGEI(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) >= int64(i.Imm16()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTGEIU(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) >= uint64(int64(i.Imm16())) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTLTI(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) < int64(i.Imm16()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTLTIU(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) < uint64(int64(i.Imm16())) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTEQI(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) == int64(i.Imm16()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

func opTNEI(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) != int64(i.Imm16()) {
		c.throwException(c.prevPC, ExcTrap, 0)
	}
}

// ---- REGIMM branches ----

func opBLTZ(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) < 0 {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBGEZ(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) >= 0 {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBLTZL(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) < 0 {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

func opBGEZL(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) >= 0 {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

func opBLTZAL(c *CPU, i Instruction) {
	link := linkAddr(c)
	c.GPR.Set(31, link)
	if c.GPR.GetS(i.Rs()) < 0 {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBGEZAL(c *CPU, i Instruction) {
	link := linkAddr(c)
	c.GPR.Set(31, link)
	if c.GPR.GetS(i.Rs()) >= 0 {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBLTZALL(c *CPU, i Instruction) {
	link := linkAddr(c)
	c.GPR.Set(31, link)
	if c.GPR.GetS(i.Rs()) < 0 {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

func opBGEZALL(c *CPU, i Instruction) {
	link := linkAddr(c)
	c.GPR.Set(31, link)
	if c.GPR.GetS(i.Rs()) >= 0 {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}
