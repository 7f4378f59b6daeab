// cpu_alu.go - primary/SPECIAL/REGIMM integer ALU, branch, load/store and
// trap handlers, §4.E.
//
// Convention used throughout: inside a handler, c.prevPC is the address of
// the instruction currently executing (it was captured before pc/nextPC
// were advanced in Tick), c.pc is the address of the delay slot, and
// c.nextPC is the address after the delay slot (i.e. the default "fall
// through" target) until a branch handler overwrites it via takeBranch.

package core

func branchTargetOf(c *CPU, instr Instruction) uint64 {
	return c.prevPC + 4 + uint64(int64(instr.Imm16())*4)
}

func linkAddr(c *CPU) uint64 { return c.nextPC }

func registerPrimaryOps() {
	primaryTable[0x00] = func(c *CPU, i Instruction) { specialTable[i.Funct()](c, i) }
	primaryTable[0x01] = func(c *CPU, i Instruction) { regimmTable[i.Rt()](c, i) }
	primaryTable[0x02] = opJ
	primaryTable[0x03] = opJAL
	primaryTable[0x04] = opBEQ
	primaryTable[0x05] = opBNE
	primaryTable[0x06] = opBLEZ
	primaryTable[0x07] = opBGTZ
	primaryTable[0x08] = opADDI
	primaryTable[0x09] = opADDIU
	primaryTable[0x0A] = opSLTI
	primaryTable[0x0B] = opSLTIU
	primaryTable[0x0C] = opANDI
	primaryTable[0x0D] = opORI
	primaryTable[0x0E] = opXORI
	primaryTable[0x0F] = opLUI
	primaryTable[0x10] = opCOP0
	primaryTable[0x11] = func(c *CPU, i Instruction) { cop1Table[i.Rs()](c, i) }
	primaryTable[0x14] = opBEQL
	primaryTable[0x15] = opBNEL
	primaryTable[0x16] = opBLEZL
	primaryTable[0x17] = opBGTZL
	primaryTable[0x18] = opDADDI
	primaryTable[0x19] = opDADDIU
	primaryTable[0x1A] = opLDL
	primaryTable[0x1B] = opLDR
	primaryTable[0x20] = opLB
	primaryTable[0x21] = opLH
	primaryTable[0x22] = opLWL
	primaryTable[0x23] = opLW
	primaryTable[0x24] = opLBU
	primaryTable[0x25] = opLHU
	primaryTable[0x26] = opLWR
	primaryTable[0x27] = opLWU
	primaryTable[0x28] = opSB
	primaryTable[0x29] = opSH
	primaryTable[0x2A] = opSWL
	primaryTable[0x2B] = opSW
	primaryTable[0x2C] = opSDL
	primaryTable[0x2D] = opSDR
	primaryTable[0x2E] = opSWR
	primaryTable[0x2F] = opCACHE
	primaryTable[0x30] = opLL
	primaryTable[0x31] = opLWC1
	primaryTable[0x34] = opLLD
	primaryTable[0x35] = opLDC1
	primaryTable[0x37] = opLD
	primaryTable[0x38] = opSC
	primaryTable[0x39] = opSWC1
	primaryTable[0x3C] = opSCD
	primaryTable[0x3D] = opSDC1
	primaryTable[0x3F] = opSD
}

// ---- Branches ----

func opJ(c *CPU, i Instruction) {
	target := (c.prevPC &^ 0x0FFF_FFFF) | uint64(i.Target()<<2)
	c.takeBranch(target)
}

func opJAL(c *CPU, i Instruction) {
	c.GPR.Set(31, linkAddr(c))
	target := (c.prevPC &^ 0x0FFF_FFFF) | uint64(i.Target()<<2)
	c.takeBranch(target)
}

func opBEQ(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) == c.GPR.Get(i.Rt()) {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBNE(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) != c.GPR.Get(i.Rt()) {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBLEZ(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) <= 0 {
		c.takeBranch(branchTargetOf(c, i))
	}
}

func opBGTZ(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) > 0 {
		c.takeBranch(branchTargetOf(c, i))
	}
}

// likely branches nullify (skip) the delay slot when not taken, §4.E.
func opBEQL(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) == c.GPR.Get(i.Rt()) {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

func opBNEL(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) != c.GPR.Get(i.Rt()) {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

func opBLEZL(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) <= 0 {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

func opBGTZL(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) > 0 {
		c.takeBranch(branchTargetOf(c, i))
	} else {
		c.nullifyDelaySlot()
	}
}

// ---- Immediate arithmetic/logic ----

func opADDI(c *CPU, i Instruction) {
	a := int32(c.GPR.Get(i.Rs()))
	b := i.Imm16()
	sum := a + b
	if overflowsAdd32(a, b, sum) {
		c.throwException(c.prevPC, ExcIntegerOverflow, 0)
		return
	}
	c.GPR.SetSignExtend32(i.Rt(), uint32(sum))
}

func opADDIU(c *CPU, i Instruction) {
	a := int32(c.GPR.Get(i.Rs()))
	sum := uint32(a + i.Imm16())
	c.GPR.SetSignExtend32(i.Rt(), sum)
}

func opSLTI(c *CPU, i Instruction) {
	if c.GPR.GetS(i.Rs()) < int64(i.Imm16()) {
		c.GPR.Set(i.Rt(), 1)
	} else {
		c.GPR.Set(i.Rt(), 0)
	}
}

func opSLTIU(c *CPU, i Instruction) {
	if c.GPR.Get(i.Rs()) < uint64(int64(i.Imm16())) {
		c.GPR.Set(i.Rt(), 1)
	} else {
		c.GPR.Set(i.Rt(), 0)
	}
}

func opANDI(c *CPU, i Instruction) {
	c.GPR.Set(i.Rt(), c.GPR.Get(i.Rs())&uint64(i.ImmU16()))
}

func opORI(c *CPU, i Instruction) {
	c.GPR.Set(i.Rt(), c.GPR.Get(i.Rs())|uint64(i.ImmU16()))
}

func opXORI(c *CPU, i Instruction) {
	c.GPR.Set(i.Rt(), c.GPR.Get(i.Rs())^uint64(i.ImmU16()))
}

func opLUI(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rt(), uint32(i.ImmU16())<<16)
}

func opDADDI(c *CPU, i Instruction) {
	a := int64(c.GPR.Get(i.Rs()))
	b := int64(i.Imm16())
	sum := a + b
	if overflowsAdd64(a, b, sum) {
		c.throwException(c.prevPC, ExcIntegerOverflow, 0)
		return
	}
	c.GPR.Set(i.Rt(), uint64(sum))
}

func opDADDIU(c *CPU, i Instruction) {
	a := int64(c.GPR.Get(i.Rs()))
	c.GPR.Set(i.Rt(), uint64(a+int64(i.Imm16())))
}

func overflowsAdd32(a, b, sum int32) bool {
	return ((a ^ sum) & (b ^ sum)) < 0
}

func overflowsAdd64(a, b, sum int64) bool {
	return ((a ^ sum) & (b ^ sum)) < 0
}

func overflowsSub32(a, b, diff int32) bool {
	return ((a ^ b) & (a ^ diff)) < 0
}

func overflowsSub64(a, b, diff int64) bool {
	return ((a ^ b) & (a ^ diff)) < 0
}

// ---- COP0 ----

func opCOP0(c *CPU, i Instruction) {
	switch i.Rs() {
	case 0x00: // MFC0
		c.GPR.SetSignExtend32(i.Rt(), c.CP0.Read32(i.Rd()))
	case 0x01: // DMFC0
		c.GPR.Set(i.Rt(), c.CP0.Read64(i.Rd()))
	case 0x04: // MTC0
		c.CP0.Write32(i.Rd(), uint32(c.GPR.Get(i.Rt())))
	case 0x05: // DMTC0
		c.CP0.Write64(i.Rd(), c.GPR.Get(i.Rt()))
	case 0x10, 0x1C: // CO: TLB/ERET/WAIT family, decoded by funct
		dispatchCP0Instruction(c, i)
	default:
		c.throwException(c.prevPC, ExcReservedInstruction, 0)
	}
}

func dispatchCP0Instruction(c *CPU, i Instruction) {
	switch i.Funct() {
	case 0x01: // TLBR
		e := c.TLB.Read(int(c.CP0.Raw(CP0Index)))
		c.loadTLBEntryIntoCP0(e)
	case 0x02: // TLBWI
		c.TLB.Write(int(c.CP0.Raw(CP0Index)), c.tlbEntryFromCP0())
	case 0x06: // TLBWR
		c.TLB.Write(int(c.CP0.Raw(CP0Random)), c.tlbEntryFromCP0())
	case 0x08: // TLBP
		vpn2 := c.CP0.EntryHiVPN2()
		idx := c.TLB.Index(vpn2, c.CP0.EntryHiASID())
		if idx >= 0 {
			c.CP0.SetRaw(CP0Index, uint64(idx))
		} else {
			c.CP0.SetRaw(CP0Index, 1<<31)
		}
	case 0x18: // ERET
		c.eret()
	case 0x11: // WAIT: functional no-op, per SPEC_FULL
	default:
		c.throwException(c.prevPC, ExcReservedInstruction, 0)
	}
}

func (c *CPU) tlbEntryFromCP0() TLBEntry {
	entryLo0 := c.CP0.Raw(CP0EntryLo0)
	entryLo1 := c.CP0.Raw(CP0EntryLo1)
	mask := c.CP0.Raw(CP0PageMask) >> 13
	return TLBEntry{
		VPN2:     c.CP0.EntryHiVPN2(),
		PageMask: mask,
		ASID:     c.CP0.EntryHiASID(),
		Global:   entryLo0&1 != 0 && entryLo1&1 != 0,
		PFN0:     (entryLo0 >> 6) & 0xF_FFFF,
		Cache0:   uint8((entryLo0 >> 3) & 0x7),
		Dirty0:   entryLo0&0x4 != 0,
		Valid0:   entryLo0&0x2 != 0,
		PFN1:     (entryLo1 >> 6) & 0xF_FFFF,
		Cache1:   uint8((entryLo1 >> 3) & 0x7),
		Dirty1:   entryLo1&0x4 != 0,
		Valid1:   entryLo1&0x2 != 0,
	}
}

func (c *CPU) loadTLBEntryIntoCP0(e TLBEntry) {
	c.CP0.SetEntryHiVPN2ASID(e.VPN2, uint64(e.ASID))
	c.CP0.SetRaw(CP0PageMask, e.PageMask<<13)

	global := uint64(0)
	if e.Global {
		global = 1
	}
	entryLo0 := (e.PFN0 << 6) | uint64(e.Cache0)<<3 | b2u64(e.Dirty0)<<2 | b2u64(e.Valid0)<<1 | global
	entryLo1 := (e.PFN1 << 6) | uint64(e.Cache1)<<3 | b2u64(e.Dirty1)<<2 | b2u64(e.Valid1)<<1 | global
	c.CP0.SetRaw(CP0EntryLo0, entryLo0)
	c.CP0.SetRaw(CP0EntryLo1, entryLo1)
}

func b2u64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// ---- Loads ----

func opLB(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadByte(addr); ok {
		c.GPR.Set(i.Rt(), uint64(int64(int8(v))))
	}
}

func opLBU(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadByte(addr); ok {
		c.GPR.Set(i.Rt(), uint64(v))
	}
}

func opLH(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadHalf(addr); ok {
		c.GPR.Set(i.Rt(), uint64(int64(int16(v))))
	}
}

func opLHU(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadHalf(addr); ok {
		c.GPR.Set(i.Rt(), uint64(v))
	}
}

func opLW(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadWord(addr); ok {
		c.GPR.SetSignExtend32(i.Rt(), v)
	}
}

func opLWU(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadWord(addr); ok {
		c.GPR.Set(i.Rt(), uint64(v))
	}
}

func opLD(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if v, ok := c.loadDouble(addr); ok {
		c.GPR.Set(i.Rt(), v)
	}
}

func opLL(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	p, ok := c.translateForAccess(addr, true)
	if !ok {
		return
	}
	c.GPR.SetSignExtend32(i.Rt(), c.bus.ReadWord(p))
	c.llBit = true
	c.llAddr = p
}

func opLLD(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	p, ok := c.translateForAccess(addr, true)
	if !ok {
		return
	}
	c.GPR.Set(i.Rt(), c.bus.ReadDouble(p))
	c.llBit = true
	c.llAddr = p
}

// ---- Stores ----

func opSB(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	c.storeByte(addr, uint8(c.GPR.Get(i.Rt())))
}

func opSH(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	c.storeHalf(addr, uint16(c.GPR.Get(i.Rt())))
}

func opSW(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	c.storeWord(addr, uint32(c.GPR.Get(i.Rt())))
}

func opSD(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	c.storeDouble(addr, c.GPR.Get(i.Rt()))
}

// opSC/opSCD: store succeeds and writes 1 on success, fails (no store) and
// writes 0 otherwise, §4.E.
func opSC(c *CPU, i Instruction) {
	if !c.llBit {
		c.GPR.Set(i.Rt(), 0)
		return
	}
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if c.storeWord(addr, uint32(c.GPR.Get(i.Rt()))) {
		c.GPR.Set(i.Rt(), 1)
	} else {
		c.GPR.Set(i.Rt(), 0)
	}
	c.llBit = false
}

func opSCD(c *CPU, i Instruction) {
	if !c.llBit {
		c.GPR.Set(i.Rt(), 0)
		return
	}
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	if c.storeDouble(addr, c.GPR.Get(i.Rt())) {
		c.GPR.Set(i.Rt(), 1)
	} else {
		c.GPR.Set(i.Rt(), 0)
	}
	c.llBit = false
}

// ---- Unaligned loads/stores: LWL/LWR/LDL/LDR/SWL/SWR/SDL/SDR ----
//
// These merge bytes from the addressed aligned unit with bytes already in
// the destination register according to the low-order address bits, using
// big-endian byte order, per §4.E.

func opLWL(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	word, ok := c.alignedWordAt(addr)
	if !ok {
		return
	}
	shift := (addr & 3) * 8
	mask := uint32(0xFFFFFFFF) >> shift
	merged := (word << shift) | (uint32(c.GPR.Get(i.Rt())) &^ mask)
	c.GPR.SetSignExtend32(i.Rt(), merged)
}

func opLWR(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	word, ok := c.alignedWordAt(addr)
	if !ok {
		return
	}
	shift := (3 - (addr & 3)) * 8
	mask := uint32(0xFFFFFFFF) << shift
	merged := (word >> shift) | (uint32(c.GPR.Get(i.Rt())) &^ mask)
	if addr&3 == 0 {
		c.GPR.SetSignExtend32(i.Rt(), merged)
	} else {
		// LWR never sign-extends unless it completes the word at offset 0
		c.GPR.Set(i.Rt(), (c.GPR.Get(i.Rt()) &^ 0xFFFFFFFF) | uint64(merged))
	}
}

func opSWL(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	word, ok := c.alignedWordAt(addr)
	if !ok {
		return
	}
	shift := (addr & 3) * 8
	mask := uint32(0xFFFFFFFF) >> shift
	merged := (word &^ mask) | (uint32(c.GPR.Get(i.Rt())) >> shift)
	c.storeAlignedWordAt(addr, merged)
}

func opSWR(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	word, ok := c.alignedWordAt(addr)
	if !ok {
		return
	}
	shift := (3 - (addr & 3)) * 8
	mask := uint32(0xFFFFFFFF) << shift
	merged := (word &^ mask) | (uint32(c.GPR.Get(i.Rt())) << shift)
	c.storeAlignedWordAt(addr, merged)
}

func opLDL(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	dw, ok := c.alignedDoubleAt(addr)
	if !ok {
		return
	}
	shift := (addr & 7) * 8
	mask := uint64(0xFFFFFFFFFFFFFFFF) >> shift
	merged := (dw << shift) | (c.GPR.Get(i.Rt()) &^ mask)
	c.GPR.Set(i.Rt(), merged)
}

func opLDR(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	dw, ok := c.alignedDoubleAt(addr)
	if !ok {
		return
	}
	shift := (7 - (addr & 7)) * 8
	mask := uint64(0xFFFFFFFFFFFFFFFF) << shift
	merged := (dw >> shift) | (c.GPR.Get(i.Rt()) &^ mask)
	c.GPR.Set(i.Rt(), merged)
}

func opSDL(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	dw, ok := c.alignedDoubleAt(addr)
	if !ok {
		return
	}
	shift := (addr & 7) * 8
	mask := uint64(0xFFFFFFFFFFFFFFFF) >> shift
	merged := (dw &^ mask) | (c.GPR.Get(i.Rt()) >> shift)
	c.storeAlignedDoubleAt(addr, merged)
}

func opSDR(c *CPU, i Instruction) {
	addr := c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))
	dw, ok := c.alignedDoubleAt(addr)
	if !ok {
		return
	}
	shift := (7 - (addr & 7)) * 8
	mask := uint64(0xFFFFFFFFFFFFFFFF) << shift
	merged := (dw &^ mask) | (c.GPR.Get(i.Rt()) << shift)
	c.storeAlignedDoubleAt(addr, merged)
}

// CACHE/SYNC/PREF are behavioral no-ops, §4.E.
func opCACHE(c *CPU, i Instruction) {}
