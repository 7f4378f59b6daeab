// cp0.go - CP0 system control coprocessor: typed register file and bitfield
// accessors over a flat uint64 backing store.
//
// The original hydra-emu/n64 core overlays these registers with C++ bitfield
// unions (CP0StatusType, CP0CauseType, ...). Go has no portable bitfield
// union equivalent, so layout is fixed by explicit accessor methods instead
// of host ABI — see SPEC_FULL.md's "CP0 bitfield layout" section for the
// exact bit assignments this mirrors.

package core

// CP0 register indices, canonical MIPS numbering.
const (
	CP0Index = iota
	CP0Random
	CP0EntryLo0
	CP0EntryLo1
	CP0Context
	CP0PageMask
	CP0Wired
	cp0Reserved7
	CP0BadVAddr
	CP0Count
	CP0EntryHi
	CP0Compare
	CP0Status
	CP0Cause
	CP0EPC
	CP0PRId
	CP0Config
	CP0LLAddr
	CP0WatchLo
	CP0WatchHi
	CP0XContext
	cp0Reserved21
	cp0Reserved22
	cp0Reserved23
	cp0Reserved24
	cp0Reserved25
	CP0ParityError
	CP0CacheError
	CP0TagLo
	CP0TagHi
	CP0ErrorEPC
	cp0Reserved31
)

// ExceptionCode is the value CP0.Cause.ExCode takes on exception entry.
type ExceptionCode uint32

const (
	ExcInterrupt            ExceptionCode = 0
	ExcTLBMissLoad          ExceptionCode = 2
	ExcTLBMissStore         ExceptionCode = 3
	ExcAddressErrorLoad     ExceptionCode = 4
	ExcAddressErrorStore    ExceptionCode = 5
	ExcSyscall              ExceptionCode = 8
	ExcBreakpoint           ExceptionCode = 9
	ExcReservedInstruction  ExceptionCode = 10
	ExcCoprocessorUnusable  ExceptionCode = 11
	ExcIntegerOverflow      ExceptionCode = 12
	ExcTrap                 ExceptionCode = 13
	ExcFloatingPoint        ExceptionCode = 15
)

const (
	vecRefill     = 0x8000_0000
	vecGeneral    = 0x8000_0180
	bootVecOffset = 0xBFC0_0200 - 0x8000_0000
)

// CP0 holds the 32 system-control registers plus the exception-entry state
// machine. Every register is kept as a raw uint64; field access goes
// through the accessor methods below rather than a bitfield overlay.
type CP0 struct {
	regs [32]uint64

	// bootstrapVector mirrors Status.BEV: when set, exception vectors are
	// offset into the boot ROM's uncached segment instead of kseg0.
	bootstrapVector bool

	weirdLatch32 uint32 // cp0_latch: last value read from an undefined register
}

func (c *CP0) Reset() {
	*c = CP0{}
	c.regs[CP0Random] = 31
	c.SetStatusERL(true)
	c.setStatusBit(22, true)
	c.bootstrapVector = true
}

// Read/Write32 and Read/Write64 implement DMFC0/MFC0 and DMTC0/MTC0. Reads
// from the set of registers the VR4300 leaves undefined return the single
// "weirdness" latch (§4.D); writes to that same set update it instead of
// any architectural register.
var undefinedCP0Regs = map[int]bool{
	4: false, 5: false, 6: false, 7: true,
	21: true, 22: true, 23: true, 24: true, 25: true,
	31: true,
}

func (c *CP0) Read32(reg int) uint32 {
	if undefinedCP0Regs[reg] {
		return c.weirdLatch32
	}
	if reg == CP0Random {
		return uint32(c.randomValue())
	}
	return uint32(c.regs[reg])
}

func (c *CP0) Write32(reg int, v uint32) {
	if undefinedCP0Regs[reg] {
		c.weirdLatch32 = v
		return
	}
	c.writeMasked(reg, uint64(v))
}

func (c *CP0) Read64(reg int) uint64 {
	if undefinedCP0Regs[reg] {
		return uint64(c.weirdLatch32)
	}
	if reg == CP0Random {
		return c.randomValue()
	}
	return c.regs[reg]
}

func (c *CP0) Write64(reg int, v uint64) {
	if undefinedCP0Regs[reg] {
		c.weirdLatch32 = uint32(v)
		return
	}
	c.writeMasked(reg, v)
}

// writeMasked applies the per-register write mask so reserved bits never
// stick, and runs side effects (clearing the timer interrupt on a Compare
// write).
func (c *CP0) writeMasked(reg int, v uint64) {
	switch reg {
	case CP0Compare:
		c.regs[reg] = v & 0xFFFF_FFFF
		c.SetCauseIP7(false)
	case CP0Random, CP0PRId:
		// read-only from the CPU's perspective
	case CP0Status:
		c.regs[reg] = v & statusWritableMask
		c.bootstrapVector = v&(1<<22) != 0
	case CP0Cause:
		// only IP0/IP1 (software interrupts) are CPU-writable
		const writable = uint64(0x3 << 8)
		c.regs[reg] = (c.regs[reg] &^ writable) | (v & writable)
	default:
		c.regs[reg] = v
	}
}

const statusWritableMask = 0xFFFF_FFFF

// randomValue implements a monotonic decrement from 31 down to Wired, which
// spec.md §4.D explicitly accepts in place of the hardware LFSR.
func (c *CP0) randomValue() uint64 {
	r := c.regs[CP0Random]
	if r <= c.regs[CP0Wired] {
		r = 31
	} else {
		r--
	}
	c.regs[CP0Random] = r
	return r
}

// ---- Status field accessors ----

func (c *CP0) statusBit(bit uint) bool { return c.regs[CP0Status]&(1<<bit) != 0 }
func (c *CP0) setStatusBit(bit uint, v bool) {
	if v {
		c.regs[CP0Status] |= 1 << bit
	} else {
		c.regs[CP0Status] &^= 1 << bit
	}
}

func (c *CP0) StatusIE() bool       { return c.statusBit(0) }
func (c *CP0) StatusEXL() bool      { return c.statusBit(1) }
func (c *CP0) SetStatusEXL(v bool)  { c.setStatusBit(1, v) }
func (c *CP0) StatusERL() bool      { return c.statusBit(2) }
func (c *CP0) SetStatusERL(v bool)  { c.setStatusBit(2, v) }
func (c *CP0) StatusKSU() uint64    { return (c.regs[CP0Status] >> 3) & 0x3 }
func (c *CP0) StatusUX() bool       { return c.statusBit(5) }
func (c *CP0) StatusSX() bool       { return c.statusBit(6) }
func (c *CP0) StatusKX() bool       { return c.statusBit(7) }
func (c *CP0) StatusIM() uint64     { return (c.regs[CP0Status] >> 8) & 0xFF }
func (c *CP0) StatusFR() bool       { return c.statusBit(26) }
func (c *CP0) StatusBEV() bool      { return c.bootstrapVector }
func (c *CP0) SetStatusBEV(v bool)  { c.bootstrapVector = v }
func (c *CP0) StatusCU1() bool      { return c.statusBit(29) }

// ---- Cause field accessors ----

func (c *CP0) CauseIP() uint64 { return (c.regs[CP0Cause] >> 8) & 0xFF }

func (c *CP0) setCauseIPBit(bit uint, v bool) {
	full := 8 + bit
	if v {
		c.regs[CP0Cause] |= 1 << full
	} else {
		c.regs[CP0Cause] &^= 1 << full
	}
}

func (c *CP0) SetCauseIP2(v bool) { c.setCauseIPBit(2, v) }
func (c *CP0) SetCauseIP7(v bool) { c.setCauseIPBit(7, v) }

func (c *CP0) SetCauseExCode(code ExceptionCode) {
	c.regs[CP0Cause] = (c.regs[CP0Cause] &^ (0x1F << 2)) | (uint64(code) << 2)
}

func (c *CP0) SetCauseCE(coprocessor uint64) {
	c.regs[CP0Cause] = (c.regs[CP0Cause] &^ (0x3 << 28)) | ((coprocessor & 0x3) << 28)
}

func (c *CP0) CauseBD() bool     { return c.regs[CP0Cause]&(1<<31) != 0 }
func (c *CP0) SetCauseBD(v bool) {
	if v {
		c.regs[CP0Cause] |= 1 << 31
	} else {
		c.regs[CP0Cause] &^= 1 << 31
	}
}

// ---- EntryHi / Context / XContext ----

func (c *CP0) EntryHiVPN2() uint64 { return c.regs[CP0EntryHi] >> 13 }
func (c *CP0) EntryHiASID() uint8  { return uint8(c.regs[CP0EntryHi]) }

func (c *CP0) SetEntryHiVPN2ASID(vpn2, asid uint64) {
	c.regs[CP0EntryHi] = (vpn2 << 13) | (asid & 0xFF)
}

func (c *CP0) SetContextBadVPN2(v uint64) {
	c.regs[CP0Context] = (c.regs[CP0Context] &^ (0x7FFFF << 4)) | ((v & 0x7FFFF) << 4)
}

func (c *CP0) SetXContextBadVPN2R(badVPN2, r uint64) {
	c.regs[CP0XContext] = (c.regs[CP0XContext] &^ (0x7FFFFFF<<4 | 0x3<<31)) |
		((badVPN2 & 0x7FFFFFF) << 4) | ((r & 0x3) << 31)
}

// Raw/SetRaw give the CPU direct access to registers with no masking or
// side effects, for fields (Count, BadVAddr, EPC, ErrorEPC) spec.md
// doesn't ask to be write-masked on the CPU-internal paths.
func (c *CP0) Raw(reg int) uint64     { return c.regs[reg] }
func (c *CP0) SetRaw(reg int, v uint64) { c.regs[reg] = v }

// ShouldServiceInterrupt is the cached fast-path predicate of §4.D,
// recomputed on demand (cheap: three register reads and two ANDs) rather
// than invalidated on every CP0/MI write, since the interpreter calls it
// once per fetch anyway.
func (c *CP0) ShouldServiceInterrupt() bool {
	return c.StatusIE() && !c.StatusEXL() && !c.StatusERL() && (c.CauseIP()&c.StatusIM()) != 0
}
