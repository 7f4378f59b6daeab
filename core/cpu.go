// cpu.go - the VR4300-class integer/branch unit, dispatcher core, and
// exception/translation plumbing. Adapted from the teacher's CPU64
// (cpu_ie64.go: register file layout, atomic run-state flags, Execute-loop
// shape) generalized to MIPS III semantics, branch-delay slots, and the
// CP0/TLB machinery spec.md §4 specifies.

package core

const cycleClockMask = (1 << 33) - 1 // 33-bit saturating counter, §3

// OperatingMode is the CPU's current privilege level.
type OperatingMode int

const (
	ModeKernel OperatingMode = iota
	ModeSupervisor
	ModeUser
)

// CPU is the MIPS III interpreter: integer ALU, branch unit, CP0,
// TLB, and FPU, wired together through the dispatch tables in
// dispatch.go.
type CPU struct {
	GPR GPRFile
	FPR *FPRFile
	CP0 CP0
	TLB TLB
	FCR31 uint32

	bus *Bus
	log *Logger

	pc, nextPC, prevPC uint64
	hi, lo             uint64

	llBit   bool
	llAddr  uint32
	cp2Latch uint64

	wasBranch  bool
	prevBranch bool

	mode64 bool
	opMode OperatingMode

	cycleClock uint64

	halted bool
}

func NewCPU(bus *Bus, log *Logger) *CPU {
	c := &CPU{bus: bus, log: log}
	c.FPR = NewFPRFile(c.statusFR)
	bus.AttachCP0(&c.CP0)
	bus.SetLLInvalidate(c.InvalidateLL)
	c.Reset()
	return c
}

func (c *CPU) statusFR() bool { return c.CP0.StatusFR() }

// Reset reinitializes CPU state per §3's Lifecycle: pc=0xBFC00000,
// Status.ERL=1, Random=31, TLB cleared.
func (c *CPU) Reset() {
	c.GPR.Reset()
	c.FPR.Reset()
	c.CP0.Reset()
	c.TLB.Reset()
	c.FCR31 = 0

	c.pc = 0xFFFF_FFFF_BFC0_0000
	c.nextPC = c.pc + 4
	c.prevPC = c.pc

	c.hi, c.lo = 0, 0
	c.llBit = false
	c.llAddr = 0
	c.cp2Latch = 0
	c.wasBranch = false
	c.prevBranch = false
	c.mode64 = false
	c.opMode = ModeKernel
	c.cycleClock = 0
	c.halted = false
}

func (c *CPU) PC() uint64 { return c.pc }

func (c *CPU) InvalidateLL() { c.llBit = false }

// Tick executes exactly one instruction: service a pending interrupt if
// one is due, otherwise fetch/decode/dispatch, per §4.G's five steps.
func (c *CPU) Tick() {
	if c.CP0.ShouldServiceInterrupt() {
		c.throwException(c.pc, ExcInterrupt, 0)
		c.advanceClock()
		return
	}

	paddr, ok := c.translateForFetch(c.pc)
	if !ok {
		c.advanceClock()
		return
	}
	word := c.bus.ReadWord(paddr)
	instr := Instruction(word)

	c.prevPC = c.pc
	c.pc = c.nextPC
	c.nextPC += 4

	c.prevBranch = c.wasBranch
	c.wasBranch = false

	c.GPR.Set(0, 0)

	dispatchPrimary(c, instr)

	c.advanceClock()
}

func (c *CPU) advanceClock() {
	c.cycleClock = (c.cycleClock + 1) & cycleClockMask
	count := uint32(c.cycleClock >> 1)
	c.CP0.SetRaw(CP0Count, uint64(count))
	if count == uint32(c.CP0.Raw(CP0Compare)) {
		c.CP0.SetCauseIP7(true)
	}
}

// translateForFetch resolves pc (already 64-bit sign-extended by the
// branch unit) to a physical address for instruction fetch, raising an
// address-error or TLB exception and returning ok=false if translation
// fails (Tick then skips dispatch this cycle, the exception vector having
// already redirected pc).
func (c *CPU) translateForFetch(vaddr uint64) (uint32, bool) {
	paddr, err := c.TranslateVAddr(vaddr)
	if err != noException {
		c.throwException(vaddr, err, 0)
		return 0, false
	}
	return paddr, true
}

// noException is the sentinel "translation succeeded" value threaded
// through TranslateVAddr so callers can both get a physical address and
// detect which exception (if any) to raise, without a second return path.
const noException ExceptionCode = 0xFFFF_FFFF

// TranslateVAddr implements §4.B's kernel-mode segment classification
// (useg/kseg0/kseg1/kseg2) plus TLB probing, and the warn-and-continue
// fallback for non-kernel modes the Open Questions section of spec.md §9
// calls for instead of treating it as fatal.
func (c *CPU) TranslateVAddr(vaddr uint64) (uint32, ExceptionCode) {
	v32 := uint32(vaddr)

	switch {
	case v32 >= 0x8000_0000 && v32 <= 0x9FFF_FFFF:
		// kseg0: cached direct-mapped
		return v32 & 0x1FFF_FFFF, noException
	case v32 >= 0xA000_0000 && v32 <= 0xBFFF_FFFF:
		// kseg1: uncached direct-mapped
		return v32 & 0x1FFF_FFFF, noException
	case v32 <= 0x7FFF_FFFF:
		// useg/suseg/kuseg: TLB-mapped, available to all modes
		return c.probeTLBOrMiss(vaddr)
	case v32 >= 0xC000_0000:
		// ksseg/kseg3: TLB-mapped, kernel (and supervisor for ksseg) only
		if c.opMode == ModeUser {
			c.throwAddressError(vaddr, true)
			return 0, ExcAddressErrorLoad
		}
		return c.probeTLBOrMiss(vaddr)
	default:
		return 0, noException
	}
}

func (c *CPU) probeTLBOrMiss(vaddr uint64) (uint32, ExceptionCode) {
	res, ok := c.TLB.Probe(vaddr, c.CP0.EntryHiASID())
	if !ok {
		c.setTLBMissState(vaddr)
		return 0, ExcTLBMissLoad
	}
	return res.Paddr, noException
}

func (c *CPU) setTLBMissState(vaddr uint64) {
	c.CP0.SetRaw(CP0BadVAddr, vaddr)
	vpn2 := vaddr >> 13
	c.CP0.SetContextBadVPN2(vpn2)
	c.CP0.SetXContextBadVPN2R(vpn2, (vaddr>>62)&0x3)
	c.CP0.SetEntryHiVPN2ASID(vpn2, uint64(c.CP0.EntryHiASID()))
}

func (c *CPU) throwAddressError(vaddr uint64, isLoad bool) {
	c.CP0.SetRaw(CP0BadVAddr, vaddr)
	code := ExcAddressErrorStore
	if isLoad {
		code = ExcAddressErrorLoad
	}
	c.throwException(c.pc, code, 0)
}

// throwException implements §4.D's entry sequence exactly.
func (c *CPU) throwException(faultPC uint64, code ExceptionCode, coprocessor uint64) {
	bd := c.prevBranch
	c.CP0.SetCauseExCode(code)
	c.CP0.SetCauseCE(coprocessor)
	c.CP0.SetCauseBD(bd)

	epc := faultPC
	if bd {
		epc -= 4
	}

	var vector uint64
	if !c.CP0.StatusEXL() {
		c.CP0.SetRaw(CP0EPC, epc)
		if code == ExcTLBMissLoad || code == ExcTLBMissStore {
			vector = vecRefill
		} else {
			vector = vecGeneral
		}
	} else {
		c.CP0.SetRaw(CP0EPC, epc)
		vector = vecGeneral
	}
	c.CP0.SetStatusEXL(true)

	if c.CP0.StatusBEV() {
		vector += bootVecOffset
	}

	c.pc = vector
	c.nextPC = c.pc + 4
	c.wasBranch = false
}

// ERET clears EXL (or ERL if set), restores pc, and clears LLbit, per §4.D.
func (c *CPU) eret() {
	if c.CP0.StatusERL() {
		c.pc = c.CP0.Raw(CP0ErrorEPC)
		c.CP0.SetStatusERL(false)
	} else {
		c.pc = c.CP0.Raw(CP0EPC)
		c.CP0.SetStatusEXL(false)
	}
	c.nextPC = c.pc + 4
	c.llBit = false
	c.wasBranch = false
}

// takeBranch implements the delay-slot mechanics of §4.E: the branch never
// changes pc directly, only next_pc, and marks was_branch.
func (c *CPU) takeBranch(target uint64) {
	c.nextPC = target
	c.wasBranch = true
}

// nullifyDelaySlot implements the "likely" branch-not-taken case: skip the
// delay slot entirely rather than executing it. At the point this runs,
// c.pc already holds the delay slot's address (Tick's fetch/advance having
// already run ahead of dispatch) and c.nextPC is already c.pc+4 by the
// same unconditional advance — so nullifying has to move c.pc itself past
// the delay slot, not just nextPC, or the next Tick would fetch and
// execute it anyway.
func (c *CPU) nullifyDelaySlot() {
	c.pc = c.nextPC
	c.nextPC = c.pc + 4
}
