// cputest_helpers_test.go - shared instruction-encoding and rig helpers for
// the core package's unit tests.
//
// Grounded on the teacher's cpu_6502_test_helpers_test.go rig pattern (a
// small newXxxTestRig() constructor plus a runSingleInstruction helper)
// generalized from a fixed 8-bit opcode table to MIPS III's R/I/J word
// encodings.

package core

const testBaseVAddr uint64 = 0xFFFF_FFFF_8000_1000 // kseg0, maps to physical 0x1000

func newTestCPU() *CPU {
	log := NewLogger()
	sched := NewScheduler()
	bus := NewBus(log, sched)
	return NewCPU(bus, log)
}

// loadProgram writes words into RDRAM starting at the physical address
// testBaseVAddr maps to, and points the CPU at testBaseVAddr ready to
// execute the first word.
func loadProgram(c *CPU, words ...uint32) {
	paddr := uint32(testBaseVAddr & 0x1FFF_FFFF)
	for i, w := range words {
		c.bus.WriteWord(paddr+uint32(i*4), w)
	}
	c.pc = testBaseVAddr
	c.nextPC = c.pc + 4
	c.prevPC = c.pc
}

func step(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func encodeR(op, rs, rt, rd int, sa uint, funct int) uint32 {
	return uint32(op&0x3F)<<26 | uint32(rs&0x1F)<<21 | uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 | uint32(sa&0x1F)<<6 | uint32(funct&0x3F)
}

func encodeI(op, rs, rt int, imm uint16) uint32 {
	return uint32(op&0x3F)<<26 | uint32(rs&0x1F)<<21 | uint32(rt&0x1F)<<16 | uint32(imm)
}

func encodeJ(op int, target uint32) uint32 {
	return uint32(op&0x3F)<<26 | (target & 0x03FF_FFFF)
}

const (
	opSPECIAL = 0x00
	opREGIMM  = 0x01
	opADDIOp  = 0x08
	opADDIUOp = 0x09
	opANDIOp  = 0x0C
	opORIOp   = 0x0D
	opCOP1Op  = 0x11
	opBEQOp   = 0x04
	opBNEOp   = 0x05
	opLWOp    = 0x23
	opSWOp    = 0x2B

	functADD  = 0x20
	functADDU = 0x21
	functDIV  = 0x1A
	functDIVU = 0x1B
	functMFLO = 0x12
	functMFHI = 0x10
	functNOP  = 0x00
)

func nop() uint32 { return encodeR(opSPECIAL, 0, 0, 0, 0, functNOP) }
