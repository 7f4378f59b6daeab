package core

import "testing"

func exCode(c *CPU) ExceptionCode {
	return ExceptionCode((c.CP0.Raw(CP0Cause) >> 2) & 0x1F)
}

func TestADDIOverflowTrapsAndLeavesDestUnchanged(t *testing.T) {
	c := newTestCPU()
	c.GPR.Set(1, 0x7FFF_FFFF)
	c.GPR.Set(2, 0x1111_1111) // sentinel: must survive the trap untouched
	loadProgram(c,
		encodeI(opADDIOp, 1, 2, 1), // ADDI r2, r1, #1 -> overflows int32
		nop(),
	)
	step(c, 1)

	if exCode(c) != ExcIntegerOverflow {
		t.Fatalf("ExCode=%d, want ExcIntegerOverflow", exCode(c))
	}
	if c.GPR.Get(2) != 0x1111_1111 {
		t.Fatalf("r2=0x%x, want untouched sentinel", c.GPR.Get(2))
	}
}

func TestADDIUNeverOverflows(t *testing.T) {
	c := newTestCPU()
	c.GPR.Set(1, 0x7FFF_FFFF)
	loadProgram(c, encodeI(opADDIUOp, 1, 2, 1), nop())
	step(c, 1)

	if exCode(c) == ExcIntegerOverflow {
		t.Fatalf("ADDIU must not raise an overflow exception")
	}
	if got := c.GPR.Get(2); got != 0xFFFF_FFFF_8000_0000 {
		t.Fatalf("r2=0x%x, want sign-extended 0x80000000", got)
	}
}

// TestBranchDelaySlotExecutes verifies the delay slot after a taken branch
// still executes exactly once before control reaches the target, per the
// branch-delay-slot invariant in §4.E.
func TestBranchDelaySlotExecutes(t *testing.T) {
	c := newTestCPU()
	loadProgram(c,
		encodeI(opBEQOp, 0, 0, 3), // BEQ r0, r0, +3 (always taken)
		encodeI(opADDIUOp, 0, 3, 7), // delay slot: r3 = 7
		nop(),
		nop(),
		encodeI(opADDIUOp, 0, 4, 9), // branch target: r4 = 9
	)
	step(c, 3)

	if got := c.GPR.Get(3); got != 7 {
		t.Fatalf("delay slot did not execute: r3=%d, want 7", got)
	}
	if got := c.GPR.Get(4); got != 9 {
		t.Fatalf("branch target did not execute: r4=%d, want 9", got)
	}
}

// TestBranchLikelyNullifiesDelaySlot verifies a not-taken *L branch skips
// its delay slot entirely rather than executing it.
func TestBranchLikelyNullifiesDelaySlot(t *testing.T) {
	c := newTestCPU()
	const opBNEL = 0x15
	loadProgram(c,
		encodeI(opBNEL, 0, 0, 2), // BNEL r0, r0: never taken (r0==r0)
		encodeI(opADDIUOp, 0, 3, 7), // would-be delay slot
		nop(),
	)
	step(c, 2)

	if got := c.GPR.Get(3); got != 0 {
		t.Fatalf("nullified delay slot executed: r3=%d, want 0", got)
	}
}

func TestLoadStoreWordRoundTrip(t *testing.T) {
	c := newTestCPU()
	c.GPR.Set(1, testBaseVAddr&^0xFFF+0x100) // scratch RAM address
	c.GPR.Set(2, 0xDEAD_BEEF)
	loadProgram(c,
		encodeI(opSWOp, 1, 2, 0), // SW r2, 0(r1)
		encodeI(opLWOp, 1, 3, 0), // LW r3, 0(r1)
		nop(),
	)
	step(c, 2)

	if got := c.GPR.Get(3); got != 0xFFFF_FFFF_DEAD_BEEF {
		t.Fatalf("round-tripped word=0x%x, want sign-extended 0xDEADBEEF", got)
	}
}

func TestUnalignedLoadWordThrowsAddressError(t *testing.T) {
	c := newTestCPU()
	c.GPR.Set(1, testBaseVAddr&^0xFFF+0x101) // misaligned by 1 byte
	loadProgram(c, encodeI(opLWOp, 1, 2, 0), nop())
	step(c, 1)

	if exCode(c) != ExcAddressErrorLoad {
		t.Fatalf("ExCode=%d, want ExcAddressErrorLoad", exCode(c))
	}
}
