package core

import (
	"math"
	"testing"
)

// TestFPAddSingle exercises the fd=Sa()/fs=Rd()/ft=Rt() field mapping
// directly: a regression test for the destination-register bug caught
// during development, where fd and fs were swapped.
func TestFPAddSingle(t *testing.T) {
	c := newTestCPU()
	c.FPR.SetSingle(1, math.Float32bits(1.5))
	c.FPR.SetSingle(2, math.Float32bits(2.25))

	const functADDFmt = 0x00
	// ADD.S fd=4, fs=1, ft=2
	instr := encodeR(opCOP1Op, fmtSingle, 2, 1, 4, functADDFmt)
	loadProgram(c, instr, nop())
	step(c, 1)

	got := math.Float32frombits(c.FPR.GetSingle(4))
	if got != 3.75 {
		t.Fatalf("fd(4)=%v, want 3.75", got)
	}
	if c.FPR.GetSingle(1) != math.Float32bits(1.5) {
		t.Fatalf("fs(1) was overwritten; fd/fs were swapped")
	}
}

func TestFPCompareUnorderedOnNaN(t *testing.T) {
	c := newTestCPU()
	c.FPR.SetSingle(1, math.Float32bits(float32(math.NaN())))
	c.FPR.SetSingle(2, math.Float32bits(1.0))

	const condUN = 0x1
	instr := encodeR(opCOP1Op, fmtSingle, 2, 1, 0, 0x30|condUN)
	loadProgram(c, instr, nop())
	step(c, 1)

	if !c.fcrCond() {
		t.Fatalf("C.UN.S on a NaN operand must set the condition bit")
	}
}

func TestROUNDWRoundsToNearestEven(t *testing.T) {
	c := newTestCPU()
	c.FPR.SetSingle(1, math.Float32bits(2.5))
	const functRoundW = 0x0C
	instr := encodeR(opCOP1Op, fmtSingle, 0, 1, 3, functRoundW)
	loadProgram(c, instr, nop())
	step(c, 1)

	if got := int32(c.FPR.GetSingle(3)); got != 2 {
		t.Fatalf("ROUND.W(2.5)=%d, want 2 (round-to-even)", got)
	}
}

// TestFPAddQuietNaNOperandCanonicalizesResult covers Testable Property #6
// (NaN idempotence): any arithmetic op with a quiet NaN input must return
// the canonical N64 quiet NaN, not whatever bit pattern Go's math package
// happens to produce.
func TestFPAddQuietNaNOperandCanonicalizesResult(t *testing.T) {
	c := newTestCPU()
	const quietNaN32 = 0x7FC0_1234 // quiet (bit 22 set), nonstandard payload
	c.FPR.SetSingle(1, quietNaN32)
	c.FPR.SetSingle(2, math.Float32bits(1.0))

	const functADDFmt = 0x00
	instr := encodeR(opCOP1Op, fmtSingle, 2, 1, 4, functADDFmt)
	loadProgram(c, instr, nop())
	step(c, 1)

	if got := c.FPR.GetSingle(4); got != canonicalQNaN32 {
		t.Fatalf("ADD.S(qNaN, 1.0)=0x%08x, want canonical qNaN 0x%08x", got, canonicalQNaN32)
	}
	if c.FCR31&fcrFlagInvalid != 0 {
		t.Fatalf("a quiet NaN operand must not set Invalid")
	}
}

// TestFPAddSignalingNaNOperandSetsInvalid covers the other half of §4.F: a
// signaling NaN input both canonicalizes the result and sets Invalid.
func TestFPAddSignalingNaNOperandSetsInvalid(t *testing.T) {
	c := newTestCPU()
	const signalingNaN32 = 0x7F80_0001 // exponent all-ones, quiet bit clear
	c.FPR.SetSingle(1, signalingNaN32)
	c.FPR.SetSingle(2, math.Float32bits(1.0))

	const functADDFmt = 0x00
	instr := encodeR(opCOP1Op, fmtSingle, 2, 1, 4, functADDFmt)
	loadProgram(c, instr, nop())
	step(c, 1)

	if got := c.FPR.GetSingle(4); got != canonicalQNaN32 {
		t.Fatalf("ADD.S(sNaN, 1.0)=0x%08x, want canonical qNaN 0x%08x", got, canonicalQNaN32)
	}
	if c.FCR31&fcrFlagInvalid == 0 {
		t.Fatalf("a signaling NaN operand must set Invalid")
	}
}

// TestFPMovPreservesExactNaNBitPattern covers MOV.fmt's exemption from
// arithmetic NaN canonicalization: it is a raw register copy.
func TestFPMovPreservesExactNaNBitPattern(t *testing.T) {
	c := newTestCPU()
	const signalingNaN32 = 0x7F80_0001
	c.FPR.SetSingle(1, signalingNaN32)

	const functMOV = 0x06
	instr := encodeR(opCOP1Op, fmtSingle, 0, 1, 4, functMOV)
	loadProgram(c, instr, nop())
	step(c, 1)

	if got := c.FPR.GetSingle(4); got != signalingNaN32 {
		t.Fatalf("MOV.S(sNaN)=0x%08x, want the exact input bit pattern 0x%08x", got, signalingNaN32)
	}
	if c.FCR31&fcrFlagInvalid != 0 {
		t.Fatalf("MOV.fmt must not raise Invalid on a signaling NaN operand")
	}
}

func TestTRUNCLOfInfinityProducesInvalidSentinel(t *testing.T) {
	c := newTestCPU()
	c.FPR.SetSingle(1, math.Float32bits(float32(math.Inf(1))))
	const functTruncL = 0x09
	instr := encodeR(opCOP1Op, fmtSingle, 0, 1, 3, functTruncL)
	loadProgram(c, instr, nop())
	step(c, 1)

	if got := c.FPR.GetDouble(3); got != 0x7FFF_FFFF_FFFF_FFFF {
		t.Fatalf("TRUNC.L(+Inf)=0x%x, want invalid sentinel", got)
	}
	if c.FCR31&fcrFlagInvalid == 0 {
		t.Fatalf("FCR31 invalid flag not set")
	}
}
