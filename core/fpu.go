// fpu.go - COP1 floating point unit: single/double arithmetic, conversions,
// and the sixteen compare predicates of §4.F.
//
// Go has no hardware FCSR to borrow rounding/exception behavior from the
// way the teacher's native interpreters could; this models just the parts
// spec.md calls out explicitly (round-to-nearest via math, NaN
// propagation, the FCR31 condition bit and cause/flag accumulation) and
// leaves finer IEEE trap behavior out of scope, consistent with §7's
// notes on FPU fidelity.

package core

import "math"

const (
	fmtSingle = 0x10
	fmtDouble = 0x11
	fmtWord   = 0x14
	fmtLong   = 0x15
)

// FCR31 condition/cause/enable bit positions.
const (
	fcrCondBit        = 23
	fcrCauseInvalid   = 1 << 17
	fcrCauseDivZero   = 1 << 16
	fcrFlagInvalid    = 1 << 2
	fcrFlagDivZero    = 1 << 1
)

// Canonical N64 quiet NaN bit patterns, §4.F.
const (
	canonicalQNaN32 = 0x7FBF_FFFF
	canonicalQNaN64 = 0x7FF7_FFFF_FFFF_FFFF
)

func isNaN32(bits uint32) bool {
	return bits&0x7F80_0000 == 0x7F80_0000 && bits&0x007F_FFFF != 0
}

func isSignalingNaN32(bits uint32) bool {
	return isNaN32(bits) && bits&0x0040_0000 == 0
}

func isNaN64(bits uint64) bool {
	return bits&0x7FF0_0000_0000_0000 == 0x7FF0_0000_0000_0000 && bits&0x000F_FFFF_FFFF_FFFF != 0
}

func isSignalingNaN64(bits uint64) bool {
	return isNaN64(bits) && bits&0x0008_0000_0000_0000 == 0
}

func registerCOP1Ops() {
	cop1Table[0x00] = opMFC1
	cop1Table[0x01] = opDMFC1
	cop1Table[0x02] = opCFC1
	cop1Table[0x04] = opMTC1
	cop1Table[0x05] = opDMTC1
	cop1Table[0x06] = opCTC1
	cop1Table[0x08] = opBC1
	cop1Table[fmtSingle] = opCOP1Single
	cop1Table[fmtDouble] = opCOP1Double
	cop1Table[fmtWord] = opCOP1FromFixed
	cop1Table[fmtLong] = opCOP1FromFixed
}

func opMFC1(c *CPU, i Instruction) {
	c.GPR.SetSignExtend32(i.Rt(), c.FPR.GetSingle(i.Rd()))
}

func opDMFC1(c *CPU, i Instruction) {
	c.GPR.Set(i.Rt(), c.FPR.GetDouble(i.Rd()))
}

func opMTC1(c *CPU, i Instruction) {
	c.FPR.SetSingle(i.Rd(), uint32(c.GPR.Get(i.Rt())))
}

// LWC1/LDC1/SWC1/SDC1 move a word or doubleword between memory at
// GPR[base]+offset and FPR ft.
func opLWC1(c *CPU, i Instruction) {
	if v, ok := c.loadWord(c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))); ok {
		c.FPR.SetSingle(i.Rt(), v)
	}
}

func opLDC1(c *CPU, i Instruction) {
	if v, ok := c.loadDouble(c.GPR.Get(i.Rs()) + uint64(int64(i.Imm16()))); ok {
		c.FPR.SetDouble(i.Rt(), v)
	}
}

func opSWC1(c *CPU, i Instruction) {
	c.storeWord(c.GPR.Get(i.Rs())+uint64(int64(i.Imm16())), c.FPR.GetSingle(i.Rt()))
}

func opSDC1(c *CPU, i Instruction) {
	c.storeDouble(c.GPR.Get(i.Rs())+uint64(int64(i.Imm16())), c.FPR.GetDouble(i.Rt()))
}

func opDMTC1(c *CPU, i Instruction) {
	c.FPR.SetDouble(i.Rd(), c.GPR.Get(i.Rt()))
}

func opCFC1(c *CPU, i Instruction) {
	if i.Rd() == 31 {
		c.GPR.SetSignExtend32(i.Rt(), c.FCR31)
	} else {
		c.GPR.SetSignExtend32(i.Rt(), 0)
	}
}

func opCTC1(c *CPU, i Instruction) {
	if i.Rd() == 31 {
		c.FCR31 = uint32(c.GPR.Get(i.Rt()))
	}
}

func (c *CPU) fcrCond() bool { return c.FCR31&(1<<fcrCondBit) != 0 }
func (c *CPU) setFcrCond(v bool) {
	if v {
		c.FCR31 |= 1 << fcrCondBit
	} else {
		c.FCR31 &^= 1 << fcrCondBit
	}
}

func opBC1(c *CPU, i Instruction) {
	likely := i.Rt()&0x2 != 0
	wantTrue := i.Rt()&0x1 != 0
	taken := c.fcrCond() == wantTrue
	if taken {
		c.takeBranch(branchTargetOf(c, i))
	} else if likely {
		c.nullifyDelaySlot()
	}
}

// opCOP1Single/opCOP1Double decode the funct field for S/D-format
// instructions (ADD/SUB/MUL/DIV/SQRT/ABS/MOV/NEG/ROUND/TRUNC/CEIL/FLOOR/
// CVT/C.cond).

func opCOP1Single(c *CPU, i Instruction) { dispatchFPArith(c, i, true) }
func opCOP1Double(c *CPU, i Instruction) { dispatchFPArith(c, i, false) }

func dispatchFPArith(c *CPU, i Instruction, single bool) {
	funct := i.Funct()
	if funct >= 0x30 {
		fpCompare(c, i, single, funct&0xF, funct&0x8 != 0)
		return
	}

	fd, fs, ft := int(i.Sa()), i.Rd(), i.Rt()

	readOperand := func(reg int) float64 {
		if single {
			return float64(math.Float32frombits(c.FPR.GetSingle(reg)))
		}
		return math.Float64frombits(c.FPR.GetDouble(reg))
	}
	// writeResult canonicalizes any NaN result to the N64's canonical quiet
	// NaN rather than writing through whatever bit pattern Go's math
	// package happened to produce, per §4.F.
	writeResult := func(reg int, v float64) {
		if math.IsNaN(v) {
			if single {
				c.FPR.SetSingle(reg, canonicalQNaN32)
			} else {
				c.FPR.SetDouble(reg, canonicalQNaN64)
			}
			return
		}
		if single {
			c.FPR.SetSingle(reg, math.Float32bits(float32(v)))
		} else {
			c.FPR.SetDouble(reg, math.Float64bits(v))
		}
	}
	// checkOperandNaN sets Invalid when reg holds a signaling NaN; a
	// signaling NaN operand must raise Invalid even when the result (after
	// writeResult's canonicalization) looks no different from a quiet-NaN
	// propagation would.
	checkOperandNaN := func(reg int) {
		if single {
			if isSignalingNaN32(c.FPR.GetSingle(reg)) {
				c.FCR31 |= fcrCauseInvalid | fcrFlagInvalid
			}
		} else {
			if isSignalingNaN64(c.FPR.GetDouble(reg)) {
				c.FCR31 |= fcrCauseInvalid | fcrFlagInvalid
			}
		}
	}

	switch funct {
	case 0x00: // ADD
		checkOperandNaN(fs)
		checkOperandNaN(ft)
		writeResult(fd, readOperand(fs)+readOperand(ft))
	case 0x01: // SUB
		checkOperandNaN(fs)
		checkOperandNaN(ft)
		writeResult(fd, readOperand(fs)-readOperand(ft))
	case 0x02: // MUL
		checkOperandNaN(fs)
		checkOperandNaN(ft)
		writeResult(fd, readOperand(fs)*readOperand(ft))
	case 0x03: // DIV
		checkOperandNaN(fs)
		checkOperandNaN(ft)
		b := readOperand(ft)
		if b == 0 {
			c.FCR31 |= fcrCauseDivZero | fcrFlagDivZero
		}
		writeResult(fd, readOperand(fs)/b)
	case 0x04: // SQRT
		checkOperandNaN(fs)
		writeResult(fd, math.Sqrt(readOperand(fs)))
	case 0x05: // ABS
		checkOperandNaN(fs)
		writeResult(fd, math.Abs(readOperand(fs)))
	case 0x06: // MOV
		// MOV.fmt is a raw register copy, not an arithmetic op: it must
		// preserve a NaN's exact bit pattern (signaling or quiet) rather
		// than canonicalizing it the way ADD/SUB/MUL/DIV/SQRT/ABS/NEG do.
		if single {
			c.FPR.SetSingle(fd, c.FPR.GetSingle(fs))
		} else {
			c.FPR.SetDouble(fd, c.FPR.GetDouble(fs))
		}
	case 0x07: // NEG
		checkOperandNaN(fs)
		writeResult(fd, -readOperand(fs))
	case 0x08: // ROUND.L
		c.cvtToFixed(fd, math.RoundToEven(readOperand(fs)), true)
	case 0x09: // TRUNC.L
		c.cvtToFixed(fd, math.Trunc(readOperand(fs)), true)
	case 0x0A: // CEIL.L
		c.cvtToFixed(fd, math.Ceil(readOperand(fs)), true)
	case 0x0B: // FLOOR.L
		c.cvtToFixed(fd, math.Floor(readOperand(fs)), true)
	case 0x0C: // ROUND.W
		c.cvtToFixed(fd, math.RoundToEven(readOperand(fs)), false)
	case 0x0D: // TRUNC.W
		c.cvtToFixed(fd, math.Trunc(readOperand(fs)), false)
	case 0x0E: // CEIL.W
		c.cvtToFixed(fd, math.Ceil(readOperand(fs)), false)
	case 0x0F: // FLOOR.W
		c.cvtToFixed(fd, math.Floor(readOperand(fs)), false)
	case 0x20: // CVT.S
		writeResult32(c, fd, float32(readOperand(fs)))
	case 0x21: // CVT.D
		writeResult64(c, fd, readOperand(fs))
	default:
		c.throwException(c.prevPC, ExcReservedInstruction, 1)
	}
}

func writeResult32(c *CPU, reg int, v float32) { c.FPR.SetSingle(reg, math.Float32bits(v)) }
func writeResult64(c *CPU, reg int, v float64) { c.FPR.SetDouble(reg, math.Float64bits(v)) }

// opCOP1FromFixed decodes CVT.S/CVT.D out of the W/L fixed-point formats.
func opCOP1FromFixed(c *CPU, i Instruction) {
	fd, fs := int(i.Sa()), i.Rd()
	fromLong := i.Rs() == fmtLong
	var v float64
	if fromLong {
		v = float64(int64(c.FPR.GetDouble(fs)))
	} else {
		v = float64(int32(c.FPR.GetSingle(fs)))
	}
	switch i.Funct() {
	case 0x20: // CVT.S
		writeResult32(c, fd, float32(v))
	case 0x21: // CVT.D
		writeResult64(c, fd, v)
	default:
		c.throwException(c.prevPC, ExcReservedInstruction, 1)
	}
}

// cvtToFixed implements the ROUND/TRUNC/CEIL/FLOOR family: an out-of-range
// or NaN source produces the architectural "invalid" sentinel rather than
// a Go-side panic, per §4.F.
func (c *CPU) cvtToFixed(reg int, rounded float64, toLong bool) {
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		c.FCR31 |= fcrCauseInvalid | fcrFlagInvalid
		if toLong {
			c.FPR.SetDouble(reg, 0x7FFF_FFFF_FFFF_FFFF)
		} else {
			c.FPR.SetSingle(reg, 0x7FFF_FFFF)
		}
		return
	}
	if toLong {
		c.FPR.SetDouble(reg, uint64(int64(rounded)))
	} else {
		c.FPR.SetSingle(reg, uint32(int32(rounded)))
	}
}

// fpCompare implements the sixteen C.cond predicates: bit3 selects the
// signaling (QNaN-raises-invalid) variant, the low 3 bits select the
// relation (unordered/eq/lt/le combinations), per §4.F.
func fpCompare(c *CPU, i Instruction, single bool, cond int, signaling bool) {
	var a, b float64
	if single {
		a = float64(math.Float32frombits(c.FPR.GetSingle(i.Rd())))
		b = float64(math.Float32frombits(c.FPR.GetSingle(i.Rt())))
	} else {
		a = math.Float64frombits(c.FPR.GetDouble(i.Rd()))
		b = math.Float64frombits(c.FPR.GetDouble(i.Rt()))
	}

	unordered := math.IsNaN(a) || math.IsNaN(b)
	if unordered && signaling {
		c.FCR31 |= fcrCauseInvalid | fcrFlagInvalid
	}

	var result bool
	if unordered {
		result = cond&0x1 != 0 // every predicate with the "unordered passes" bit set
	} else {
		lt := a < b
		eq := a == b
		switch cond & 0x7 {
		case 0: // F / SF
			result = false
		case 1: // UN / NGLE -> handled via unordered branch above when NaN
			result = false
		case 2: // EQ / SEQ
			result = eq
		case 3: // UEQ / NGL
			result = eq
		case 4: // OLT / LT
			result = lt
		case 5: // ULT / NGE
			result = lt
		case 6: // OLE / LE
			result = lt || eq
		case 7: // ULE / NGT
			result = lt || eq
		}
	}
	c.setFcrCond(result)
}
