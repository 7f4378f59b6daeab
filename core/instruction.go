// instruction.go - MIPS III instruction word field decoding.

package core

type Instruction uint32

func (i Instruction) Op() int     { return int(i>>26) & 0x3F }
func (i Instruction) Rs() int     { return int(i>>21) & 0x1F }
func (i Instruction) Rt() int     { return int(i>>16) & 0x1F }
func (i Instruction) Rd() int     { return int(i>>11) & 0x1F }
func (i Instruction) Sa() uint    { return uint(i>>6) & 0x1F }
func (i Instruction) Funct() int  { return int(i) & 0x3F }
func (i Instruction) ImmU16() uint16 { return uint16(i) }
func (i Instruction) Imm16() int32   { return int32(int16(uint16(i))) }
func (i Instruction) Target() uint32 { return uint32(i) & 0x03FF_FFFF }
