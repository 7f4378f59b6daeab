// regs.go - general-purpose and floating-point register files.
//
// The VR4300's register "aliasing view" (32-bit/64-bit access onto the
// same storage) is just a flat []uint64 plus width-aware accessors in Go;
// there's no bitfield-union trick to port, only the sign-extension
// discipline of §3's invariants.

package core

// GPRFile is the 32-entry general-purpose register file. Register 0 is
// hardwired to zero on every read and silently discards every write.
type GPRFile struct {
	regs [32]uint64
}

func (g *GPRFile) Get(i int) uint64 {
	return g.regs[i&31]
}

func (g *GPRFile) GetS(i int) int64 { return int64(g.Get(i)) }

// Set writes the full 64-bit value. Register 0 ignores the write.
func (g *GPRFile) Set(i int, v uint64) {
	if i == 0 {
		return
	}
	g.regs[i&31] = v
}

// SetSignExtend32 writes a 32-bit result sign-extended to 64 bits, the
// mandatory write-back discipline of §3's first invariant.
func (g *GPRFile) SetSignExtend32(i int, v uint32) {
	g.Set(i, uint64(int64(int32(v))))
}

func (g *GPRFile) Reset() { g.regs = [32]uint64{} }

// FPRFile is the 32-entry floating-point register file. When Status.FR=0,
// odd-numbered registers address the upper half of the preceding even
// register for 32-bit single operations (§4.F); when FR=1 every register
// is an independent 64-bit double. Storage is always 32 independent
// uint64 words; FR=0 aliasing is implemented by the accessor methods, not
// by the storage layout, matching the "layout is a correctness
// requirement, fixed by accessors" design note of §9.
type FPRFile struct {
	regs [32]uint64
	fr   func() bool
}

func NewFPRFile(fr func() bool) *FPRFile { return &FPRFile{fr: fr} }

func (f *FPRFile) GetSingle(i int) uint32 {
	if f.fr() {
		return uint32(f.regs[i&31])
	}
	if i&1 == 0 {
		return uint32(f.regs[i])
	}
	return uint32(f.regs[i&^1] >> 32)
}

func (f *FPRFile) SetSingle(i int, v uint32) {
	if f.fr() {
		f.regs[i&31] = (f.regs[i&31] &^ 0xFFFFFFFF) | uint64(v)
		return
	}
	if i&1 == 0 {
		f.regs[i] = (f.regs[i] &^ 0xFFFFFFFF) | uint64(v)
	} else {
		f.regs[i&^1] = (f.regs[i&^1] & 0xFFFFFFFF) | (uint64(v) << 32)
	}
}

func (f *FPRFile) GetDouble(i int) uint64 {
	if f.fr() {
		return f.regs[i&31]
	}
	return f.regs[i&^1]
}

func (f *FPRFile) SetDouble(i int, v uint64) {
	if f.fr() {
		f.regs[i&31] = v
		return
	}
	f.regs[i&^1] = v
}

func (f *FPRFile) Reset() { f.regs = [32]uint64{} }
