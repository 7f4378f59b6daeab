package core

import "testing"

// fakeRCP is a minimal RCPCollaborator stub for timing-harness tests: it
// tracks the last word written to VI_INTR/VI_CURRENT and always reports the
// (nonexistent) RSP as halted.
type fakeRCP struct {
	regs map[uint32]uint32
}

func newFakeRCP() *fakeRCP { return &fakeRCP{regs: make(map[uint32]uint32)} }

func (f *fakeRCP) ReadWord(addr uint32) uint32   { return f.regs[addr] }
func (f *fakeRCP) WriteWord(addr uint32, v uint32) { f.regs[addr] = v }
func (f *fakeRCP) StepRSP(cpuCycles int)          {}
func (f *fakeRCP) RSPHalted() bool                { return true }
func (f *fakeRCP) RenderVideo() []byte            { return nil }

func TestRunFrameRaisesVIInterruptAtTargetHalfline(t *testing.T) {
	console := NewConsole()
	rcp := newFakeRCP()
	rcp.regs[addrVIRegStart+viRegIntr] = 100
	console.AttachRCP(rcp)

	console.RunFrame()

	if console.bus.mi.interrupt&(1<<uint(IntVI)) == 0 {
		t.Fatalf("VI interrupt was not raised during the frame it was due in")
	}
}

func TestRunFrameDrivesVCurrentThroughEveryHalfline(t *testing.T) {
	console := NewConsole()
	rcp := newFakeRCP()
	console.AttachRCP(rcp)

	console.RunFrame()

	if got := rcp.regs[addrVIRegStart+viRegCurrent]; got != halflinesPerFrameNTSC-1 {
		t.Fatalf("final VI_CURRENT=%d, want %d", got, halflinesPerFrameNTSC-1)
	}
}

func TestRenderVideoZeroFallbackWithoutRCP(t *testing.T) {
	console := NewConsole()
	buf := console.RenderVideo()
	w, h := console.NativeSize()
	if len(buf) != w*h*4 {
		t.Fatalf("len(buf)=%d, want %d", len(buf), w*h*4)
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected an all-zero fallback buffer with no RCP attached")
		}
	}
}
