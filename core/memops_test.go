package core

import "testing"

func TestByteHalfDoubleRoundTrip(t *testing.T) {
	c := newTestCPU()
	base := testBaseVAddr&^0xFFF + 0x200

	if ok := c.storeByte(base, 0xAB); !ok {
		t.Fatalf("storeByte failed")
	}
	if v, ok := c.loadByte(base); !ok || v != 0xAB {
		t.Fatalf("loadByte=0x%x,ok=%v, want 0xAB,true", v, ok)
	}

	if ok := c.storeHalf(base+8, 0xBEEF); !ok {
		t.Fatalf("storeHalf failed")
	}
	if v, ok := c.loadHalf(base + 8); !ok || v != 0xBEEF {
		t.Fatalf("loadHalf=0x%x,ok=%v, want 0xBEEF,true", v, ok)
	}

	if ok := c.storeDouble(base+16, 0x0123_4567_89AB_CDEF); !ok {
		t.Fatalf("storeDouble failed")
	}
	if v, ok := c.loadDouble(base + 16); !ok || v != 0x0123_4567_89AB_CDEF {
		t.Fatalf("loadDouble=0x%x,ok=%v, want 0x0123456789ABCDEF,true", v, ok)
	}
}

func TestUnalignedHalfThrowsAddressError(t *testing.T) {
	c := newTestCPU()
	base := testBaseVAddr&^0xFFF + 0x301 // odd address
	if _, ok := c.loadHalf(base); ok {
		t.Fatalf("loadHalf at an odd address must fail alignment")
	}
}

// TestLWLAtAlignedAddressActsAsFullWordLoad covers the degenerate case of
// §4.E's unaligned-load family: at a word-aligned address, LWL's "merge
// from the left" degenerates to loading the entire word, since there is
// nothing left to preserve from the destination register.
func TestLWLAtAlignedAddressActsAsFullWordLoad(t *testing.T) {
	c := newTestCPU()
	base := uint64(testBaseVAddr&^0xFFF + 0x400)
	c.storeWord(base, 0x11223344)

	c.GPR.Set(1, base)
	c.GPR.Set(2, 0xFFFF_FFFF) // sentinel: LWL at offset 0 must fully replace it
	loadProgram(c, encodeI(0x22 /* LWL */, 1, 2, 0), nop())
	step(c, 1)

	if got := c.GPR.Get(2); uint32(got) != 0x11223344 {
		t.Fatalf("LWL(aligned)=0x%08x, want 0x11223344", uint32(got))
	}
}
