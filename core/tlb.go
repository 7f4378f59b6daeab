// tlb.go - 32-entry variable-page-size virtual->physical translator

package core

const tlbEntryCount = 32

// TLBEntry is one of the 32 hardware-maintained entries. PageMask selects
// the offset mask per §4.B: offsetMask = (mask<<12)|0xFFF.
type TLBEntry struct {
	VPN2     uint64
	PageMask uint64
	ASID     uint8
	Global   bool

	// EntryLo0/1: even/odd halves.
	PFN0, PFN1     uint64
	Cache0, Cache1 uint8
	Dirty0, Dirty1 bool
	Valid0, Valid1 bool
}

func (e *TLBEntry) offsetMask() uint64 { return (e.PageMask << 12) | 0xFFF }

// TLB is the 32-entry table plus the probe/refill logic CP0's
// TLBP/TLBR/TLBWI/TLBWR instructions drive.
type TLB struct {
	entries [tlbEntryCount]TLBEntry
}

func (t *TLB) Reset() { *t = TLB{} }

// TLBResult is what a successful probe yields.
type TLBResult struct {
	Paddr uint32
	Cache uint8
}

// Probe implements §4.B exactly: first matching entry wins (deterministic
// entry order), a hit into an invalid half is reported as a miss since the
// refill vector is shared between the two cases.
func (t *TLB) Probe(vaddr uint64, asid uint8) (TLBResult, bool) {
	for i := range t.entries {
		e := &t.entries[i]
		mask := e.offsetMask()
		if (vaddr & ^mask) != ((e.VPN2 << 13) & ^mask) {
			continue
		}
		if !e.Global && e.ASID != asid {
			continue
		}

		// Select even/odd half by the bit just above the offset mask.
		oddBit := mask + 1
		odd := vaddr&oddBit != 0

		var pfn uint64
		var cache uint8
		var valid bool
		if odd {
			pfn, cache, valid = e.PFN1, e.Cache1, e.Valid1
		} else {
			pfn, cache, valid = e.PFN0, e.Cache0, e.Valid0
		}
		if !valid {
			return TLBResult{}, false
		}
		return TLBResult{
			Paddr: uint32((pfn << 12) | (vaddr & mask)),
			Cache: cache,
		}, true
	}
	return TLBResult{}, false
}

// Index finds the entry matching EntryHi (VPN2+ASID, ignoring G) for TLBP.
// Returns -1 on no match.
func (t *TLB) Index(vpn2 uint64, asid uint8) int {
	for i := range t.entries {
		e := &t.entries[i]
		mask := e.offsetMask()
		entryVPN2 := e.VPN2 &^ (mask >> 13)
		wantVPN2 := vpn2 &^ (mask >> 13)
		if entryVPN2 != wantVPN2 {
			continue
		}
		if !e.Global && e.ASID != asid {
			continue
		}
		return i
	}
	return -1
}

func (t *TLB) Read(index int) TLBEntry     { return t.entries[index%tlbEntryCount] }
func (t *TLB) Write(index int, e TLBEntry) { t.entries[index%tlbEntryCount] = e }
