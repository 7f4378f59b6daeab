// console.go - the public Console API (§6) and the halfline-granularity
// timing harness (§4.H) that drives CPU/AI/RSP at the correct rate ratios.
//
// Adapted from the teacher's top-level machine type (machine.go): a single
// owning struct wiring bus+cpu+scheduler together behind a small
// synchronous API, generalized from the teacher's "run until halted" loop
// to the N64's per-halfline VI interrupt scheduling.

package core

import "os"

const (
	nativeWidth  = 320
	nativeHeight = 240

	halflinesPerFrameNTSC = 262
	framesPerSecond       = 60
	cpuClockHz            = 93_750_000

	// VI register offsets, relative to addrVIRegStart, per the N64Brew
	// memory map; VI itself is out of scope (delegated to RCPCollaborator)
	// but the timing harness still needs to drive v_current and read
	// VI_INTR to decide when to raise the VI interrupt.
	viRegIntr    = 0x0C
	viRegCurrent = 0x10
)

// cyclesPerHalfline is the (CPU cycles)/(halfline) ratio the frame loop
// advances by, derived from the CPU clock and the NTSC field rate.
const cyclesPerHalfline = cpuClockHz / (framesPerSecond * halflinesPerFrameNTSC)

// Console is the top-level emulator instance: owns the bus, CPU, and
// scheduler, and exposes exactly the synchronous operations of spec.md §6.
type Console struct {
	bus   *Bus
	cpu   *CPU
	sched *Scheduler
	log   *Logger

	iplLoaded bool
	romLoaded bool
	cicSeed   uint32

	vCurrent uint32
}

// NewConsole allocates and zeroes state and schedules the sentinel event,
// matching the Console API's "create" entry.
func NewConsole() *Console {
	log := NewLogger()
	sched := NewScheduler()
	bus := NewBus(log, sched)
	cpu := NewCPU(bus, log)

	c := &Console{bus: bus, cpu: cpu, sched: sched, log: log}
	return c
}

// Bus exposes the physical address bus so a frontend can build an
// RCPCollaborator (which needs RDRAM access) before calling AttachRCP.
func (c *Console) Bus() *Bus { return c.bus }

// AttachRCP wires the VI/SP/DP/RSP collaborator, out of scope per §1 but
// reached through the narrow RCPCollaborator seam.
func (c *Console) AttachRCP(rcp RCPCollaborator) { c.bus.AttachRCP(rcp) }

// SetAudioCallback wires the host audio sink behind the AI's descriptor
// completion, matching set_audio_callback in the Console API table.
func (c *Console) SetAudioCallback(fn AudioCallback) { c.bus.AI().SetCallback(fn) }

// SetPollInputCallback wires the per-frame controller poll hook.
func (c *Console) SetPollInputCallback(fn func()) { c.bus.SetPollInputCallback(fn) }

// SetReadInputCallback wires the per-button read hook.
func (c *Console) SetReadInputCallback(fn func(player int, button Button) int8) {
	c.bus.SetReadInputCallback(fn)
}

// SetControllerType lets a frontend mark a PIF channel as Mouse instead of
// the default Joypad.
func (c *Console) SetControllerType(channel int, t ControllerType) {
	c.bus.SetControllerType(channel, t)
}

// AccumulateMouseDelta feeds raw mouse motion into the PIF mouse reply
// accumulator for the given channel.
func (c *Console) AccumulateMouseDelta(channel int, dx, dy int32) {
	c.bus.AccumulateMouseDelta(channel, dx, dy)
}

// Reset reinitializes the bus registers and RDRAM, the CPU and TLB, and the
// scheduler, per the Console API's "reset" entry. PIF RAM is not rewritten:
// it keeps whatever it held before the reset.
func (c *Console) Reset() {
	c.bus.Reset()
	c.cpu.Reset()
	c.sched.Reset()
	c.vCurrent = 0
}

// NativeSize returns the video collaborator's fixed output dimensions.
func (c *Console) NativeSize() (int, int) { return nativeWidth, nativeHeight }

// RenderVideo asks the RCP collaborator to produce an RGBA8888 frame of
// NativeSize; with no collaborator attached it returns a zeroed buffer of
// the right size so headless callers (tests, the Lua debug driver) never
// observe a nil slice.
func (c *Console) RenderVideo() []byte {
	buf := make([]byte, nativeWidth*nativeHeight*4)
	if c.bus.rcp == nil {
		return buf
	}
	if frame := c.bus.rcp.RenderVideo(); frame != nil {
		copy(buf, frame)
	}
	return buf
}

// RunFrame advances exactly one video field: §4.H's halfline loop, driving
// VI's v_current, the CPU, the AI, and the RSP at their correct rate
// ratios, and raising VI interrupts at the scanline boundary the RCP
// collaborator's VI_INTR names.
func (c *Console) RunFrame() {
	for halfline := 0; halfline < halflinesPerFrameNTSC; halfline++ {
		c.vCurrent = uint32(halfline)
		if c.bus.rcp != nil {
			c.bus.rcp.WriteWord(addrVIRegStart+viRegCurrent, c.vCurrent)
		}
		c.checkVIInterrupt()

		rspCredit := 0
		for cycle := 0; cycle < cyclesPerHalfline; cycle++ {
			c.cpu.Tick()
			c.bus.ai.Step()

			rspCredit += 2
			for rspCredit >= 3 {
				rspCredit -= 3
				if c.bus.rcp != nil && !c.bus.rcp.RSPHalted() {
					c.bus.rcp.StepRSP(1)
				}
			}

			c.drainScheduler()
		}
	}
	c.checkVIInterrupt()
}

// checkVIInterrupt raises the VI interrupt when v_current equals the
// collaborator's VI_INTR target scanline, per §4.H.
func (c *Console) checkVIInterrupt() {
	if c.bus.rcp == nil {
		return
	}
	target := c.bus.rcp.ReadWord(addrVIRegStart + viRegIntr)
	if c.vCurrent == target {
		c.bus.RaiseInterrupt(IntVI)
	}
}

// drainScheduler services every task due at the scheduler's current time;
// the timing harness consults the scheduler only at instruction
// boundaries, matching §4's "between halflines, the CPU assumes no event
// is due" note generalized down to per-instruction granularity since that
// is this interpreter's natural step size.
func (c *Console) drainScheduler() {
	for _, task := range c.sched.Advance(1) {
		switch task {
		case TaskPIDMACompletion:
			c.bus.CompletePIDMA()
		case TaskSIDMACompletion:
			c.bus.CompleteSIDMA()
		case TaskPIFCompletion:
			c.bus.RaiseInterrupt(IntSI)
		case TaskCompare:
			// redundant with the per-Tick Count/Compare check in advanceClock;
			// scheduled for parity with the original source.
		}
	}
}

// LoadFile reads path from disk and installs it as either the IPL firmware
// or the cartridge ROM, matching the Console API's load_file("IPL"|"rom",
// path) entries. kind is case-sensitive ("IPL" or "rom").
func (c *Console) LoadFile(kind, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Warn("load_file(%s, %s): %v", kind, path, err)
		return false
	}
	switch kind {
	case "IPL":
		return c.LoadIPL(data)
	case "rom":
		return c.LoadCartridge(data)
	default:
		c.log.Warn("load_file: unknown kind %q", kind)
		return false
	}
}

// CICSeed returns the HLE PIF boot seed detected from the loaded
// cartridge's header, for a frontend that wants to display or log it.
func (c *Console) CICSeed() uint32 { return c.cicSeed }
