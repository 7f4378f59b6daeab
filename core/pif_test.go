package core

import "testing"

// TestJoypadReplyIdentifiesControllerType covers the info-command reply
// (0x00/0xFF) for the default Joypad channel type.
func TestJoypadReplyIdentifiesControllerType(t *testing.T) {
	log := NewLogger()
	sched := NewScheduler()
	b := NewBus(log, sched)

	buf := make([]byte, 64)
	buf[0] = 0x01 // sendLen
	buf[1] = 0x03 // recvLen
	buf[2] = pifCmdInfo
	buf[6] = pifChannelSkip
	buf[7] = pifChannelSkip
	buf[8] = pifChannelSkip

	ProcessPIFCommands(buf, b)

	if got := uint16(buf[3])<<8 | uint16(buf[4]); got != uint16(ControllerJoypad) {
		t.Fatalf("reply type=0x%04x, want 0x%04x", got, ControllerJoypad)
	}
}

// TestJoypadButtonBitmapMatchesLayout covers the A/B/Start bit positions
// of the joybus reply's high byte.
func TestJoypadButtonBitmapMatchesLayout(t *testing.T) {
	log := NewLogger()
	sched := NewScheduler()
	b := NewBus(log, sched)
	b.SetReadInputCallback(func(player int, button Button) int8 {
		if player == 0 && (button == ButtonA || button == ButtonStart) {
			return 1
		}
		return 0
	})

	buf := make([]byte, 64)
	buf[0] = 0x01
	buf[1] = 0x04
	buf[2] = pifCmdReadController
	buf[7] = pifChannelSkip
	buf[8] = pifChannelSkip
	buf[9] = pifChannelSkip

	ProcessPIFCommands(buf, b)

	want := byte(1<<7 | 1<<4) // A | Start
	if got := buf[3]; got != want {
		t.Fatalf("button hi byte=0x%02x, want 0x%02x", got, want)
	}
}

// TestMouseReplyConsumesAccumulatedDelta covers the mouse variant's
// accumulate-then-reset-on-read semantics.
func TestMouseReplyConsumesAccumulatedDelta(t *testing.T) {
	log := NewLogger()
	sched := NewScheduler()
	b := NewBus(log, sched)
	b.SetControllerType(0, ControllerMouse)
	b.AccumulateMouseDelta(0, 12, -5)

	buf := make([]byte, 64)
	buf[0] = 0x01
	buf[1] = 0x04
	buf[2] = pifCmdReadController
	buf[7] = pifChannelSkip
	buf[8] = pifChannelSkip
	buf[9] = pifChannelSkip

	ProcessPIFCommands(buf, b)

	if got := int8(buf[5]); got != 12 {
		t.Fatalf("dx=%d, want 12", got)
	}
	if got := int8(buf[6]); got != -5 {
		t.Fatalf("dy=%d, want -5", got)
	}
	if b.mouseDeltaX[0] != 0 || b.mouseDeltaY[0] != 0 {
		t.Fatalf("mouse delta must reset to zero after being read")
	}
}
