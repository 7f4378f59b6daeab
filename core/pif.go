// pif.go - PIF command processing / joybus, §4.C.1.
//
// The 64-byte PIF RAM buffer is scanned as a sequence of per-channel
// commands once an inbound SI DMA completes. Grounded on
// original_source's Keys/ControllerType enums (core/n64_cpu.hxx) for the
// button bitmap layout and controller-type values.

package core

const (
	pifCmdInfo            = 0x00
	pifCmdInfoAlt         = 0xFF
	pifCmdReadController  = 0x01
	pifNoReplyBit         = 0x80
	pifChannelSkip        = 0xFE // padding byte, skipped during the scan
	pifChannelDummy       = 0x00
)

// ProcessPIFCommands scans the 64-byte PIF RAM command buffer and
// fabricates replies for the known command bytes, per §4.C.1. The input
// collaborator's poll callback fires exactly once, before the first
// per-channel read.
func ProcessPIFCommands(buf []byte, b *Bus) {
	if b.pollInput != nil {
		b.pollInput()
	}

	channel := 0
	i := 0
	for i < len(buf) && channel < 4 {
		switch buf[i] {
		case 0x00:
			i++
			continue
		case pifChannelSkip:
			i++
			continue
		case 0xFD:
			// end of command list
			i = len(buf)
			continue
		}

		if i+2 >= len(buf) {
			break
		}
		sendLen := int(buf[i])
		recvLen := int(buf[i+1])
		cmdOff := i + 2
		if cmdOff >= len(buf) || sendLen == 0 {
			i++
			continue
		}
		cmd := buf[cmdOff]
		dataStart := cmdOff + 1
		dataEnd := dataStart + sendLen - 1
		recvStart := dataEnd
		recvEnd := recvStart + recvLen

		if dataEnd > len(buf) || recvEnd > len(buf) {
			break
		}

		processChannelCommand(b, channel, cmd, buf[dataStart:dataEnd], buf[recvStart:recvEnd])

		i = recvEnd
		channel++
	}

	b.RaiseInterrupt(IntSI)
}

func processChannelCommand(b *Bus, channel int, cmd byte, _ []byte, reply []byte) {
	switch cmd {
	case pifCmdInfo, pifCmdInfoAlt:
		if len(reply) < 2 {
			return
		}
		ctype := b.controllerType[channel]
		reply[0] = byte(ctype >> 8)
		reply[1] = byte(ctype)
		if len(reply) >= 3 {
			reply[2] = 0x00
		}
	case pifCmdReadController:
		if len(reply) < 4 {
			return
		}
		if b.controllerType[channel] == ControllerMouse {
			fillMouseReply(b, channel, reply)
		} else {
			fillJoypadReply(b, channel, reply)
		}
	default:
		if len(reply) > 0 {
			reply[0] |= pifNoReplyBit
		}
	}
}

// joypad button bit layout, MSB first: A,B,Z,Start,DUp,DDown,DLeft,DRight |
// Reset,0,L,R,CUp,CDown,CLeft,CRight, followed by signed analog X,Y.
func fillJoypadReply(b *Bus, player int, reply []byte) {
	read := func(btn Button) bool {
		if b.readInput == nil {
			return false
		}
		return b.readInput(player, btn) != 0
	}

	var hi, lo byte
	if read(ButtonA) {
		hi |= 1 << 7
	}
	if read(ButtonB) {
		hi |= 1 << 6
	}
	if read(ButtonZ) {
		hi |= 1 << 5
	}
	if read(ButtonStart) {
		hi |= 1 << 4
	}
	if read(ButtonKeypadUp) {
		hi |= 1 << 3
	}
	if read(ButtonKeypadDown) {
		hi |= 1 << 2
	}
	if read(ButtonKeypadLeft) {
		hi |= 1 << 1
	}
	if read(ButtonKeypadRight) {
		hi |= 1 << 0
	}
	if read(ButtonL) {
		lo |= 1 << 5
	}
	if read(ButtonR) {
		lo |= 1 << 4
	}
	if read(ButtonCUp) {
		lo |= 1 << 3
	}
	if read(ButtonCDown) {
		lo |= 1 << 2
	}
	if read(ButtonCLeft) {
		lo |= 1 << 1
	}
	if read(ButtonCRight) {
		lo |= 1 << 0
	}

	reply[0] = hi
	reply[1] = lo

	var analogX, analogY int8
	if b.readInput != nil {
		analogX = b.readInput(player, ButtonAnalogHorizontal)
		analogY = b.readInput(player, ButtonAnalogVertical)
	}
	reply[2] = byte(analogX)
	reply[3] = byte(analogY)
}

// fillMouseReply replaces the analog pair with delta-x/delta-y that are
// consumed (reset to zero) once read, per §4.C.1's mouse variant.
func fillMouseReply(b *Bus, player int, reply []byte) {
	reply[0] = 0
	reply[1] = 0
	reply[2] = byte(int8(clampDelta(b.mouseDeltaX[player])))
	reply[3] = byte(int8(clampDelta(b.mouseDeltaY[player])))
	b.mouseDeltaX[player] = 0
	b.mouseDeltaY[player] = 0
}

func clampDelta(v int32) int32 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return v
}

// AccumulateMouseDelta lets a frontend feed raw mouse motion between
// frames; PIF reads consume (zero) the accumulator.
func (b *Bus) AccumulateMouseDelta(channel int, dx, dy int32) {
	if channel < 0 || channel >= len(b.mouseDeltaX) {
		return
	}
	b.mouseDeltaX[channel] += dx
	b.mouseDeltaY[channel] += dy
}
