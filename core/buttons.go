// buttons.go - controller button identifiers (wire-stable public enum)

package core

// Button identifies a single joybus input. Values are fixed for wire
// compatibility with frontends and must never be renumbered.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonZ
	ButtonStart
	ButtonAnalogVertical
	ButtonAnalogHorizontal
	ButtonL
	ButtonR
	ButtonCUp
	ButtonCDown
	ButtonCLeft
	ButtonCRight
	ButtonKeypadUp
	ButtonKeypadDown
	ButtonKeypadLeft
	ButtonKeypadRight

	buttonCount
)

// ControllerType is the joybus device identity reported by PIF command
// 0x00/0xFF. Mouse support is a supplement recovered from original_source
// (hydra-emu/n64's ControllerType enum); spec.md's joybus section only
// fully specifies the Joypad reply shape.
type ControllerType uint16

const (
	ControllerJoypad ControllerType = 0x0500
	ControllerMouse  ControllerType = 0x0200
)
