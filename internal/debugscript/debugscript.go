// Package debugscript drives a Console from a Lua test script: each script
// gets a handful of host functions (step_frame, peek/poke, load_rom,
// expect, press) to script deterministic multi-frame integration
// scenarios without a real ROM or a display attached.
//
// Grounded on the teacher's debug_commands.go command-table pattern (a
// flat registry of named operations dispatched against a live CPU/bus
// pair) generalized from an interactive REPL to a batch Lua driver, since
// the teacher's own debug console has no scripting layer of its own to
// adapt from.
package debugscript

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/kestrel64/kestrel64/core"
)

// Driver wires a Console into a Lua state under a fixed set of globals.
type Driver struct {
	console *core.Console
	state   *lua.LState
	failed  []string
	pressed map[pressKey]bool
}

// New builds a Driver bound to console and registers its host functions.
func New(console *core.Console) *Driver {
	d := &Driver{console: console, state: lua.NewState()}
	d.register()
	return d
}

func (d *Driver) Close() { d.state.Close() }

// Failures returns every expect() mismatch recorded since the Driver was
// created; the list is not cleared between Run calls.
func (d *Driver) Failures() []string { return d.failed }

// Run executes the Lua source in path against the bound console.
func (d *Driver) Run(path string) error {
	return d.state.DoFile(path)
}

// RunString executes src directly, for inline scenarios authored in Go
// tests rather than loaded from a .lua fixture file.
func (d *Driver) RunString(src string) error {
	return d.state.DoString(src)
}

func (d *Driver) register() {
	reg := map[string]lua.LGFunction{
		"step_frame":  d.luaStepFrame,
		"run_frames":  d.luaRunFrames,
		"load_rom":    d.luaLoadRom,
		"load_ipl":    d.luaLoadIPL,
		"reset":       d.luaReset,
		"peek32":      d.luaPeek32,
		"poke32":      d.luaPoke32,
		"expect":      d.luaExpect,
		"press":       d.luaPress,
		"cic_seed":    d.luaCICSeed,
	}
	for name, fn := range reg {
		d.state.SetGlobal(name, d.state.NewFunction(fn))
	}

	// Button identifiers, exposed as integer globals so scripts can write
	// press(0, BUTTON_START) instead of magic numbers.
	buttons := map[string]core.Button{
		"BUTTON_A":          core.ButtonA,
		"BUTTON_B":          core.ButtonB,
		"BUTTON_Z":          core.ButtonZ,
		"BUTTON_START":      core.ButtonStart,
		"BUTTON_L":          core.ButtonL,
		"BUTTON_R":          core.ButtonR,
		"BUTTON_C_UP":       core.ButtonCUp,
		"BUTTON_C_DOWN":     core.ButtonCDown,
		"BUTTON_C_LEFT":     core.ButtonCLeft,
		"BUTTON_C_RIGHT":    core.ButtonCRight,
		"BUTTON_DPAD_UP":    core.ButtonKeypadUp,
		"BUTTON_DPAD_DOWN":  core.ButtonKeypadDown,
		"BUTTON_DPAD_LEFT":  core.ButtonKeypadLeft,
		"BUTTON_DPAD_RIGHT": core.ButtonKeypadRight,
	}
	for name, b := range buttons {
		d.state.SetGlobal(name, lua.LNumber(b))
	}

	d.pressed = make(map[pressKey]bool)
	d.console.SetReadInputCallback(d.readInput)
}

type pressKey struct {
	player int
	button core.Button
}

func (d *Driver) luaStepFrame(L *lua.LState) int {
	d.console.RunFrame()
	return 0
}

func (d *Driver) luaRunFrames(L *lua.LState) int {
	n := L.CheckInt(1)
	for i := 0; i < n; i++ {
		d.console.RunFrame()
	}
	return 0
}

func (d *Driver) luaLoadRom(L *lua.LState) int {
	path := L.CheckString(1)
	L.Push(lua.LBool(d.console.LoadFile("rom", path)))
	return 1
}

func (d *Driver) luaLoadIPL(L *lua.LState) int {
	path := L.CheckString(1)
	L.Push(lua.LBool(d.console.LoadFile("IPL", path)))
	return 1
}

func (d *Driver) luaReset(L *lua.LState) int {
	d.console.Reset()
	return 0
}

func (d *Driver) luaPeek32(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	L.Push(lua.LNumber(d.console.Bus().ReadWord(addr)))
	return 1
}

func (d *Driver) luaPoke32(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	v := uint32(L.CheckInt64(2))
	d.console.Bus().WriteWord(addr, v)
	return 0
}

// luaExpect records a failure rather than aborting the script, so a
// scenario can report every mismatch in one run instead of stopping at
// the first.
func (d *Driver) luaExpect(L *lua.LState) int {
	got := L.CheckInt64(1)
	want := L.CheckInt64(2)
	label := L.OptString(3, "")
	if got != want {
		d.failed = append(d.failed, fmt.Sprintf("%s: got %d, want %d", label, got, want))
	}
	return 0
}

// luaPress records the digital button state a script has asserted; held
// until the script calls press(player, button, false) to release it.
func (d *Driver) luaPress(L *lua.LState) int {
	player := L.CheckInt(1)
	button := core.Button(L.CheckInt(2))
	down := true
	if L.GetTop() >= 3 {
		down = lua.LVAsBool(L.Get(3))
	}
	d.pressed[pressKey{player, button}] = down
	return 0
}

func (d *Driver) readInput(player int, button core.Button) int8 {
	if d.pressed[pressKey{player, button}] {
		return 1
	}
	return 0
}

func (d *Driver) luaCICSeed(L *lua.LState) int {
	L.Push(lua.LNumber(d.console.CICSeed()))
	return 1
}
