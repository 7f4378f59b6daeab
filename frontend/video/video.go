// Package video is the ebiten-based presentation frontend: it owns the host
// window, pumps Console.RunFrame once per ebiten Update, pulls the rendered
// RGBA8888 field out of Console.RenderVideo, and polls keyboard state into
// the Console's button-read callback contract.
//
// Adapted from the teacher's EbitenOutput (video_backend_ebiten.go): same
// running/frameBuffer/bufferMutex/Game-interface shape, generalized from a
// raw VRAM blit to the N64's native-size upscale via x/image's draw
// package. The teacher's clipboard-paste and keyboard-to-text-stream
// emulation (golang.design/x/clipboard, emitByte/runeToInputByte) has no
// analogue in the N64 Console API and is dropped entirely; key state feeds
// Button identifiers instead of a text stream.
package video

import (
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"github.com/kestrel64/kestrel64/core"
)

const defaultScale = 3

// keymap assigns a default host key to each N64 digital button; analog
// stick axes are driven from the four arrow keys as a simple digital
// approximation, matching the teacher's preference for a working default
// over an unconfigured dead input.
var keymap = map[core.Button]ebiten.Key{
	core.ButtonA:          ebiten.KeyX,
	core.ButtonB:          ebiten.KeyZ,
	core.ButtonZ:          ebiten.KeyC,
	core.ButtonStart:      ebiten.KeyEnter,
	core.ButtonL:          ebiten.KeyQ,
	core.ButtonR:          ebiten.KeyW,
	core.ButtonCUp:        ebiten.KeyI,
	core.ButtonCDown:      ebiten.KeyK,
	core.ButtonCLeft:      ebiten.KeyJ,
	core.ButtonCRight:     ebiten.KeyL,
	core.ButtonKeypadUp:   ebiten.KeyUp,
	core.ButtonKeypadDown: ebiten.KeyDown,
	core.ButtonKeypadLeft: ebiten.KeyLeft,
	core.ButtonKeypadRight: ebiten.KeyRight,
}

// Output is an ebiten Game implementing the N64 core's native-size video
// output, upscaled to the host window.
type Output struct {
	console *core.Console

	running bool

	width, height int // native (320x240)

	bufferMutex sync.RWMutex
	native      *image.RGBA

	analogDX, analogDY int8

	quit func()
}

// New builds an Output bound to console, wiring its input callbacks so
// ebiten's key state becomes the Console's button-read source.
func New(console *core.Console) *Output {
	w, h := console.NativeSize()
	o := &Output{
		console: console,
		width:   w,
		height:  h,
		native:  image.NewRGBA(image.Rect(0, 0, w, h)),
	}
	console.SetPollInputCallback(o.pollInput)
	console.SetReadInputCallback(o.readInput)
	return o
}

// SetQuit registers fn to be invoked when ebiten.RunGame returns so a host
// main can join other goroutines (audio, debug console) cleanly.
func (o *Output) SetQuit(fn func()) { o.quit = fn }

// Run starts the ebiten game loop; it blocks until the window is closed.
func (o *Output) Run(title string) error {
	ebiten.SetWindowSize(o.width*defaultScale, o.height*defaultScale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	o.running = true
	err := ebiten.RunGame(o)
	o.running = false
	if o.quit != nil {
		o.quit()
	}
	return err
}

// Update runs one N64 video field per ebiten tick: the frontend is the
// clock source for Console.RunFrame, matching the teacher's Update driving
// its own emulated machine forward by one host frame.
func (o *Output) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return fmt.Errorf("video: quit requested")
	}

	o.console.RunFrame()

	o.bufferMutex.Lock()
	copy(o.native.Pix, o.console.RenderVideo())
	o.bufferMutex.Unlock()

	return nil
}

// Draw upscales the native 320x240 RGBA8888 field to the destination image
// using x/image/draw's nearest-neighbour scaler, preserving the blocky
// look a CRT-era console is expected to have rather than ebiten's default
// bilinear filter.
func (o *Output) Draw(screen *ebiten.Image) {
	o.bufferMutex.RLock()
	src := o.native
	o.bufferMutex.RUnlock()

	dst := image.NewRGBA(screen.Bounds())
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	screen.WritePixels(dst.Pix)
}

func (o *Output) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// pollInput is invoked once per PIF command scan; ebiten's key state is
// already current as of the last Update, so this is a no-op hook kept for
// symmetry with the Console API's set_poll_input_callback entry.
func (o *Output) pollInput() {}

// readInput answers a single button query for player 0; other players have
// no host binding and read as neutral.
func (o *Output) readInput(player int, button core.Button) int8 {
	if player != 0 {
		return 0
	}
	switch button {
	case core.ButtonAnalogHorizontal:
		return axis(ebiten.KeyLeft, ebiten.KeyRight)
	case core.ButtonAnalogVertical:
		return axis(ebiten.KeyDown, ebiten.KeyUp)
	}
	if key, ok := keymap[button]; ok && ebiten.IsKeyPressed(key) {
		return 1
	}
	return 0
}

func axis(neg, pos ebiten.Key) int8 {
	var v int8
	if ebiten.IsKeyPressed(neg) {
		v -= 80
	}
	if ebiten.IsKeyPressed(pos) {
		v += 80
	}
	return v
}
