// Command kestrel64 wires the core console to its frontends: an ebiten
// video window (which also drives the frame clock), an oto audio sink, a
// minimal RCP collaborator for the VI framebuffer, and an optional
// terminal debug console.
//
// Adapted from the teacher's main.go: the same "build peripherals, map
// them onto the bus, load the program, start the GUI" sequence, replacing
// the teacher's -ie32/-m68k CPU-mode switch (this core has exactly one
// CPU) with -ipl/-rom flags for the two files the Console API's load_file
// operation expects.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/kestrel64/kestrel64/core"
	"github.com/kestrel64/kestrel64/frontend/audio"
	"github.com/kestrel64/kestrel64/frontend/video"
	"github.com/kestrel64/kestrel64/internal/debugconsole"
	"github.com/kestrel64/kestrel64/internal/rcp"
)

func main() {
	iplPath := flag.String("ipl", "", "path to the IPL boot ROM")
	romPath := flag.String("rom", "", "path to the cartridge ROM image")
	headless := flag.Bool("headless", false, "run without a video window (for scripted/debug sessions)")
	debug := flag.Bool("debug", false, "attach a terminal debug console (reset/pause/step/seed/quit)")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("usage: kestrel64 -ipl <file> -rom <file> [-headless] [-debug]")
		os.Exit(1)
	}

	console := core.NewConsole()

	if *iplPath != "" {
		if !console.LoadFile("IPL", *iplPath) {
			fmt.Fprintf(os.Stderr, "kestrel64: failed to load IPL %q\n", *iplPath)
			os.Exit(1)
		}
	}
	if !console.LoadFile("rom", *romPath) {
		fmt.Fprintf(os.Stderr, "kestrel64: failed to load ROM %q\n", *romPath)
		os.Exit(1)
	}
	fmt.Printf("loaded %q, CIC seed 0x%08x\n", *romPath, console.CICSeed())

	width, height := console.NativeSize()
	collaborator := rcp.New(console.Bus(), width, height)
	console.AttachRCP(collaborator)

	sink, err := audio.New(48000)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel64: audio init failed: %v\n", err)
		os.Exit(1)
	}
	sink.Bind(console)
	sink.Start()
	defer sink.Close()

	var dbg *debugconsole.Console
	if *debug {
		dbg = debugconsole.New(console)
		dbg.Start()
		defer dbg.Stop()
	}

	if *headless {
		if err := runHeadless(console, dbg); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel64: %v\n", err)
			os.Exit(1)
		}
		return
	}

	out := video.New(console)
	if err := out.Run("kestrel64"); err != nil {
		fmt.Fprintf(os.Stderr, "kestrel64: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless drives the frame clock without a display. It coordinates the
// frame-stepping loop against a SIGINT/SIGTERM watcher and, if attached,
// the debug console's "quit" command: whichever fires first cancels the
// shared context and the errgroup unwinds both goroutines together.
func runHeadless(console *core.Console, dbg *debugconsole.Console) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		var dbgDone <-chan struct{}
		if dbg != nil {
			dbgDone = dbg.Done()
		}
		select {
		case <-sig:
			return fmt.Errorf("interrupted")
		case <-dbgDone:
			cancel()
			return nil
		case <-ctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if dbg != nil && dbg.Paused() {
				continue
			}
			console.RunFrame()
		}
	})

	return g.Wait()
}
