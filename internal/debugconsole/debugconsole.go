// Package debugconsole is a raw-mode stdin command reader for a running
// Console: type "reset", "pause", "step", "seed", or "quit" and press
// Enter to drive the emulator from the terminal it was launched in,
// without needing the video window focused.
//
// Adapted from the teacher's TerminalHost (terminal_host.go): the same
// term.MakeRaw/term.Restore lifecycle and non-blocking single-byte read
// goroutine, generalized from routing bytes into a TERM_IN MMIO device to
// accumulating a line and dispatching it against a small command table.
package debugconsole

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/kestrel64/kestrel64/core"
)

// Console reads terminal commands and applies them to a *core.Console.
type Console struct {
	console *core.Console

	fd           int
	oldTermState *term.State
	nonblockSet  bool

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	paused bool
	line   []byte
}

func New(console *core.Console) *Console {
	return &Console{
		console: console,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Paused reports whether a "pause" command is in effect; a host's frame
// loop should skip Console.RunFrame while this is true.
func (c *Console) Paused() bool { return c.paused }

// Done closes when the reader goroutine exits, either because Stop was
// called or because the "quit" command was typed.
func (c *Console) Done() <-chan struct{} { return c.done }

// Start puts stdin into raw non-blocking mode and begins reading commands
// in a goroutine. Call Stop to restore the terminal.
func (c *Console) Start() {
	c.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "debugconsole: failed to set raw mode: %v\n", err)
		close(c.done)
		return
	}
	c.oldTermState = oldState

	if err := syscall.SetNonblock(c.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "debugconsole: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
		close(c.done)
		return
	}
	c.nonblockSet = true

	go c.run()
}

func (c *Console) run() {
	defer close(c.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		n, err := syscall.Read(c.fd, buf)
		if n > 0 {
			b := buf[0]
			switch b {
			case '\r', '\n':
				c.dispatch(string(c.line))
				c.line = c.line[:0]
			case 0x7F, 0x08:
				if len(c.line) > 0 {
					c.line = c.line[:len(c.line)-1]
				}
			default:
				c.line = append(c.line, b)
			}
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (c *Console) dispatch(cmd string) {
	switch cmd {
	case "reset":
		c.console.Reset()
		fmt.Println("\r\nreset")
	case "pause":
		c.paused = true
		fmt.Println("\r\npaused")
	case "resume":
		c.paused = false
		fmt.Println("\r\nresumed")
	case "step":
		c.console.RunFrame()
		fmt.Println("\r\nstepped one frame")
	case "seed":
		fmt.Printf("\r\ncic seed: 0x%08x\n", c.console.CICSeed())
	case "quit":
		fmt.Println("\r\nquit")
		c.stopped.Do(func() {
			close(c.stopCh)
		})
	case "":
	default:
		fmt.Printf("\r\nunknown command: %q\n", cmd)
	}
}

// Stop terminates the reader goroutine and restores the terminal.
func (c *Console) Stop() {
	c.stopped.Do(func() {
		close(c.stopCh)
	})
	<-c.done
	if c.nonblockSet {
		_ = syscall.SetNonblock(c.fd, false)
		c.nonblockSet = false
	}
	if c.oldTermState != nil {
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
	}
}
