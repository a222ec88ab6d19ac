// Package core wires the cell buffer, text buffer, scene arena, frame
// pipeline, input decoder, and renderer into the single entry point a host
// application constructs.
package core

import (
	"os"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/renderer"
	"github.com/otuigo/core/scene"
)

// Options configures a new Core.
type Options struct {
	Width, Height int
	WidthMethod   cellbuffer.WidthMethod
	Mode          renderer.Mode

	// UseAlternateScreen selects whether SetupTerminal swaps to the
	// alternate screen buffer.
	UseAlternateScreen bool
	TargetFPS          int

	// Out is the terminal file to write ANSI output and the setup and
	// teardown sequences to, and whose raw mode SetupTerminal enables.
	// Defaults to os.Stdout when nil and Sink is also nil.
	Out *os.File

	// Sink selects the javascript-like output strategy instead of
	// writing directly to Out. When set, Out is ignored: SetupTerminal
	// and Teardown write nothing and raw mode is not enabled.
	Sink Sink
}

// Sink is the javascript-like output strategy's transport: see
// pipeline.Sink and renderer.SinkSink.
type Sink interface {
	Write(p []byte) (accepted bool)
}

// Core owns the whole render stack for one terminal session.
type Core struct {
	scn          *scene.Arena
	rnd          *renderer.Renderer
	useAltScreen bool
}

// New constructs a Core from opts. It does not touch the terminal; call
// SetupTerminal to do that.
func New(opts Options) (*Core, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, newError(Contract, "width and height must be positive", nil)
	}

	scn := scene.NewArena()

	var rnd *renderer.Renderer
	if opts.Sink != nil {
		rnd = renderer.NewWithSink(scn, opts.Width, opts.Height, opts.WidthMethod, opts.Sink, opts.Mode)
	} else {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		rnd = renderer.New(scn, opts.Width, opts.Height, opts.WidthMethod, out, opts.Mode)
	}

	if opts.TargetFPS > 0 {
		rnd.SetTargetFPS(opts.TargetFPS)
	}

	c := &Core{scn: scn, rnd: rnd, useAltScreen: opts.UseAlternateScreen}
	return c, nil
}

// Scene returns the scene arena renderables are added to.
func (c *Core) Scene() *scene.Arena { return c.scn }

// Renderer returns the underlying renderer for direct access to the full
// operation set (live refs, post-process hooks, stats, dispatcher, ...).
func (c *Core) Renderer() *renderer.Renderer { return c.rnd }

// SetupTerminal emits the setup sequence and enables raw-like input mode.
func (c *Core) SetupTerminal() error {
	if err := c.rnd.SetupTerminal(c.useAltScreen); err != nil {
		return newError(Io, "setup_terminal failed", err)
	}
	return nil
}

// Teardown reverses SetupTerminal unconditionally.
func (c *Core) Teardown() error {
	if err := c.rnd.Teardown(); err != nil {
		return newError(Io, "teardown failed", err)
	}
	return nil
}

// Start begins the render loop.
func (c *Core) Start() { c.rnd.Start() }

// Stop cooperatively shuts the render loop down and tears down the
// terminal.
func (c *Core) Stop() error {
	c.rnd.Stop()
	return c.Teardown()
}

// Resize propagates a terminal resize to the pipeline.
func (c *Core) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return newError(Contract, "resize dimensions must be positive", nil)
	}
	if err := c.rnd.Resize(width, height); err != nil {
		return newError(Capacity, "resize failed", err)
	}
	return nil
}
