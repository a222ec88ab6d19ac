// Command demo drives the render core directly: a bordered panel with a
// syntax-highlighted text view and a status line, redrawn every tick in
// cooperative mode with backpressure-free stdout output. It exercises the
// same scene/pipeline/renderer wiring a host widget library would sit on
// top of, without any widget layer of its own.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
	"github.com/otuigo/core/core"
	"github.com/otuigo/core/input"
	"github.com/otuigo/core/renderer"
	"github.com/otuigo/core/scene"
	"github.com/otuigo/core/textbuffer"
)

func main() {
	width, height := 60, 18

	c, err := core.New(core.Options{
		Width:              width,
		Height:             height,
		WidthMethod:        cellbuffer.WidthMethodUnicode,
		Mode:               renderer.Cooperative,
		UseAlternateScreen: true,
		TargetFPS:          30,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}

	if err := c.SetupTerminal(); err != nil {
		fmt.Fprintln(os.Stderr, "demo: setup_terminal:", err)
		os.Exit(1)
	}
	defer c.Teardown()

	buf := textbuffer.New()
	buf.SetText("package main\n\nfunc main() {\n\tprintln(\"hello, otui\")\n}\n")
	buf.HighlightSyntax("go", "monokai")

	view := textbuffer.NewView(buf)
	view.SetWrapMode(textbuffer.WrapWord)
	view.SetWrapWidth(width - 4)
	view.SetViewportSize(width-4, height-4)
	view.SetWidthMethod(cellbuffer.WidthMethodUnicode)

	frame := 0
	panelID := c.Scene().Add(scene.Root, scene.Renderable{
		Rect:    cellbuffer.Rect{X: 0, Y: 0, W: width, H: height},
		Visible: true,
		Paint: func(dst *cellbuffer.Buffer, rect cellbuffer.Rect) {
			dst.DrawBox(rect.X, rect.Y, rect.W, rect.H, cellbuffer.DrawBoxOptions{
				Style:       cellbuffer.BorderRounded,
				Sides:       cellbuffer.SideAll,
				BorderColor: color.RGB8(0x66, 0xcc, 0xff),
				Title:       "otui core demo",
				TitleAlign:  cellbuffer.AlignCenter,
			})
			view.Draw(dst, rect.X+2, rect.Y+1)
			status := fmt.Sprintf("frame %d - press q to quit", frame)
			dst.DrawText(status, rect.X+2, rect.Y+rect.H-2, color.RGB8(0x99, 0x99, 0x99), nil, 0, nil)
		},
	})
	c.Scene().SetZ(panelID, 0)

	quit := make(chan struct{})
	stdin := make(chan []byte, 64)
	go readStdin(stdin)

	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case data := <-stdin:
			c.Renderer().FeedInput(data)
			drainEvents(c.Renderer().Events(), quit)
		case <-ticker.C:
			frame++
			c.Renderer().MarkDirty()
			if err := c.Renderer().RenderOnce(); err != nil {
				fmt.Fprintln(os.Stderr, "demo: render:", err)
				return
			}
		}
	}
}

func drainEvents(events <-chan input.Event, quit chan struct{}) {
	for {
		select {
		case ev := <-events:
			if ev.Kind == input.EventKey && (ev.Key.Name == "q" || (ev.Key.Ctrl && ev.Key.Name == "c")) {
				select {
				case <-quit:
				default:
					close(quit)
				}
			}
		default:
			return
		}
	}
}

func readStdin(out chan<- []byte) {
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			out <- chunk
		}
		if err != nil {
			return
		}
	}
}
