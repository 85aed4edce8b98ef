// Package terminal renders the fluid as ASCII density in a terminal, with
// mouse interaction.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/sim"
	"github.com/pthm-cable/fluid/systems"
)

// Terminal drives a runner from terminal input and draws each frame.
type Terminal struct {
	runner    *sim.Runner
	palette   *systems.Palette
	count     int
	frameTime time.Duration

	backbuf  []termbox.Cell
	bbw, bbh int
	field    []float32

	pointer components.Interaction
	paused  bool
	status  string
}

// New creates a terminal host. count is the particle count used by resets.
func New(r *sim.Runner, palette *systems.Palette, count int, fps int) *Terminal {
	return &Terminal{
		runner:    r,
		palette:   palette,
		count:     count,
		frameTime: time.Second / time.Duration(max(fps, 1)),
	}
}

// Run takes over the terminal until Esc, q or ctx cancellation.
func (t *Terminal) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("termbox init: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	termbox.SetOutputMode(termbox.Output256)
	t.reallocBackBuffer(termbox.Size())

	events := make(chan termbox.Event, 16)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			events <- ev
		}
	}()
	defer termbox.Interrupt()

	ticker := time.NewTicker(t.frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := t.handleEvent(ev); quit {
				return nil
			}
		case <-ticker.C:
			if !t.paused {
				if _, err := t.runner.Frame(t.frameTime.Seconds(), t.pointer); err != nil {
					return err
				}
			}
			t.redraw()
		}
	}
}

// handleEvent applies one input event. It returns true to quit.
func (t *Terminal) handleEvent(ev termbox.Event) bool {
	switch ev.Type {
	case termbox.EventKey:
		switch {
		case ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q':
			return true
		case ev.Key == termbox.KeySpace:
			t.paused = !t.paused
		case ev.Ch == 'r':
			t.reset(systems.LayoutRandom)
		case ev.Ch == 'g':
			t.reset(systems.LayoutGrid)
		}
	case termbox.EventMouse:
		t.handleMouse(ev)
	case termbox.EventResize:
		t.reallocBackBuffer(ev.Width, ev.Height)
	case termbox.EventError:
		t.status = ev.Err.Error()
	}
	return false
}

// handleMouse maps buttons to the interaction. The bottom row is the status
// line and does not touch the fluid.
func (t *Terminal) handleMouse(ev termbox.Event) {
	rows := t.bbh - 1
	if ev.Key == termbox.MouseRelease || rows <= 0 || ev.MouseY >= rows {
		t.pointer = components.Interaction{}
		return
	}

	var sign components.InteractionSign
	switch ev.Key {
	case termbox.MouseLeft:
		sign = components.InteractionAttract
	case termbox.MouseRight:
		sign = components.InteractionRepel
	default:
		return
	}
	t.pointer = components.Interaction{
		Position: CellToWorld(ev.MouseX, ev.MouseY, t.bbw, rows, t.runner.Sim().Bounds()),
		Active:   true,
		Sign:     sign,
	}
}

func (t *Terminal) reset(layout systems.Layout) {
	if err := t.runner.Sim().Reset(layout, t.count); err != nil {
		t.status = err.Error()
	}
}

func (t *Terminal) reallocBackBuffer(w, h int) {
	t.bbw, t.bbh = w, h
	t.backbuf = make([]termbox.Cell, w*h)
}

// redraw bins particles into the cell grid above the status line.
func (t *Terminal) redraw() {
	rows := t.bbh - 1
	if t.bbw <= 0 || rows <= 0 {
		return
	}

	s := t.runner.Sim()
	t.field = systems.BinOccupancy(t.field, s.Positions(), s.Bounds(), t.bbw, rows)
	for i, v := range t.field {
		fg := termbox.ColorDefault
		if v > 0 {
			fg = ColorAttr(t.palette.At(float64(v)))
		}
		t.backbuf[i] = termbox.Cell{Ch: Glyph(v), Fg: fg, Bg: termbox.ColorDefault}
	}
	t.drawStatus(rows)

	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	copy(termbox.CellBuffer(), t.backbuf)
	termbox.Flush()
}

func (t *Terminal) drawStatus(row int) {
	s := t.runner.Sim()
	line := fmt.Sprintf(" %d particles | tick %d | sim %.1fs | LMB attract RMB repel | r/g reset | space pause | q quit",
		s.Len(), s.Tick(), t.runner.SimTime())
	if t.paused {
		line = " PAUSED |" + line
	}
	if t.status != "" {
		line += " | " + t.status
	}

	off := row * t.bbw
	col := 0
	for _, ch := range line {
		if col >= t.bbw {
			break
		}
		t.backbuf[off+col] = termbox.Cell{Ch: ch, Fg: termbox.ColorBlack, Bg: termbox.ColorWhite}
		col++
	}
	for ; col < t.bbw; col++ {
		t.backbuf[off+col] = termbox.Cell{Ch: ' ', Bg: termbox.ColorWhite}
	}
}
