//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"reflex/internal/buildinfo"
	"reflex/internal/ringview"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Hz        int
	Seed      uint32
	TracePath string
}

const (
	windowWidth = 320
	ringHeight  = 260
	paneHeight  = 100

	ledRadius   = 11
	ringRadius  = 92
	labelRadius = 116
)

var (
	font       = &proggy.TinySZ8pt7b
	colorBG    = color.RGBA{R: 10, G: 10, B: 16, A: 255}
	colorText  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	colorLabel = color.RGBA{R: 110, G: 110, B: 120, A: 255}
	colorRec   = color.RGBA{R: 255, G: 60, B: 60, A: 255}
)

// RunWindow opens a desktop window showing the LED ring and the log. Space is the button,
// r/s start and stop a trace, q or Esc quits. It blocks until the window closes.
func RunWindow(ctx context.Context, newApp func(HAL) App, cfg WindowConfig) error {
	logs := &lineQueue{}
	h := newHost(HostConfig{Hz: cfg.Hz, Seed: cfg.Seed}, io.MultiWriter(os.Stdout, logs))

	tracePath := cfg.TracePath
	if tracePath != "" {
		if err := h.trace.Start(tracePath, h.hz); err != nil {
			return err
		}
	} else {
		tracePath = defaultTracePath
	}
	defer func() {
		if err := h.trace.Stop(); err != nil {
			h.logger.WriteLineString("trace: " + err.Error())
		}
	}()

	app := newApp(h)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- h.run(ctx, app, nil) }()

	g := newHostGame(h, app, logs, errc, tracePath)
	ebiten.SetWindowTitle(buildinfo.Name + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(windowWidth*2, (ringHeight+paneHeight)*2)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	cancel()
	h.logger.WriteLineString(h.summary())
	return err
}

type hostGame struct {
	h         *hostHAL
	app       App
	kbd       *hostKeyboard
	errc      <-chan error
	tracePath string
	held      bool

	ring *hostFramebuffer
	pane *hostFramebuffer
	term *tinyterm.Terminal
	logs *lineQueue

	ringImg *ebiten.Image
	paneImg *ebiten.Image
	scratch []byte
}

func newHostGame(h *hostHAL, app App, logs *lineQueue, errc <-chan error, tracePath string) *hostGame {
	g := &hostGame{
		h:         h,
		app:       app,
		kbd:       newHostKeyboard(),
		errc:      errc,
		tracePath: tracePath,
		ring:      newHostFramebuffer(windowWidth, ringHeight),
		pane:      newHostFramebuffer(windowWidth, paneHeight),
		logs:      logs,
	}
	g.term = tinyterm.NewTerminal(g.pane)
	g.term.Configure(&tinyterm.Config{
		Font:       font,
		FontHeight: 10,
		FontOffset: 6,
	})
	return g
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.errc:
		if err == nil || errors.Is(err, context.Canceled) {
			return ebiten.Termination
		}
		return err
	default:
	}

	g.kbd.poll()
	if g.kbd.quit {
		return ebiten.Termination
	}
	if g.kbd.button != g.held {
		g.held = g.kbd.button
		g.h.press(g.held)
	}
	if g.kbd.traceStart {
		if err := g.h.trace.Start(g.tracePath, g.h.hz); err != nil {
			g.h.logger.WriteLineString("trace: " + err.Error())
		} else {
			g.h.logger.WriteLineString("trace: recording " + g.tracePath)
		}
	}
	if g.kbd.traceStop && g.h.trace.Active() {
		if err := g.h.trace.Stop(); err != nil {
			g.h.logger.WriteLineString("trace: " + err.Error())
		} else {
			g.h.logger.WriteLineString("trace: stopped")
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	g.drawRing(g.h.meter.Take())
	for _, line := range g.logs.drain() {
		_, _ = g.term.Write([]byte("\n" + line))
	}

	if g.ringImg == nil {
		g.ringImg = ebiten.NewImage(windowWidth, ringHeight)
		g.paneImg = ebiten.NewImage(windowWidth, paneHeight)
		g.scratch = make([]byte, windowWidth*ringHeight*4)
	}
	g.blit(screen, g.ring, g.ringImg, 0)
	g.blit(screen, g.pane, g.paneImg, ringHeight)
}

func (g *hostGame) drawRing(brightness [16]float64) {
	fb := g.ring
	fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)

	cx, cy := windowWidth/2, ringHeight/2+8
	leds := ringview.Points(cx, cy, ringRadius)
	labels := ringview.Points(cx, cy, labelRadius)
	for i, p := range leds {
		fb.FillCircle(p.X, p.Y, ledRadius, ledColor(brightness[i]))
		s := strconv.Itoa(i)
		w, _ := tinyfont.LineWidth(font, s)
		tinyfont.WriteLine(fb, font, int16(labels[i].X)-int16(w/2), int16(labels[i].Y)+3, s, colorLabel)
	}

	status := buildinfo.Name
	if sr, ok := g.app.(StatusReporter); ok {
		status = sr.Status()
	}
	tinyfont.WriteLine(fb, font, 4, 10, status, colorText)
	if g.h.trace.Active() {
		tinyfont.WriteLine(fb, font, windowWidth-28, ringHeight-6, "REC", colorRec)
	}
}

func (g *hostGame) blit(screen *ebiten.Image, fb *hostFramebuffer, img *ebiten.Image, y int) {
	n := fb.width * fb.height * 4
	fb.snapshotRGBA(g.scratch[:n])
	img.WritePixels(g.scratch[:n])
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(y))
	screen.DrawImage(img, op)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, ringHeight + paneHeight
}

// ledColor shades an LED from dark to full red by its perceived brightness.
func ledColor(b float64) color.RGBA {
	if b < 0 {
		b = 0
	}
	if b > 1 {
		b = 1
	}
	// Multiplexed LEDs look brighter than their duty cycle.
	if b > 0 && b < 0.35 {
		b = 0.35 + b
	}
	return color.RGBA{
		R: uint8(40 + b*215),
		G: uint8(8 + b*40),
		B: uint8(8 + b*24),
		A: 255,
	}
}
