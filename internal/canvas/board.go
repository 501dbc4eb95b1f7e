// Package canvas is the drawing engine behind the broadcast: an ordered
// list of strokes rasterised with gogpu/gg.
package canvas

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/dkeye/Slate/internal/core"
	"github.com/fxamacker/cbor/v2"
	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
	xdraw "golang.org/x/image/draw"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("canvas: CBOR encoder initialization failed: " + err.Error())
	}
}

// state is what the fingerprint covers.
type state struct {
	Background string   `cbor:"bg"`
	Strokes    []Stroke `cbor:"strokes"`
}

// Board is safe for concurrent use. Subscribers are called after the
// board lock is released.
type Board struct {
	mu         sync.RWMutex
	dc         *gg.Context
	background string
	strokes    []Stroke
	mounted    bool
	print      core.Fingerprint

	subsMu  sync.Mutex
	subs    map[uint64]func(core.Fingerprint)
	nextSub uint64
}

func NewBoard(width, height int, background string) *Board {
	b := &Board{
		dc:         gg.NewContext(width, height),
		background: background,
		mounted:    true,
		subs:       make(map[uint64]func(core.Fingerprint)),
	}
	b.mu.Lock()
	b.redrawLocked()
	b.mu.Unlock()
	return b
}

// Apply draws s on top of the board. A stroke without an ID gets one.
func (b *Board) Apply(s Stroke) (Stroke, error) {
	if err := s.Validate(); err != nil {
		return s, err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Color == "" {
		s.Color = "#000000"
	}

	b.mu.Lock()
	b.strokes = append(b.strokes, s)
	b.drawLocked(s)
	b.flushLocked()
	fp := b.refreshPrintLocked()
	b.mu.Unlock()

	b.notify(fp)
	return s, nil
}

// Clear removes all strokes.
func (b *Board) Clear() {
	b.mu.Lock()
	b.strokes = nil
	b.redrawLocked()
	fp := b.refreshPrintLocked()
	b.mu.Unlock()

	b.notify(fp)
}

// Redraw re-rasterises the current strokes. The state does not change but
// subscribers are still notified, like any engine-side repaint.
func (b *Board) Redraw() {
	b.mu.Lock()
	b.redrawLocked()
	fp := b.print
	b.mu.Unlock()

	b.notify(fp)
}

func (b *Board) Strokes() []Stroke {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.strokes)
}

// Snapshot returns a copy of the rendered board.
func (b *Board) Snapshot() image.Image {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dc.Image()
}

func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dc.Close()
}

func (b *Board) Fingerprint() core.Fingerprint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.print
}

func (b *Board) Mount() {
	b.mu.Lock()
	b.mounted = true
	b.mu.Unlock()
	log.Info().Str("module", "canvas").Msg("board mounted")
}

func (b *Board) Unmount() {
	b.mu.Lock()
	b.mounted = false
	b.mu.Unlock()
	log.Info().Str("module", "canvas").Msg("board unmounted")
}

func (b *Board) Mounted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mounted
}

func (b *Board) Bounds() image.Rectangle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return image.Rect(0, 0, b.dc.Width(), b.dc.Height())
}

// CopyInto copies the board pixels into dst, scaling when sizes differ.
func (b *Board) CopyInto(dst *image.RGBA) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.mounted {
		return core.ErrNotMounted
	}

	pm := b.dc.ResizeTarget()
	src := &image.RGBA{
		Pix:    pm.Data(),
		Stride: pm.Width() * 4,
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
	if dst.Rect.Eq(src.Rect) && dst.Stride == src.Stride {
		copy(dst.Pix, src.Pix)
		return nil
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return nil
}

func (b *Board) Subscribe(fn func(core.Fingerprint)) (cancel func()) {
	b.subsMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.subsMu.Lock()
			delete(b.subs, id)
			b.subsMu.Unlock()
		})
	}
}

func (b *Board) notify(fp core.Fingerprint) {
	b.subsMu.Lock()
	fns := make([]func(core.Fingerprint), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subsMu.Unlock()

	for _, fn := range fns {
		fn(fp)
	}
}

func (b *Board) redrawLocked() {
	b.dc.ClearWithColor(gg.Hex(b.background))
	for _, s := range b.strokes {
		b.drawLocked(s)
	}
	b.flushLocked()
}

func (b *Board) flushLocked() {
	if err := b.dc.FlushGPU(); err != nil {
		log.Warn().Err(err).Str("module", "canvas").Msg("gpu flush failed")
	}
}

func (b *Board) drawLocked(s Stroke) {
	b.dc.SetHexColor(s.Color)
	b.dc.SetLineWidth(s.Width)
	b.dc.SetLineCap(gg.LineCapRound)

	if len(s.Points) == 1 {
		p := s.Points[0]
		b.dc.DrawCircle(p.X, p.Y, s.Width/2)
		if err := b.dc.Fill(); err != nil {
			log.Warn().Err(err).Str("module", "canvas").Str("stroke", s.ID).Msg("fill failed")
		}
		return
	}
	b.dc.MoveTo(s.Points[0].X, s.Points[0].Y)
	for _, p := range s.Points[1:] {
		b.dc.LineTo(p.X, p.Y)
	}
	if err := b.dc.Stroke(); err != nil {
		log.Warn().Err(err).Str("module", "canvas").Str("stroke", s.ID).Msg("stroke failed")
	}
}

func (b *Board) refreshPrintLocked() core.Fingerprint {
	fp, err := Fingerprint(b.background, b.strokes)
	if err != nil {
		log.Error().Err(err).Str("module", "canvas").Msg("fingerprint failed")
		return b.print
	}
	b.print = fp
	return fp
}

// Fingerprint digests a board state: deterministic CBOR, then BLAKE3.
func Fingerprint(background string, strokes []Stroke) (core.Fingerprint, error) {
	data, err := encMode.Marshal(state{Background: background, Strokes: strokes})
	if err != nil {
		return core.Fingerprint{}, fmt.Errorf("encode board state: %w", err)
	}
	return blake3.Sum256(data), nil
}
