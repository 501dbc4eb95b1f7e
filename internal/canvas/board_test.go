package canvas

import (
	"errors"
	"image"
	"testing"

	"github.com/dkeye/Slate/internal/core"
)

func line(x0, y0, x1, y1 float64) Stroke {
	return Stroke{Points: []Point{{x0, y0}, {x1, y1}}, Color: "#000000", Width: 6}
}

func TestBoardBackground(t *testing.T) {
	b := NewBoard(64, 48, "#ffffff")
	dst := image.NewRGBA(b.Bounds())
	if err := b.CopyInto(dst); err != nil {
		t.Fatalf("CopyInto: %v", err)
	}
	c := dst.RGBAAt(10, 10)
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Fatalf("background pixel = %v, want white", c)
	}
}

func TestBoardApplyChangesFingerprint(t *testing.T) {
	b := NewBoard(64, 48, "#ffffff")
	before := b.Fingerprint()

	s, err := b.Apply(line(0, 24, 64, 24))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.ID == "" {
		t.Fatal("stroke ID not assigned")
	}
	if b.Fingerprint() == before {
		t.Fatal("fingerprint unchanged after Apply")
	}
	if got := len(b.Strokes()); got != 1 {
		t.Fatalf("strokes = %d, want 1", got)
	}
}

func TestFingerprintStable(t *testing.T) {
	strokes := []Stroke{
		{ID: "a", Points: []Point{{1, 2}, {3, 4}}, Color: "#ff0000", Width: 2},
		{ID: "b", Points: []Point{{5, 5}}, Color: "#00ff00", Width: 8},
	}
	f1, err := Fingerprint("#ffffff", strokes)
	if err != nil {
		t.Fatal(err)
	}
	f2, _ := Fingerprint("#ffffff", append([]Stroke(nil), strokes...))
	if f1 != f2 {
		t.Fatal("same state produced different fingerprints")
	}
	f3, _ := Fingerprint("#ffffff", strokes[:1])
	if f1 == f3 {
		t.Fatal("different state produced same fingerprint")
	}
	f4, _ := Fingerprint("#000000", strokes)
	if f1 == f4 {
		t.Fatal("background not covered by fingerprint")
	}
}

func TestBoardClearRestoresEmptyFingerprint(t *testing.T) {
	b := NewBoard(32, 32, "#ffffff")
	empty := b.Fingerprint()
	if _, err := b.Apply(line(0, 0, 31, 31)); err != nil {
		t.Fatal(err)
	}
	b.Clear()
	if b.Fingerprint() != empty {
		t.Fatal("Clear did not restore the empty-board fingerprint")
	}
}

func TestBoardSubscribe(t *testing.T) {
	b := NewBoard(32, 32, "#ffffff")

	var got []core.Fingerprint
	cancel := b.Subscribe(func(fp core.Fingerprint) { got = append(got, fp) })

	if _, err := b.Apply(line(0, 0, 10, 10)); err != nil {
		t.Fatal(err)
	}
	b.Redraw()
	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if got[0] != got[1] {
		t.Fatal("Redraw reported a different fingerprint for unchanged state")
	}

	cancel()
	cancel()
	b.Clear()
	if len(got) != 2 {
		t.Fatalf("notified after cancel: %d", len(got))
	}
}

func TestBoardRejectsInvalidStroke(t *testing.T) {
	b := NewBoard(32, 32, "#ffffff")
	cases := []Stroke{
		{Width: 2},
		{Points: []Point{{1, 1}}, Width: 0},
		{Points: []Point{{1, 1}}, Width: MaxStrokeWidth + 1},
	}
	for _, s := range cases {
		if _, err := b.Apply(s); !errors.Is(err, ErrInvalidStroke) {
			t.Errorf("Apply(%+v) err = %v, want ErrInvalidStroke", s, err)
		}
	}
}

func TestBoardUnmounted(t *testing.T) {
	b := NewBoard(32, 32, "#ffffff")
	b.Unmount()
	if b.Mounted() {
		t.Fatal("still mounted")
	}
	if err := b.CopyInto(image.NewRGBA(b.Bounds())); !errors.Is(err, core.ErrNotMounted) {
		t.Fatalf("CopyInto err = %v, want ErrNotMounted", err)
	}
	b.Mount()
	if err := b.CopyInto(image.NewRGBA(b.Bounds())); err != nil {
		t.Fatalf("CopyInto after Mount: %v", err)
	}
}

func TestBoardCopyIntoScales(t *testing.T) {
	b := NewBoard(64, 64, "#ff0000")
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if err := b.CopyInto(dst); err != nil {
		t.Fatal(err)
	}
	c := dst.RGBAAt(8, 8)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Fatalf("scaled pixel = %v, want red", c)
	}
}
