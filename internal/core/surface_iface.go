package core

import (
	"encoding/hex"
	"errors"
	"image"
)

var ErrNotMounted = errors.New("surface not mounted")

// Fingerprint is a digest of the drawing state. Equal fingerprints mean
// equal state.
type Fingerprint [32]byte

func (f Fingerprint) String() string { return hex.EncodeToString(f[:8]) }

// Surface is the drawing engine as seen by the capture pipeline.
type Surface interface {
	// Mounted reports whether pixel access is currently possible.
	Mounted() bool
	Bounds() image.Rectangle
	// CopyInto copies current pixels into dst, scaling if sizes differ.
	// Returns ErrNotMounted when the surface is unavailable.
	CopyInto(dst *image.RGBA) error
	// Subscribe registers fn for every state mutation. fn may be called
	// from any goroutine and must not block.
	Subscribe(fn func(Fingerprint)) (cancel func())
}
