// Package rendercontext implements the Context struct described in
// §6: the DPI, video size, and player padding a render call is
// performed against. It is shared by the event selector (anchor
// resolution), the layout engine (target width), and the painter
// (clip rectangle), so it lives in core/ rather than inside any one
// of those packages.
package rendercontext

import (
	"math"

	"github.com/afishhh/subrandr/core/errs"
	"github.com/afishhh/subrandr/core/fixed"
)

// Context mirrors §6's Context struct byte for byte: dpi plus video
// size and padding in 26.6 units.
type Context struct {
	DPI                         uint32
	VideoWidth, VideoHeight     fixed.T
	PaddingLeft, PaddingRight   fixed.T
	PaddingTop, PaddingBottom   fixed.T
}

// PPI converts DPI to screen-equivalent pixels-per-inch, per §6's
// parenthetical "screen-equivalent ppi = dpi × 96/72".
func (c Context) PPI() float64 {
	return float64(c.DPI) * 96.0 / 72.0
}

// InnerRect returns the video rectangle minus padding: the area
// AnchorSpec percentages are resolved against (§3 AnchorSpec,
// §4.1 step 2).
func (c Context) InnerRect() fixed.Rect {
	return fixed.Rect{
		Min: fixed.Point{X: c.PaddingLeft, Y: c.PaddingTop},
		Max: fixed.Point{
			X: c.VideoWidth - c.PaddingRight,
			Y: c.VideoHeight - c.PaddingBottom,
		},
	}
}

// Validate checks the context for the failure modes §7 assigns to
// InvalidArgument: non-finite or overflowing fixed-point dimensions,
// and a degenerate (non-positive or inverted) inner rectangle.
func (c Context) Validate() error {
	vals := []fixed.T{c.VideoWidth, c.VideoHeight, c.PaddingLeft, c.PaddingRight, c.PaddingTop, c.PaddingBottom}
	for _, v := range vals {
		f := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errs.New(errs.InvalidArgument, "context dimension is not finite")
		}
		if v > fixed.Max || v < -fixed.Max {
			return errs.New(errs.InvalidArgument, "context dimension overflows 26.6 range")
		}
	}
	if c.VideoWidth <= 0 || c.VideoHeight <= 0 {
		return errs.New(errs.InvalidArgument, "video size must be positive")
	}
	inner := c.InnerRect()
	if inner.Empty() {
		return errs.New(errs.InvalidArgument, "padding leaves no inner area")
	}
	return nil
}

// Fingerprint returns a value suitable as the F_ctx hash described in
// §4.7 step 1: two contexts with the same Fingerprint produce
// identical layout for identical input, and the frame cache is
// invalidated whenever it changes.
func (c Context) Fingerprint() uint64 {
	h := uint64(14695981039346656037) // FNV-1a offset basis
	mix := func(v uint64) {
		h ^= v
		h *= 1099511628211
	}
	mix(uint64(c.DPI))
	mix(uint64(uint32(c.VideoWidth)))
	mix(uint64(uint32(c.VideoHeight)))
	mix(uint64(uint32(c.PaddingLeft)))
	mix(uint64(uint32(c.PaddingRight)))
	mix(uint64(uint32(c.PaddingTop)))
	mix(uint64(uint32(c.PaddingBottom)))
	return h
}
