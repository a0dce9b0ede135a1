package font

import (
	"image"

	"golang.org/x/image/font/sfnt"
	fixedimg "golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/afishhh/subrandr/cache"
	"github.com/afishhh/subrandr/core/fixed"
)

// SubpixelX is one of the four quantized horizontal subpixel
// positions §4.2's Rasterize requires (0, 1/4, 2/4, 3/4 of a pixel).
type SubpixelX uint8

const (
	Subpixel0 SubpixelX = 0
	Subpixel1 SubpixelX = 1 // 1/4
	Subpixel2 SubpixelX = 2 // 2/4
	Subpixel3 SubpixelX = 3 // 3/4
)

// QuantizeSubpixelX buckets a fractional pixel offset (0..1) into one
// of the four quarters by flooring, so a value exactly on a quarter
// boundary (0.25, 0.5, 0.75) lands in the bin that starts there.
func QuantizeSubpixelX(fracPixel float64) SubpixelX {
	q := int(fracPixel*4 + 1e-9) // epsilon keeps FP noise from pushing an exact boundary down into the previous bin
	switch {
	case q <= 0:
		return Subpixel0
	case q >= 3:
		return Subpixel3
	default:
		return SubpixelX(q)
	}
}

// BitmapVariant distinguishes a monochrome coverage bitmap from a
// premultiplied-BGRA color bitmap (§4.2 Rasterize).
type BitmapVariant int

const (
	VariantCoverage BitmapVariant = iota
	VariantColor
)

// GlyphBitmap is the rasterized output for one (face, glyph, size,
// subpixel) key (§3 GlyphBitmap).
type GlyphBitmap struct {
	Width, Height      int
	BearingX, BearingY int // offset from the pen position to the bitmap's top-left, in pixels
	Variant            BitmapVariant
	Pixels             []byte // 1 byte/pixel if Coverage, 4 bytes/pixel BGRA premultiplied if Color
}

// GlyphKey identifies one cached rasterization.
type GlyphKey struct {
	Face     FaceID
	GlyphID  uint32
	SizePx   fixed.T
	Subpixel SubpixelX
}

// DefaultGlyphCacheBudget is the default soft byte cap for a
// GlyphCache (§4.2 "default 32 MiB for glyphs").
const DefaultGlyphCacheBudget = 32 << 20

// GlyphCache memoizes Rasterize results keyed by (face, glyph, size,
// subpixel), evicting approximately-least-recently-used entries once
// past its byte budget. Entries pinned for the current frame (via Pin)
// survive eviction until UnpinAll is called at render_frame's return,
// per §4.2.
type GlyphCache struct {
	lru *cache.LRU[GlyphKey, GlyphBitmap]
	r   *Rasterizer
}

// NewGlyphCache creates a GlyphCache with the given soft byte budget.
func NewGlyphCache(budget int64) *GlyphCache {
	return &GlyphCache{
		lru: cache.New[GlyphKey, GlyphBitmap](budget, glyphBitmapSize),
		r:   NewRasterizer(),
	}
}

func glyphBitmapSize(b GlyphBitmap) int64 {
	return int64(len(b.Pixels)) + 64 // small constant for key/struct overhead
}

// Get returns the cached bitmap for key if present.
func (c *GlyphCache) Get(key GlyphKey) (GlyphBitmap, bool) {
	return c.lru.Get(key)
}

// RasterizeCached rasterizes face's glyphID at the given size and
// subpixel bucket, reusing a cached bitmap when available and
// inserting a fresh one otherwise.
func (c *GlyphCache) RasterizeCached(face *Face, glyphID uint32, sizePx fixed.T, sub SubpixelX) (GlyphBitmap, error) {
	key := GlyphKey{Face: face.ID, GlyphID: glyphID, SizePx: sizePx, Subpixel: sub}
	if b, ok := c.lru.Get(key); ok {
		return b, nil
	}
	b, err := c.r.Rasterize(face, glyphID, sizePx, sub)
	if err != nil {
		return GlyphBitmap{}, err
	}
	c.lru.Put(key, b)
	return b, nil
}

// Pin protects key's entry from eviction until UnpinAll.
func (c *GlyphCache) Pin(key GlyphKey) { c.lru.Pin(key) }

// UnpinAll releases every pin, called once render_frame returns.
func (c *GlyphCache) UnpinAll() { c.lru.UnpinAll() }

// Rasterizer turns glyph outlines into coverage bitmaps: it walks the
// sfnt glyph outline's segments into a vector.Rasterizer, then reads
// back an 8-bit alpha mask. It only produces VariantCoverage bitmaps;
// color glyph tables (CPAL/COLR, embedded bitmaps) are not read, so
// color/emoji glyphs are rasterized from their outlines, if any, as
// plain coverage.
type Rasterizer struct {
	buf sfnt.Buffer
}

// NewRasterizer creates a Rasterizer with its own scratch buffer. Not
// safe for concurrent use. A GlyphCache holds one Rasterizer and takes
// no lock, so the Renderers of one Library share both.
func NewRasterizer() *Rasterizer { return &Rasterizer{} }

// Rasterize produces a coverage bitmap for one glyph of face at sizePx
// (26.6 pixels), offset by the quantized subpixel-X bucket (§4.2).
func (r *Rasterizer) Rasterize(face *Face, glyphID uint32, sizePx fixed.T, sub SubpixelX) (GlyphBitmap, error) {
	ppem := fixedimg.Int26_6(int32(sizePx))
	segs, err := face.SFNT.LoadGlyph(&r.buf, sfnt.GlyphIndex(glyphID), ppem, nil)
	if err != nil {
		return GlyphBitmap{}, err
	}
	if len(segs) == 0 {
		return GlyphBitmap{Variant: VariantCoverage}, nil
	}

	bounds := segs.Bounds()
	subOffset := fixedimg.Int26_6(int32(sub) * 16) // sub is in quarters of a 26.6 unit's 64ths: quarter = 16

	minX := (bounds.Min.X + subOffset).Floor()
	minY := bounds.Min.Y.Floor()
	maxX := (bounds.Max.X + subOffset).Ceil()
	maxY := bounds.Max.Y.Ceil()
	w := maxX - minX
	h := maxY - minY
	if w <= 0 || h <= 0 {
		return GlyphBitmap{Variant: VariantCoverage}, nil
	}

	rast := vector.NewRasterizer(w, h)
	originX := float32(minX) * -1
	originY := float32(minY) * -1
	walkSegments(rast, segs, originX+float32(subOffset)/64, originY)

	alpha := image.NewAlpha(image.Rect(0, 0, w, h))
	rast.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	return GlyphBitmap{
		Width:    w,
		Height:   h,
		BearingX: minX,
		BearingY: minY,
		Variant:  VariantCoverage,
		Pixels:   alpha.Pix,
	}, nil
}

// walkSegments feeds an sfnt outline into a vector.Rasterizer,
// shifting every point by (dx, dy) so the outline lands in the
// rasterizer's positive-quadrant working area.
func walkSegments(rast *vector.Rasterizer, segs sfnt.Segments, dx, dy float32) {
	toF32 := func(p fixedimg.Point26_6) (float32, float32) {
		return float32(p.X)/64 + dx, float32(p.Y)/64 + dy
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := toF32(seg.Args[0])
			rast.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := toF32(seg.Args[0])
			rast.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := toF32(seg.Args[0])
			x, y := toF32(seg.Args[1])
			rast.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c0x, c0y := toF32(seg.Args[0])
			c1x, c1y := toF32(seg.Args[1])
			x, y := toF32(seg.Args[2])
			rast.CubeTo(c0x, c0y, c1x, c1y, x, y)
		}
	}
}
