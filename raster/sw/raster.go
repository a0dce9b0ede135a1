// Package sw implements the CPU Rasterizer (§4.5): the small set of
// pixel-compositing primitives the renderer walks the paint list
// against to produce the final premultiplied BGRA8 output buffer.
//
// Every primitive in this file is pure arithmetic over byte slices —
// no outline walking, no font access, no caching (the package's one
// cache, BlurCache, is in blur.go) — grounded on the
// teacher's own glyph-mask-to-alpha-image conversion in
// font/glyph.go, generalized from "write one glyph's coverage into an
// image.Alpha" to "composite coverage, a constant color, or another
// premultiplied bitmap into an arbitrary destination buffer with
// SRC-OVER blending". Standard library only (image.Rectangle for
// clipping arithmetic) — justified because blending four 8-bit
// channels with SRC-OVER is primitive arithmetic no pack library
// wraps at this level; every pack image library (golang.org/x/image,
// stdlib image/draw) operates on image.Image wrappers that would cost
// an allocation and an interface dispatch per pixel for work this
// package does in a tight byte-slice loop.
package sw

import (
	"image"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
)

// PMColor is a premultiplied BGRA color, the output buffer's native
// representation (§4.5, §6 "Output is BGRA8, premultiplied, sRGB").
type PMColor struct {
	B, G, R, A uint8
}

// Premultiply converts a straight style.Color to its premultiplied
// form, rounding each channel.
func Premultiply(c style.Color) PMColor {
	if c.A == 255 || c.A == 0 {
		return PMColor{B: scaleIf(c.B, c.A), G: scaleIf(c.G, c.A), R: scaleIf(c.R, c.A), A: c.A}
	}
	a := uint32(c.A)
	mul := func(v uint8) uint8 { return uint8((uint32(v)*a + 127) / 255) }
	return PMColor{B: mul(c.B), G: mul(c.G), R: mul(c.R), A: c.A}
}

func scaleIf(v, a uint8) uint8 {
	if a == 0 {
		return 0
	}
	return v
}

// Buffer is a premultiplied BGRA8 pixel buffer with a caller-chosen
// stride (§6 "caller-chosen stride"), matching the external render()
// signature's (buffer, width, height, stride) rather than assuming a
// tightly packed image.
type Buffer struct {
	Pixels        []byte
	Width, Height int
	Stride        int
}

// NewBuffer wraps an existing byte slice; it does not allocate or
// clear it — the renderer clears only the regions it is about to draw
// into (§4.7 step 5), never the whole buffer.
func NewBuffer(pixels []byte, width, height, stride int) Buffer {
	return Buffer{Pixels: pixels, Width: width, Height: height, Stride: stride}
}

// Bounds returns the buffer's own pixel rectangle, the outer clip
// every operation is implicitly intersected against.
func (b Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

func (b Buffer) offset(x, y int) int { return y*b.Stride + x*4 }

// ClearRect writes fully transparent black into rect, clipped to buf
// and clip. The renderer calls this before the first blit into a
// region so untouched pixels outside the drawn-bounds union stay
// whatever they already were (§4.7 step 6), while touched ones start
// from a known-transparent baseline.
func (b Buffer) ClearRect(rect image.Rectangle, clip image.Rectangle) {
	r := rect.Intersect(clip).Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Pixels[b.offset(r.Min.X, y):b.offset(r.Max.X, y)]
		for i := range row {
			row[i] = 0
		}
	}
}

// FillRect composites a constant premultiplied color over rect with
// SRC-OVER, clipped to buf and clip (§4.5 "Fill rect").
func (b Buffer) FillRect(rect image.Rectangle, clip image.Rectangle, c PMColor) {
	r := rect.Intersect(clip).Intersect(b.Bounds())
	if r.Empty() || c.A == 0 {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := b.offset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			over(b.Pixels[off:off+4], c)
			off += 4
		}
	}
}

// MaskBlit composites a constant color through an 8-bit coverage mask
// (§4.5 "Mask blit"): dst' = C·(M/255) + dst·(1 − C.a·M/255), rounded
// to the nearest 8-bit value per channel. origin is the mask's
// top-left placement in buffer coordinates; maskStride allows a mask
// whose backing array is wider than maskW (e.g. a shared blur scratch
// buffer).
func (b Buffer) MaskBlit(origin image.Point, mask []byte, maskW, maskH, maskStride int, c PMColor, clip image.Rectangle) {
	maskRect := image.Rect(origin.X, origin.Y, origin.X+maskW, origin.Y+maskH)
	r := maskRect.Intersect(clip).Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		my := y - origin.Y
		maskRow := mask[my*maskStride:]
		off := b.offset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			mx := x - origin.X
			m := maskRow[mx]
			if m != 0 {
				overMasked(b.Pixels[off:off+4], c, m)
			}
			off += 4
		}
	}
}

// ColorBlit composites a premultiplied BGRA source bitmap (a
// color/emoji glyph, §4.2 VariantColor) with SRC-OVER, scaling its
// alpha contribution by a uniform extra alpha multiplier (255 = no
// extra attenuation). The renderer always passes 255.
func (b Buffer) ColorBlit(origin image.Point, src []byte, srcW, srcH, srcStride int, alpha uint8, clip image.Rectangle) {
	srcRect := image.Rect(origin.X, origin.Y, origin.X+srcW, origin.Y+srcH)
	r := srcRect.Intersect(clip).Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := y - origin.Y
		srcRow := src[sy*srcStride:]
		off := b.offset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := (x - origin.X) * 4
			c := PMColor{B: srcRow[sx], G: srcRow[sx+1], R: srcRow[sx+2], A: srcRow[sx+3]}
			if alpha != 255 {
				c = attenuate(c, alpha)
			}
			if c.A != 0 {
				over(b.Pixels[off:off+4], c)
			}
			off += 4
		}
	}
}

// FillRectAA fills a sub-pixel-positioned axis-aligned rectangle
// (§4.5 "Stroke"): the interior pixels get full coverage and the
// boundary row/column gets fractional coverage proportional to how
// much of that pixel the rectangle actually covers, so a 0.3px-wide
// underline does not disappear and a rectangle that starts mid-pixel
// does not snap to the next pixel boundary.
func (b Buffer) FillRectAA(rect fixed.Rect, c PMColor, clip image.Rectangle) {
	if rect.Empty() || c.A == 0 {
		return
	}
	minX, minFracX := floorFrac(rect.Min.X)
	minY, minFracY := floorFrac(rect.Min.Y)
	maxX, maxFracX := floorFrac(rect.Max.X)
	maxY, maxFracY := floorFrac(rect.Max.Y)
	pixMaxX := maxX
	if maxFracX > 0 {
		pixMaxX++
	}
	pixMaxY := maxY
	if maxFracY > 0 {
		pixMaxY++
	}

	outer := image.Rect(minX, minY, pixMaxX, pixMaxY).Intersect(clip).Intersect(b.Bounds())
	if outer.Empty() {
		return
	}

	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		covY := rowCoverage(y, minY, minFracY, maxY, maxFracY)
		if covY <= 0 {
			continue
		}
		off := b.offset(outer.Min.X, y)
		for x := outer.Min.X; x < outer.Max.X; x++ {
			covX := rowCoverage(x, minX, minFracX, maxX, maxFracX)
			cov := covX * covY
			if cov > 0 {
				overMasked(b.Pixels[off:off+4], c, uint8(cov*255+0.5))
			}
			off += 4
		}
	}
}

// floorFrac splits a fixed-point coordinate into its integer pixel
// floor and the fractional part within [0, 1).
func floorFrac(v fixed.T) (int, float64) {
	px := int(v) >> 6
	frac := float64(int(v)&(int(fixed.One)-1)) / float64(fixed.One)
	return px, frac
}

// rowCoverage returns how much of pixel index p along one axis falls
// inside [min+minFrac, max+maxFrac).
func rowCoverage(p, min int, minFrac float64, max int, maxFrac float64) float64 {
	switch {
	case p < min || p > max:
		return 0
	case p == min && p == max:
		return maxFrac - minFrac
	case p == min:
		return 1 - minFrac
	case p == max:
		if maxFrac == 0 {
			return 0
		}
		return maxFrac
	default:
		return 1
	}
}

// over performs in-place SRC-OVER of c onto the 4-byte BGRA pixel at
// dst.
func over(dst []byte, c PMColor) {
	if c.A == 255 {
		dst[0], dst[1], dst[2], dst[3] = c.B, c.G, c.R, c.A
		return
	}
	inv := uint32(255 - c.A)
	dst[0] = uint8(uint32(c.B) + (uint32(dst[0])*inv+127)/255)
	dst[1] = uint8(uint32(c.G) + (uint32(dst[1])*inv+127)/255)
	dst[2] = uint8(uint32(c.R) + (uint32(dst[2])*inv+127)/255)
	dst[3] = uint8(uint32(c.A) + (uint32(dst[3])*inv+127)/255)
}

// overMasked performs SRC-OVER of c scaled by an 8-bit mask value.
func overMasked(dst []byte, c PMColor, m uint8) {
	if m == 255 {
		over(dst, c)
		return
	}
	mm := uint32(m)
	scaled := PMColor{
		B: uint8((uint32(c.B)*mm + 127) / 255),
		G: uint8((uint32(c.G)*mm + 127) / 255),
		R: uint8((uint32(c.R)*mm + 127) / 255),
		A: uint8((uint32(c.A)*mm + 127) / 255),
	}
	over(dst, scaled)
}

// attenuate scales every channel of c by an extra 8-bit alpha factor,
// keeping it premultiplied.
func attenuate(c PMColor, alpha uint8) PMColor {
	a := uint32(alpha)
	return PMColor{
		B: uint8((uint32(c.B)*a + 127) / 255),
		G: uint8((uint32(c.G)*a + 127) / 255),
		R: uint8((uint32(c.R)*a + 127) / 255),
		A: uint8((uint32(c.A)*a + 127) / 255),
	}
}
