package sw

import (
	"hash/fnv"
	"math"

	"github.com/afishhh/subrandr/cache"
	"github.com/afishhh/subrandr/core/fixed"
)

// Coverage is an 8-bit single-channel alpha buffer — the scratch
// surface shadow/edge paint commands rasterize their source glyphs
// into before blurring (§4.4 step 2, §4.6).
type Coverage struct {
	Pixels        []byte
	Width, Height int
}

// NewCoverage allocates a zeroed Coverage of the given size.
func NewCoverage(w, h int) Coverage {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Coverage{Pixels: make([]byte, w*h), Width: w, Height: h}
}

// maxPixelRadius is the clamp §4.6 requires ("pixel radius... clamped
// to [0, 256]"), guarding against a pathological dpi/radius
// combination turning one blur into an unbounded amount of work.
const maxPixelRadius = 256

// PixelRadius converts a logical (26.6, CSS-pixel-scale) blur radius
// to the device-pixel radius the box blur actually runs at, per §4.6:
// "R = round(r × dpi/72)", clamped to [0, 256].
func PixelRadius(r fixed.T, dpi uint32) int {
	px := r.Float64() * float64(dpi) / 72.0
	R := int(math.Round(px))
	if R < 0 {
		R = 0
	}
	if R > maxPixelRadius {
		R = maxPixelRadius
	}
	return R
}

// Blur3 runs the separable three-pass box blur §4.6 specifies: three
// horizontal box-average passes followed by three vertical ones, each
// with window width 2R+1, approximating a Gaussian with σ ≈ R/√3. A
// zero radius is the identity (§8 "blur radius 0 = identity"),
// returned unpadded since there is nothing to pad for.
//
// The result is padded by 3R on every side relative to src's own
// bounds — src is treated as already being the glyph coverage's tight
// bounding box, and out-of-bounds source pixels contribute zero
// coverage rather than being clamped to the nearest edge pixel.
func Blur3(src Coverage, radius int) Coverage {
	if radius <= 0 {
		return src
	}
	pad := 3 * radius
	work := padCoverage(src, pad)
	for i := 0; i < 3; i++ {
		boxBlurHorizontal(work, radius)
	}
	for i := 0; i < 3; i++ {
		boxBlurVertical(work, radius)
	}
	return work
}

// padCoverage returns a new Coverage pad pixels larger on every side,
// with src copied into the center and the border left zero.
func padCoverage(src Coverage, pad int) Coverage {
	out := NewCoverage(src.Width+2*pad, src.Height+2*pad)
	for y := 0; y < src.Height; y++ {
		srcRow := src.Pixels[y*src.Width : (y+1)*src.Width]
		dstOff := (y+pad)*out.Width + pad
		copy(out.Pixels[dstOff:dstOff+src.Width], srcRow)
	}
	return out
}

// boxBlurHorizontal replaces each row with its sliding window average
// of width 2R+1, treating samples outside [0, width) as zero, using a
// running sum so the whole row costs O(width) rather than O(width·R).
func boxBlurHorizontal(c Coverage, radius int) {
	window := 2*radius + 1
	row := make([]uint16, c.Width)
	for y := 0; y < c.Height; y++ {
		base := y * c.Width
		var sum int32
		for x := -radius; x <= radius; x++ {
			if x >= 0 && x < c.Width {
				sum += int32(c.Pixels[base+x])
			}
		}
		for x := 0; x < c.Width; x++ {
			row[x] = uint16((sum + int32(window)/2) / int32(window))
			leaving := x - radius
			entering := x + radius + 1
			if leaving >= 0 && leaving < c.Width {
				sum -= int32(c.Pixels[base+leaving])
			}
			if entering >= 0 && entering < c.Width {
				sum += int32(c.Pixels[base+entering])
			}
		}
		for x := 0; x < c.Width; x++ {
			c.Pixels[base+x] = uint8(row[x])
		}
	}
}

// boxBlurVertical is boxBlurHorizontal's transpose, operating down
// columns with the same running-sum technique.
func boxBlurVertical(c Coverage, radius int) {
	window := 2*radius + 1
	col := make([]uint16, c.Height)
	for x := 0; x < c.Width; x++ {
		var sum int32
		for y := -radius; y <= radius; y++ {
			if y >= 0 && y < c.Height {
				sum += int32(c.Pixels[y*c.Width+x])
			}
		}
		for y := 0; y < c.Height; y++ {
			col[y] = uint16((sum + int32(window)/2) / int32(window))
			leaving := y - radius
			entering := y + radius + 1
			if leaving >= 0 && leaving < c.Height {
				sum -= int32(c.Pixels[leaving*c.Width+x])
			}
			if entering >= 0 && entering < c.Height {
				sum += int32(c.Pixels[entering*c.Width+x])
			}
		}
		for y := 0; y < c.Height; y++ {
			c.Pixels[y*c.Width+x] = uint8(col[y])
		}
	}
}

// ContentHash hashes a Coverage's dimensions and pixels, the
// "coverage_content_hash" half of the (coverage_content_hash, R) blur
// cache key §4.6 specifies.
func ContentHash(c Coverage) uint64 {
	h := fnv.New64a()
	var dims [8]byte
	dims[0] = byte(c.Width)
	dims[1] = byte(c.Width >> 8)
	dims[2] = byte(c.Width >> 16)
	dims[3] = byte(c.Width >> 24)
	dims[4] = byte(c.Height)
	dims[5] = byte(c.Height >> 8)
	dims[6] = byte(c.Height >> 16)
	dims[7] = byte(c.Height >> 24)
	h.Write(dims[:])
	h.Write(c.Pixels)
	return h.Sum64()
}

// BlurKey is the full blur cache key: content hash plus device-pixel
// radius (§4.6).
type BlurKey struct {
	ContentHash uint64
	Radius      int
}

// BlurCache memoizes Blur3 results, so repeated identical shadow
// passes (the overwhelmingly common case — most subtitle lines in a
// document share one glyph shape and one edge style) cost one box
// blur instead of one per frame.
type BlurCache struct {
	lru *cache.LRU[BlurKey, Coverage]
}

// NewBlurCache creates a BlurCache with the given soft byte budget.
func NewBlurCache(budget int64) *BlurCache {
	return &BlurCache{lru: cache.New[BlurKey, Coverage](budget, coverageSize)}
}

func coverageSize(c Coverage) int64 { return int64(len(c.Pixels)) + 32 }

// Blur returns src blurred by radius, reusing a cached result keyed on
// (ContentHash(src), radius) when available.
func (bc *BlurCache) Blur(src Coverage, radius int) Coverage {
	key := BlurKey{ContentHash: ContentHash(src), Radius: radius}
	if c, ok := bc.lru.Get(key); ok {
		return c
	}
	out := Blur3(src, radius)
	bc.lru.Put(key, out)
	return out
}
