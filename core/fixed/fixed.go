// Package fixed implements the 26.6 fixed-point arithmetic used
// throughout subrandr for all geometry except final pixel addressing.
//
// The choice of 26.6 (rather than floats, or a TeX-style scaled-point
// scheme as used by some typesetters) matches the external font
// rasterizer's native units, so layout fingerprints can compare equal
// without any float round-trip.
package fixed

import (
	"errors"
	"fmt"
	"math"
)

// T is a signed 26.6 fixed-point value: the low 6 bits are the
// fractional part, so 1.0 is represented as 64.
type T int32

// One represents the value 1.0 in 26.6 units.
const One T = 64

// Zero is the additive identity.
const Zero T = 0

// Max is the largest representable magnitude before geometry is
// considered to have overflowed (±2^25 units, see spec invariant on
// fixed-point range).
const Max T = 1 << 25

// ErrOverflow is returned by arithmetic that would exceed Max in
// magnitude. Per the rendering contract, overflow is always fatal for
// the affected operation and must never silently wrap.
var ErrOverflow = errors.New("fixed: value exceeds representable range")

// FromInt converts a whole-unit integer (e.g. logical pixels) to T.
func FromInt(n int) T {
	return T(n) * One
}

// FromFloat64 converts a float64 logical-pixel value to T, rounding to
// the nearest 1/64.
func FromFloat64(f float64) T {
	return T(math.Round(f * float64(One)))
}

// Float64 returns the value as a float64 in logical-pixel units.
func (v T) Float64() float64 {
	return float64(v) / float64(One)
}

// Int returns the value truncated to whole logical pixels.
func (v T) Int() int {
	return int(v / One)
}

// Round returns the nearest whole logical pixel, rounding .5 down (the
// spec requires "exactly on .5" subpixel cases be assigned to the
// lower bin deterministically).
func (v T) Round() int {
	return int((v + One/2 - 1) >> 6) // arithmetic shift floors negatives too
}

// String implements fmt.Stringer.
func (v T) String() string {
	return fmt.Sprintf("%.4gpx", v.Float64())
}

// Add returns a+b, checking for overflow.
func Add(a, b T) (T, error) {
	r := a + b
	if overflowed(r) {
		return 0, ErrOverflow
	}
	return r, nil
}

// Sub returns a-b, checking for overflow.
func Sub(a, b T) (T, error) {
	r := a - b
	if overflowed(r) {
		return 0, ErrOverflow
	}
	return r, nil
}

// Mul multiplies a by an integer scale factor, checking for overflow.
func Mul(a T, scale int) (T, error) {
	r := int64(a) * int64(scale)
	if r > int64(Max) || r < -int64(Max) {
		return 0, ErrOverflow
	}
	return T(r), nil
}

// MulDiv computes a*num/den with 64-bit intermediate precision,
// rounding to nearest, checking for overflow. This is the primitive
// used for percentage-of-extent computations (AnchorSpec percentages,
// ruby proportional distribution).
func MulDiv(a T, num, den int) (T, error) {
	if den == 0 {
		return 0, errors.New("fixed: division by zero")
	}
	r := int64(a) * int64(num)
	half := int64(den) / 2
	if r >= 0 {
		r = (r + half) / int64(den)
	} else {
		r = (r - half) / int64(den)
	}
	if r > int64(Max) || r < -int64(Max) {
		return 0, ErrOverflow
	}
	return T(r), nil
}

func overflowed(v T) bool {
	return v > Max || v < -Max
}

// Min returns the smaller of a and b.
func Min(a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max2 returns the larger of a and b.
func Max2(a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Point is a 2D point with 26.6 coordinates.
type Point struct {
	X, Y T
}

// Rect is an axis-aligned rectangle with 26.6 coordinates, with Max
// exclusive (matches image.Rectangle conventions used by the
// rasterizer).
type Rect struct {
	Min, Max Point
}

// Width returns Max.X - Min.X.
func (r Rect) Width() T { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() T { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle contains no area.
func (r Rect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

// Union returns the smallest rectangle containing both r and s. If
// either is empty, the other is returned unchanged.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		Min: Point{Min(r.Min.X, s.Min.X), Min(r.Min.Y, s.Min.Y)},
		Max: Point{Max2(r.Max.X, s.Max.X), Max2(r.Max.Y, s.Max.Y)},
	}
}

// Inflate grows r by d on every side.
func (r Rect) Inflate(d T) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}
