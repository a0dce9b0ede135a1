package sw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/fixed"
)

func TestPixelRadiusScalesByDPIOver72(t *testing.T) {
	assert.Equal(t, 2, PixelRadius(fixed.FromInt(1), 144))
	assert.Equal(t, 1, PixelRadius(fixed.FromInt(1), 72))
	assert.Equal(t, 0, PixelRadius(0, 144))
}

func TestPixelRadiusClampsToMax(t *testing.T) {
	assert.Equal(t, maxPixelRadius, PixelRadius(fixed.FromInt(1000), 7200))
}

func TestBlur3ZeroRadiusIsIdentity(t *testing.T) {
	src := NewCoverage(3, 3)
	src.Pixels[4] = 255
	out := Blur3(src, 0)
	assert.Equal(t, src.Pixels, out.Pixels)
}

func TestBlur3PadsByThreeTimesRadius(t *testing.T) {
	src := NewCoverage(4, 4)
	out := Blur3(src, 2)
	assert.Equal(t, 4+2*3*2, out.Width)
	assert.Equal(t, 4+2*3*2, out.Height)
}

func TestBlur3SpreadsCoverageOutward(t *testing.T) {
	src := NewCoverage(1, 1)
	src.Pixels[0] = 255
	out := Blur3(src, 4)
	require.Greater(t, out.Width, 1)
	center := out.Width/2*out.Width + out.Width/2
	var total int
	for _, p := range out.Pixels {
		total += int(p)
	}
	assert.Greater(t, total, 0)
	assert.Less(t, int(out.Pixels[center]), 255)
}

func TestBlur3HorizontalThenVerticalCommutesWithVerticalThenHorizontal(t *testing.T) {
	src := NewCoverage(5, 5)
	src.Pixels[12] = 200
	a := padCoverage(src, 6)
	boxBlurHorizontal(a, 2)
	boxBlurVertical(a, 2)

	b := padCoverage(src, 6)
	boxBlurVertical(b, 2)
	boxBlurHorizontal(b, 2)

	assert.Equal(t, a.Pixels, b.Pixels)
}

func TestContentHashDiffersForDifferentPixels(t *testing.T) {
	a := NewCoverage(2, 2)
	b := NewCoverage(2, 2)
	b.Pixels[0] = 1
	assert.NotEqual(t, ContentHash(a), ContentHash(b))
}

func TestBlurCacheReturnsSameResultForSameKey(t *testing.T) {
	bc := NewBlurCache(1 << 20)
	src := NewCoverage(4, 4)
	src.Pixels[5] = 255
	first := bc.Blur(src, 3)
	second := bc.Blur(src, 3)
	assert.Equal(t, first.Pixels, second.Pixels)
}
