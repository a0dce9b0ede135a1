package paint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
	"github.com/afishhh/subrandr/font"
	"github.com/afishhh/subrandr/layout/inline"
)

func oneLineResult() inline.Result {
	line := inline.LineFragment{
		OriginX: 0,
		OriginY: fixed.FromInt(20),
		Width:   fixed.FromInt(30),
		Ascent:  fixed.FromInt(20),
		Descent: fixed.FromInt(5),
		Runs: []inline.GlyphRun{{
			FaceID: font.FaceID(1),
			SizePx: fixed.FromInt(16),
			Color:  style.White,
			Glyphs: []inline.Glyph{
				{GlyphID: 1, XAdvance: fixed.FromInt(10)},
				{GlyphID: 2, XAdvance: fixed.FromInt(10)},
			},
		}},
	}
	bg := fixed.Rect{Min: fixed.Point{X: 0, Y: 0}, Max: fixed.Point{X: fixed.FromInt(30), Y: fixed.FromInt(25)}}
	line.Background = &bg
	return inline.Result{Lines: []inline.LineFragment{line}, Bounds: bg}
}

func TestGenerateEmitsGlyphCommandsInOrder(t *testing.T) {
	result := oneLineResult()
	cmds := Generate(result, fixed.Point{}, document.FormatFlags{})

	var glyphCount int
	for _, c := range cmds {
		if c.Kind == KindGlyph {
			glyphCount++
		}
	}
	assert.Equal(t, 2, glyphCount)
}

func TestGenerateEmitsBlockBackgroundWhenNotPerLine(t *testing.T) {
	result := oneLineResult()
	result.Lines[0].Runs[0].Background = style.Color{R: 1, G: 2, B: 3, A: 255}

	cmds := Generate(result, fixed.Point{}, document.FormatFlags{BackgroundBoxPerLine: false})
	require.NotEmpty(t, cmds)
	assert.Equal(t, KindRectFill, cmds[0].Kind)
	assert.Equal(t, style.Color{R: 1, G: 2, B: 3, A: 255}, cmds[0].Color)
}

func TestGenerateEmitsNoBackgroundWhenFullyTransparent(t *testing.T) {
	result := oneLineResult()
	cmds := Generate(result, fixed.Point{}, document.FormatFlags{})
	for _, c := range cmds {
		assert.NotEqual(t, KindRectFill, c.Kind)
	}
}

func TestGenerateOrdersDecorationsBeforeGlyphsBySRV3Flag(t *testing.T) {
	result := oneLineResult()
	result.Lines[0].Runs[0].Underline = true
	result.Lines[0].Decorations = []inline.Decoration{{
		Rect:  fixed.Rect{Min: fixed.Point{X: 0, Y: fixed.FromInt(22)}, Max: fixed.Point{X: fixed.FromInt(20), Y: fixed.FromInt(23)}},
		Color: style.White,
	}}

	cmds := Generate(result, fixed.Point{}, document.FormatFlags{DecorationsAfterGlyphs: false})
	var sawRect, sawGlyphAfterRect bool
	for _, c := range cmds {
		if c.Kind == KindRectFill {
			sawRect = true
		}
		if c.Kind == KindGlyph && sawRect {
			sawGlyphAfterRect = true
		}
	}
	assert.True(t, sawGlyphAfterRect)
}

func TestEdgeStyleProducesShadowCommandBeforeGlyph(t *testing.T) {
	result := oneLineResult()
	result.Lines[0].Runs[0].Edge = style.EdgeDropShadow
	result.Lines[0].Runs[0].EdgeColor = style.Color{A: 255}
	result.Lines[0].Runs[0].EdgeBlur = fixed.FromInt(2)

	cmds := Generate(result, fixed.Point{}, document.FormatFlags{})
	require.NotEmpty(t, cmds)
	var shadowIdx, glyphIdx int = -1, -1
	for i, c := range cmds {
		if c.Kind == KindShadow && shadowIdx == -1 {
			shadowIdx = i
		}
		if c.Kind == KindGlyph && glyphIdx == -1 {
			glyphIdx = i
		}
	}
	require.NotEqual(t, -1, shadowIdx)
	require.NotEqual(t, -1, glyphIdx)
	assert.Less(t, shadowIdx, glyphIdx)
}

func TestPlaceGlyphsAccumulatesAdvanceAndQuantizesSubpixel(t *testing.T) {
	run := inline.GlyphRun{
		FaceID: font.FaceID(3),
		SizePx: fixed.FromInt(12),
		Glyphs: []inline.Glyph{
			{GlyphID: 5, XAdvance: fixed.FromFloat64(10.25)},
			{GlyphID: 6, XAdvance: fixed.FromFloat64(10.75)},
		},
	}
	placements, width := placeGlyphs(run, fixed.Point{})
	require.Len(t, placements, 2)
	assert.Equal(t, fixed.FromFloat64(21), width)
	assert.Equal(t, fixed.Zero, placements[0].Pos.X)
	assert.Equal(t, fixed.FromFloat64(10.25), placements[1].Pos.X)
}
