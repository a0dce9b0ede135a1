package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
)

func TestRunWidthSumsAdvances(t *testing.T) {
	run := GlyphRun{Glyphs: []Glyph{
		{XAdvance: fixed.FromInt(2)},
		{XAdvance: fixed.FromInt(3)},
	}}
	assert.Equal(t, fixed.FromInt(5), runWidth(run))
}

func TestDecorationsForUnderline(t *testing.T) {
	line := LineFragment{
		OriginY: fixed.FromInt(10),
		Runs: []GlyphRun{{
			SizePx:    fixed.FromInt(16),
			Underline: true,
			Color:     style.White,
			Glyphs:    []Glyph{{XAdvance: fixed.FromInt(8)}},
		}},
	}
	decs := decorationsFor(line)
	require.Len(t, decs, 1)
	assert.False(t, decs[0].Strikethrough)
	assert.Equal(t, style.White, decs[0].Color)
	assert.True(t, decs[0].Rect.Min.Y > line.OriginY)
}

func TestDecorationsForStrikethroughSitsAboveBaseline(t *testing.T) {
	line := LineFragment{
		OriginY: fixed.FromInt(10),
		Runs: []GlyphRun{{
			SizePx:        fixed.FromInt(16),
			Strikethrough: true,
			Glyphs:        []Glyph{{XAdvance: fixed.FromInt(8)}},
		}},
	}
	decs := decorationsFor(line)
	require.Len(t, decs, 1)
	assert.True(t, decs[0].Strikethrough)
	assert.True(t, decs[0].Rect.Min.Y < line.OriginY)
}

func TestDecorationsForNoDecorationRuns(t *testing.T) {
	line := LineFragment{Runs: []GlyphRun{{Glyphs: []Glyph{{XAdvance: fixed.FromInt(8)}}}}}
	assert.Empty(t, decorationsFor(line))
}

func TestPositionLinesEmptyUnitsProducesZeroMetricLine(t *testing.T) {
	lines := positionLines([][]breakUnit{nil}, nil, 0)
	require.Len(t, lines, 1)
	assert.Equal(t, fixed.Zero, lines[0].Width)
	assert.Equal(t, fixed.Zero, lines[0].Ascent)
}
