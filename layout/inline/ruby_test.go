package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

func TestLayoutRubyProducesBaseAndAnnotation(t *testing.T) {
	res := testResources(t)
	it := item{
		kind:           itemRuby,
		style:          style.Default(),
		rubyBase:       []document.InlineNode{document.NewText("base", style.Style{})},
		rubyAnnotation: []document.InlineNode{document.NewText("kana", style.Style{})},
	}

	rr := layoutRuby(it, res)
	assert.Greater(t, int(rr.Width), 0)
	assert.Equal(t, fixed.T(0), rr.Base.OriginY, "layoutRuby folds the nested baseline into glyph offsets")
	assert.Less(t, int(rr.AnnotationOffsetY), 0, "annotation sits above the base baseline")
}

func TestSpreadToWidthExpandsShorterLine(t *testing.T) {
	line := LineFragment{
		Width: fixed.FromInt(4),
		Runs: []GlyphRun{{Glyphs: []Glyph{
			{XAdvance: fixed.FromInt(2)},
			{XAdvance: fixed.FromInt(2)},
		}}},
	}
	out := spreadToWidth(line, fixed.FromInt(10))
	assert.Equal(t, fixed.FromInt(10), out.Width)
}

func TestSpreadToWidthNoopWhenAlreadyWide(t *testing.T) {
	line := LineFragment{Width: fixed.FromInt(10)}
	out := spreadToWidth(line, fixed.FromInt(4))
	assert.Equal(t, fixed.FromInt(10), out.Width)
}
