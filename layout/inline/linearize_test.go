package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

func TestLinearizeFlattensTextAndBreaks(t *testing.T) {
	root := document.NewInline([]document.InlineNode{
		document.NewText("hello", style.Style{}),
		document.NewLineBreak(),
		document.NewText("world", style.Style{}),
	}, style.Style{})

	items := linearize(root, style.Default())
	require.Len(t, items, 3)
	assert.Equal(t, itemText, items[0].kind)
	assert.Equal(t, "hello", items[0].text)
	assert.Equal(t, itemLineBreak, items[1].kind)
	assert.Equal(t, itemText, items[2].kind)
	assert.Equal(t, "world", items[2].text)
}

func TestLinearizeCascadesStyle(t *testing.T) {
	root := document.NewInline([]document.InlineNode{
		document.NewText("plain", style.Style{}),
		document.NewText("loud", style.Style{Underline: true}),
	}, style.Style{Color: style.Color{R: 1, G: 2, B: 3, A: 255}})

	items := linearize(root, style.Default())
	require.Len(t, items, 2)
	assert.False(t, items[0].style.Underline)
	assert.Equal(t, style.Color{R: 1, G: 2, B: 3, A: 255}, items[0].style.Color)
	assert.True(t, items[1].style.Underline)
	assert.Equal(t, style.Color{R: 1, G: 2, B: 3, A: 255}, items[1].style.Color, "inline container's color is still inherited under an override sibling")
}

func TestLinearizeRubyCarriesBaseAndAnnotation(t *testing.T) {
	base := []document.InlineNode{document.NewText("base", style.Style{})}
	annotation := []document.InlineNode{document.NewText("ann", style.Style{})}
	root := document.NewRuby(base, annotation, style.Style{})

	items := linearize(root, style.Default())
	require.Len(t, items, 1)
	assert.Equal(t, itemRuby, items[0].kind)
	assert.Equal(t, base, items[0].rubyBase)
	assert.Equal(t, annotation, items[0].rubyAnnotation)
}
