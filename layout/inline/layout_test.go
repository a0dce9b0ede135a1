package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

func TestLayoutEmptyInlineProducesNoLines(t *testing.T) {
	res := testResources(t)
	box := Box{Root: document.NewInline(nil, style.Style{}), TargetWidth: fixed.FromInt(100)}
	result, err := Layout(box, res)
	require.NoError(t, err)
	assert.Empty(t, result.Lines)
}

func TestLayoutSimpleTextProducesOneLine(t *testing.T) {
	res := testResources(t)
	root := document.NewText("hello world", style.Default())
	box := Box{Root: root, TargetWidth: fixed.FromInt(10000)}

	result, err := Layout(box, res)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.NotEmpty(t, result.Lines[0].Runs)
	assert.Greater(t, int(result.Lines[0].Width), 0)
}

func TestLayoutNarrowTargetWrapsMultipleLines(t *testing.T) {
	res := testResources(t)
	root := document.NewText("the quick brown fox jumps over the lazy dog", style.Default())
	box := Box{Root: root, TargetWidth: fixed.FromInt(40)}

	result, err := Layout(box, res)
	require.NoError(t, err)
	assert.Greater(t, len(result.Lines), 1)
}

func TestLayoutForcedLineBreakProducesExtraLine(t *testing.T) {
	res := testResources(t)
	root := document.NewInline([]document.InlineNode{
		document.NewText("first", style.Style{}),
		document.NewLineBreak(),
		document.NewText("second", style.Style{}),
	}, style.Default())
	box := Box{Root: root, TargetWidth: fixed.FromInt(10000)}

	result, err := Layout(box, res)
	require.NoError(t, err)
	assert.Len(t, result.Lines, 2)
}

func TestLayoutRubyContainerInline(t *testing.T) {
	res := testResources(t)
	root := document.NewInline([]document.InlineNode{
		document.NewText("word ", style.Style{}),
		document.NewRuby(
			[]document.InlineNode{document.NewText("base", style.Style{})},
			[]document.InlineNode{document.NewText("ann", style.Style{})},
			style.Style{},
		),
	}, style.Default())
	box := Box{Root: root, TargetWidth: fixed.FromInt(10000)}

	result, err := Layout(box, res)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.NotEmpty(t, result.Lines[0].Runs)
}
