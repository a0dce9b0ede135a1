package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/fixed"
)

func TestBreakOpportunitiesOnSpaces(t *testing.T) {
	opps := breakOpportunities("foo bar baz")
	require.NotEmpty(t, opps)
	// Break opportunities are reported in ascending rune-index order.
	for i := 1; i < len(opps); i++ {
		assert.Less(t, opps[i-1], opps[i])
	}
}

func TestCollapseWhitespaceCollapsesRunsAndTabs(t *testing.T) {
	assert.Equal(t, "a b", collapseWhitespace("a   b", false))
	assert.Equal(t, "a b", collapseWhitespace("a\tb", false))
	assert.Equal(t, "a b", collapseWhitespace("a\n\nb", false))
}

func TestCollapseWhitespacePreservesPreformatted(t *testing.T) {
	assert.Equal(t, "a   b", collapseWhitespace("a   b", true))
}

func TestBreakLinesGreedyWrap(t *testing.T) {
	units := []breakUnit{
		{width: fixed.FromInt(3)},
		{width: fixed.FromInt(3)},
		{width: fixed.FromInt(3)},
	}
	lines := breakLines(units, fixed.FromInt(5))
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Len(t, l, 1)
	}
}

func TestBreakLinesPlacesOverwideUnitAlone(t *testing.T) {
	units := []breakUnit{{width: fixed.FromInt(10)}}
	lines := breakLines(units, fixed.FromInt(5))
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 1)
}

func TestBreakLinesEmptyInput(t *testing.T) {
	assert.Nil(t, breakLines(nil, fixed.FromInt(5)))
}
