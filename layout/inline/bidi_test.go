package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBidiAllLTR(t *testing.T) {
	runs := resolveBidi("hello world")
	require.Len(t, runs, 1)
	assert.Equal(t, LeftToRight, runs[0].Dir)
	assert.Equal(t, 0, runs[0].Start)
	assert.Equal(t, len("hello world"), runs[0].End)
}

func TestResolveBidiEmptyString(t *testing.T) {
	assert.Nil(t, resolveBidi(""))
}

func TestResolveBidiMixedDirection(t *testing.T) {
	// Latin text containing an embedded Hebrew word should split into
	// more than one run, with at least one run resolved RTL.
	runs := resolveBidi("abc אבג def")
	require.NotEmpty(t, runs)
	var sawRTL bool
	for _, r := range runs {
		if r.Dir == RightToLeft {
			sawRTL = true
		}
	}
	assert.True(t, sawRTL, "expected at least one RTL run for embedded Hebrew text")
}

func TestReorderVisualIdentityWhenAllSameLevel(t *testing.T) {
	order := reorderVisual([]int{0, 0, 0})
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestReorderVisualReversesDescendingSpan(t *testing.T) {
	// A single odd-level span nested in level-0 text gets reversed.
	order := reorderVisual([]int{0, 1, 1, 1, 0})
	assert.Equal(t, []int{0, 3, 2, 1, 4}, order)
}
