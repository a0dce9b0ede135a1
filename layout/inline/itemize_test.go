package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/font"
)

func TestScriptOfClassifiesMajorScripts(t *testing.T) {
	assert.Equal(t, scriptHan, scriptOf('漢'))
	assert.Equal(t, scriptKana, scriptOf('あ'))
	assert.Equal(t, scriptKana, scriptOf('ア'))
	assert.Equal(t, scriptHangul, scriptOf('한'))
	assert.Equal(t, scriptArabic, scriptOf('ا'))
	assert.Equal(t, scriptHebrew, scriptOf('א'))
	assert.Equal(t, scriptCommon, scriptOf(' '))
	assert.Equal(t, scriptCommon, scriptOf('.'))
	assert.Equal(t, scriptOther, scriptOf('a'))
}

func testResources(t *testing.T) *Resources {
	t.Helper()
	return &Resources{Matcher: font.NewMatcher(), Shaper: font.NewShaper()}
}

func TestItemizeSplitsOnStyleChange(t *testing.T) {
	res := testResources(t)
	plain := style.Default()
	bold := style.Override(plain, style.Style{Underline: true})

	text := "abdef"
	styleAt := func(offset int) style.Style {
		if offset < 2 {
			return plain
		}
		return bold
	}
	run := bidiRun{Start: 0, End: len(text), Level: 0, Dir: LeftToRight}

	subs := itemize(text, run, styleAt, res)
	require.Len(t, subs, 2)
	assert.Equal(t, 0, subs[0].Start)
	assert.Equal(t, 2, subs[0].End)
	assert.Equal(t, 2, subs[1].Start)
	assert.Equal(t, len(text), subs[1].End)
	assert.NotNil(t, subs[0].Face, "itemize should resolve a fallback face even with no registered providers")
}

func TestItemizeSplitsOnScriptChange(t *testing.T) {
	res := testResources(t)
	sty := style.Default()
	text := "abc漢字"
	styleAt := func(int) style.Style { return sty }
	run := bidiRun{Start: 0, End: len(text), Level: 0, Dir: LeftToRight}

	subs := itemize(text, run, styleAt, res)
	require.Len(t, subs, 2)
	assert.Equal(t, "abc", text[subs[0].Start:subs[0].End])
	assert.Equal(t, "漢字", text[subs[1].Start:subs[1].End])
}

func TestPointsToPixelsScalesBy96Over72(t *testing.T) {
	got := pointsToPixels(72)
	assert.InDelta(t, 96.0, got.Float64(), 0.01)
}
