package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/rendercontext"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

func testContext() rendercontext.Context {
	return rendercontext.Context{
		DPI:           72,
		VideoWidth:    fixed.FromInt(320),
		VideoHeight:   fixed.FromInt(240),
		PaddingBottom: fixed.FromInt(10),
	}
}

func oneEventDoc(text string) *document.Subtitles {
	root := document.NewInline([]document.InlineNode{document.NewText(text, style.Default())}, style.Default())
	ev := document.Event{
		TStartMS: 0,
		TEndMS:   1000,
		Root:     root,
		Anchor:   document.DefaultAnchor,
	}
	return document.New([]document.Event{ev}, document.FormatFlags{}, nil)
}

func newTestRenderer(t *testing.T) (*Library, *Renderer) {
	lib := NewLibrary()
	r := lib.NewRenderer()
	require.NotNil(t, r)
	return lib, r
}

func TestRenderFailsWithoutBoundSubtitles(t *testing.T) {
	_, r := newTestRenderer(t)
	buf := make([]byte, 320*240*4)
	err := r.Render(testContext(), 0, buf, 320, 240, 320*4)
	require.Error(t, err)
}

func TestRenderSucceedsAfterSetSubtitles(t *testing.T) {
	lib, r := newTestRenderer(t)
	subs := &Subtitles{doc: oneEventDoc("hello")}
	r.SetSubtitles(subs)

	buf := make([]byte, 320*240*4)
	err := r.Render(testContext(), 500, buf, 320, 240, 320*4)
	require.NoError(t, err)
	_ = lib
}

func TestRenderRejectsStrideSmallerThanWidth(t *testing.T) {
	_, r := newTestRenderer(t)
	r.SetSubtitles(&Subtitles{doc: oneEventDoc("x")})
	buf := make([]byte, 320*240*4)
	err := r.Render(testContext(), 0, buf, 320, 240, 10)
	require.Error(t, err)
}

func TestRenderPanicsOnReentrantCall(t *testing.T) {
	_, r := newTestRenderer(t)
	r.SetSubtitles(&Subtitles{doc: oneEventDoc("x")})
	r.rendering = true
	defer func() { r.rendering = false }()
	buf := make([]byte, 320*240*4)
	assert.Panics(t, func() {
		_ = r.Render(testContext(), 0, buf, 320, 240, 320*4)
	})
}

func TestDidChangeReportsTrueBeforeFirstRender(t *testing.T) {
	_, r := newTestRenderer(t)
	r.SetSubtitles(&Subtitles{doc: oneEventDoc("hello")})
	changed, err := r.DidChange(testContext(), 500)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestDidChangeReportsFalseForUnchangedFrame(t *testing.T) {
	_, r := newTestRenderer(t)
	r.SetSubtitles(&Subtitles{doc: oneEventDoc("hello")})

	buf := make([]byte, 320*240*4)
	require.NoError(t, r.Render(testContext(), 500, buf, 320, 240, 320*4))

	changed, err := r.DidChange(testContext(), 600) // still within [0,1000), same active event
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestDidChangeReportsTrueAfterEventBecomesInactive(t *testing.T) {
	_, r := newTestRenderer(t)
	r.SetSubtitles(&Subtitles{doc: oneEventDoc("hello")})

	buf := make([]byte, 320*240*4)
	require.NoError(t, r.Render(testContext(), 500, buf, 320, 240, 320*4))

	changed, err := r.DidChange(testContext(), 5000) // event has ended
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSetSubtitlesDropsLayoutCacheAcrossDocuments(t *testing.T) {
	_, r := newTestRenderer(t)
	first := &Subtitles{doc: oneEventDoc("hello")}
	r.SetSubtitles(first)

	buf := make([]byte, 320*240*4)
	require.NoError(t, r.Render(testContext(), 500, buf, 320, 240, 320*4))
	require.Greater(t, r.layoutCache.Len(), 0)

	second := &Subtitles{doc: oneEventDoc("goodbye")}
	r.SetSubtitles(second)
	assert.Equal(t, 0, r.layoutCache.Len())
}

func TestBoxFingerprintDiffersForDifferentText(t *testing.T) {
	a := oneEventDoc("hello")
	b := oneEventDoc("goodbye")
	assert.NotEqual(t, boxFingerprint(&a.Events[0]), boxFingerprint(&b.Events[0]))
}

func TestBoxFingerprintStableForIdenticalContent(t *testing.T) {
	a := oneEventDoc("hello")
	b := oneEventDoc("hello")
	assert.Equal(t, boxFingerprint(&a.Events[0]), boxFingerprint(&b.Events[0]))
}

func TestLoadTextDispatchesToSrv3(t *testing.T) {
	lib := NewLibrary()
	data := []byte(`<timedtext><body><p t="0" d="500">hi</p></body></timedtext>`)
	subs, err := lib.LoadText(data, "")
	require.NoError(t, err)
	require.Len(t, subs.doc.Events, 1)
}

func TestLoadTextDispatchesToWebvtt(t *testing.T) {
	lib := NewLibrary()
	data := []byte("WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhi\n")
	subs, err := lib.LoadText(data, "")
	require.NoError(t, err)
	require.Len(t, subs.doc.Events, 1)
}

func TestLoadTextRejectsUnrecognizedFormat(t *testing.T) {
	lib := NewLibrary()
	_, err := lib.LoadText([]byte("not a subtitle file"), "")
	require.Error(t, err)
	assert.Same(t, err, lib.LastError())
}
