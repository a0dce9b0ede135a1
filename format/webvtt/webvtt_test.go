package webvtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

func TestSniffRequiresLeadingMagic(t *testing.T) {
	assert.True(t, Sniff([]byte("WEBVTT\n\n")))
	assert.True(t, Sniff([]byte("WEBVTT - a title\n\n")))
	assert.False(t, Sniff([]byte("WEBVTTX\n\n")))
	assert.False(t, Sniff([]byte("hello")))
}

func TestSniffAcceptsLeadingBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("WEBVTT\n\n")...)
	assert.True(t, Sniff(data))
}

func TestParseSimpleCue(t *testing.T) {
	data := []byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nHello world\n")
	subs, err := Parse(data, "")
	require.NoError(t, err)
	require.Len(t, subs.Events, 1)

	ev := subs.Events[0]
	assert.Equal(t, int64(1000), ev.TStartMS)
	assert.Equal(t, int64(2500), ev.TEndMS)
	require.Len(t, ev.Root.Children, 1)
	assert.Equal(t, "Hello world", ev.Root.Children[0].Text)
}

func TestParseCueWithHourTimestamp(t *testing.T) {
	data := []byte("WEBVTT\n\n01:02:03.040 --> 01:02:05.000\nhi\n")
	subs, err := Parse(data, "")
	require.NoError(t, err)
	assert.Equal(t, int64((1*3600+2*60+3)*1000+40), subs.Events[0].TStartMS)
}

func TestParseCueIdentifierLineIsSkipped(t *testing.T) {
	data := []byte("WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\ntext\n")
	subs, err := Parse(data, "")
	require.NoError(t, err)
	require.Len(t, subs.Events, 1)
	assert.Equal(t, int64(1000), subs.Events[0].TStartMS)
}

func TestParseCueSettingsAdjustAnchor(t *testing.T) {
	data := []byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.000 position:20% size:50% align:left\ntext\n")
	subs, err := Parse(data, "")
	require.NoError(t, err)
	anchor := subs.Events[0].Anchor
	assert.Equal(t, document.HStart, anchor.HAlign)
	assert.Equal(t, 20.0, anchor.XPct)
	assert.Equal(t, 50.0, anchor.WidthPct)
}

func TestParseNestedMarkupAppliesStackedStyles(t *testing.T) {
	data := []byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n<b>bold <i>and italic</i></b> plain\n")
	subs, err := Parse(data, "")
	require.NoError(t, err)

	children := subs.Events[0].Root.Children
	require.Len(t, children, 3)
	assert.Equal(t, "bold ", children[0].Text)
	assert.Equal(t, style.WeightBold, children[0].Style.Weight)
	assert.Equal(t, "and italic", children[1].Text)
	assert.Equal(t, style.WeightBold, children[1].Style.Weight)
	assert.True(t, children[1].Style.Italic)
	assert.Equal(t, "plain", children[2].Text)
	assert.False(t, children[2].Style.Italic)
}

func TestParseNoteBlockIsIgnored(t *testing.T) {
	data := []byte("WEBVTT\n\nNOTE this is a comment\n\n00:00:01.000 --> 00:00:02.000\ntext\n")
	subs, err := Parse(data, "")
	require.NoError(t, err)
	require.Len(t, subs.Events, 1)
}

func TestParseRejectsMissingMagic(t *testing.T) {
	_, err := Parse([]byte("not vtt at all"), "")
	require.Error(t, err)
}
