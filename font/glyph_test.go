package font

import "testing"

func TestQuantizeSubpixelXBuckets(t *testing.T) {
	cases := []struct {
		frac float64
		want SubpixelX
	}{
		{0, Subpixel0},
		{0.1, Subpixel0},
		{0.25, Subpixel1},
		{0.4, Subpixel1},
		{0.5, Subpixel2},
		{0.7, Subpixel2},
		{0.75, Subpixel3},
		{0.99, Subpixel3},
	}
	for _, c := range cases {
		if got := QuantizeSubpixelX(c.frac); got != c.want {
			t.Errorf("QuantizeSubpixelX(%v) = %v, want %v", c.frac, got, c.want)
		}
	}
}

func TestGlyphCachePinSurvivesEviction(t *testing.T) {
	c := NewGlyphCache(glyphBitmapSize(GlyphBitmap{Pixels: []byte{1}})) // room for one 1-byte bitmap: the second insert forces eviction
	k1 := GlyphKey{Face: 1, GlyphID: 1, SizePx: 1, Subpixel: Subpixel0}
	k2 := GlyphKey{Face: 1, GlyphID: 2, SizePx: 1, Subpixel: Subpixel0}

	c.lru.Put(k1, GlyphBitmap{Pixels: []byte{1}})
	c.Pin(k1)
	c.lru.Put(k2, GlyphBitmap{Pixels: []byte{2}})

	if _, ok := c.Get(k1); !ok {
		t.Fatal("pinned glyph bitmap should survive eviction")
	}

	c.UnpinAll()
	c.lru.Put(GlyphKey{Face: 1, GlyphID: 3, SizePx: 1, Subpixel: Subpixel0}, GlyphBitmap{Pixels: []byte{3}})
	if _, ok := c.Get(k1); ok {
		t.Fatal("unpinned glyph bitmap should have been evicted")
	}
}
