package font

import (
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"golang.org/x/text/language"

	"github.com/afishhh/subrandr/core/fixed"
)

// Direction is the run direction a Shape call is performed in, per
// the bidi level resolved for the run (§4.3 step 2).
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) hb() hb.Direction {
	if d == RightToLeft {
		return hb.RightToLeft
	}
	return hb.LeftToRight
}

// ShapeParams collects everything Shape needs beyond the text itself
// (§4.2 "Shape(run)"): the resolved face and size, the run's
// direction, and an optional BCP-47 language hint. Script is
// deliberately not accepted here — HarfBuzz derives it from the run's
// own code points via GuessSegmentProperties, which is more reliable
// than a caller-supplied hint for the short, mixed-script runs
// subtitle text tends to produce.
type ShapeParams struct {
	Face      *Face
	SizePx    fixed.T // 26.6 pixel size: points × 96/72; the render context's DPI is not applied
	Direction Direction
	Language  language.Tag
}

// ShapedGlyph is one positioned glyph resulting from Shape, in 26.6
// units, with a cluster back-reference into the logical (pre-bidi) run
// string.
type ShapedGlyph struct {
	GlyphID  uint32
	Cluster  int // index into the rune sequence of the shaped run
	XAdvance fixed.T
	YAdvance fixed.T
	XOffset  fixed.T
	YOffset  fixed.T
}

// Shaper adapts github.com/benoitkugler/textlayout/harfbuzz — a
// pure-Go HarfBuzz reimplementation — to produce ShapedGlyph
// sequences from a run of text with a resolved face, size and
// direction.
type Shaper struct{}

// NewShaper creates a stateless Shaper. HarfBuzz buffers and shape
// plans are created per call; the underlying library does its own
// internal caching of shape plans per font.
func NewShaper() *Shaper { return &Shaper{} }

// Shape runs text through HarfBuzz for the given face/size/direction
// and returns one ShapedGlyph per cluster-glyph, in visual (shaped)
// order, with 26.6 advances (§4.2).
func (s *Shaper) Shape(text string, p ShapeParams) ([]ShapedGlyph, error) {
	if p.Face == nil || p.Face.HBFace == nil {
		return nil, ErrFontNotFound
	}

	hbFont := hb.NewFont(p.Face.HBFace)
	hbFont.XScale, hbFont.YScale = int32(p.SizePx), int32(p.SizePx)

	buf := hb.NewBuffer()
	buf.AddRunes([]rune(text), 0, -1)
	buf.GuessSegmentProperties()
	buf.Props.Direction = p.Direction.hb()
	if p.Language != language.Und {
		buf.Props.Language = hblang.NewLanguage(p.Language.String())
	}
	buf.Shape(hbFont, nil)

	out := make([]ShapedGlyph, len(buf.Info))
	for i := range buf.Info {
		info := &buf.Info[i]
		pos := &buf.Pos[i]
		out[i] = ShapedGlyph{
			GlyphID:  uint32(info.Glyph),
			Cluster:  int(info.Cluster),
			XAdvance: hbUnitsToFixed(pos.XAdvance),
			YAdvance: hbUnitsToFixed(pos.YAdvance),
			XOffset:  hbUnitsToFixed(pos.XOffset),
			YOffset:  hbUnitsToFixed(pos.YOffset),
		}
	}
	return out, nil
}

// hbUnitsToFixed converts a HarfBuzz position (already scaled to the
// font's XScale/YScale, which Shape sets to the 26.6 pixel size) into
// fixed.T. HarfBuzz positions are integers in the same units as
// XScale/YScale, so this is a 1:1 passthrough guarded against the
// 26.6 overflow bound.
func hbUnitsToFixed(v int32) fixed.T {
	if v > int32(fixed.Max) {
		return fixed.Max
	}
	if v < int32(-fixed.Max) {
		return -fixed.Max
	}
	return fixed.T(v)
}
