package inline

import (
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/font"
)

// scriptClass is a coarse script classification used only to find
// script-run boundaries for itemization (§4.3 step 3); it
// intentionally distinguishes far fewer scripts than a full Unicode
// script table, since all itemize needs is "did the script change
// enough to warrant a separate shaping call" — the shaper itself
// (font.Shaper.Shape) derives the authoritative script per run via
// HarfBuzz's own segment-property guessing.
type scriptClass int

const (
	scriptCommon scriptClass = iota
	scriptHan
	scriptKana
	scriptHangul
	scriptArabic
	scriptHebrew
	scriptOther
)

func scriptOf(r rune) scriptClass {
	switch {
	case unicode.Is(unicode.Common, r), unicode.IsSpace(r), unicode.IsPunct(r):
		return scriptCommon
	case unicode.Is(unicode.Han, r):
		return scriptHan
	case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
		return scriptKana
	case unicode.Is(unicode.Hangul, r):
		return scriptHangul
	case unicode.Is(unicode.Arabic, r):
		return scriptArabic
	case unicode.Is(unicode.Hebrew, r):
		return scriptHebrew
	default:
		return scriptOther
	}
}

// subrun is one bidi run further subdivided at script and style
// boundaries, with a resolved font face (§4.3 step 3).
type subrun struct {
	Start, End int // byte offsets into the owning paragraph's text
	Level      int
	Dir        Direction
	Style      style.Style
	Face       *font.Face
	Glyphs     []font.ShapedGlyph
}

// itemize subdivides one bidi run at script and style-run boundaries
// and resolves a font face for each resulting sub-run (§4.3 step 3),
// then shapes each sub-run immediately (§4.3 step 4) — the two steps
// are combined here because both need the same resolved face.
func itemize(text string, run bidiRun, styleAt func(byteOffset int) style.Style, res *Resources) []subrun {
	var out []subrun
	segStart := run.Start
	var curStyle style.Style
	var curScript scriptClass
	first := true

	flush := func(end int) {
		if end <= segStart {
			return
		}
		sr := subrun{Start: segStart, End: end, Level: run.Level, Dir: run.Dir, Style: curStyle}
		resolveAndShape(&sr, text, res)
		out = append(out, sr)
	}

	for i := run.Start; i < run.End; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		sty := styleAt(i)
		scr := scriptOf(r)
		switch {
		case first:
			curStyle, curScript, first = sty, scr, false
		case !reflect.DeepEqual(sty, curStyle) || (scr != scriptCommon && scr != curScript):
			flush(i)
			segStart, curStyle, curScript = i, sty, scr
		}
		i += size
	}
	flush(run.End)
	return out
}

// resolveAndShape resolves sr.Style to a face and shapes sr's text
// span, walking sr.Style.FamilyList itself rather than delegating
// straight to Matcher.Match: §4.2 step 1 says an uncovered span is
// "re-matched against the next family in family_list", and judging
// coverage needs the shaped glyphs, which only this layer has. A
// family whose shaped run still has .notdef glyphs is kept as the
// best candidate so far but not accepted outright; the search stops
// at the first family that covers every glyph, or falls through to
// Match's own fallback face if none do — so a span with no coverage
// anywhere still ends up with .notdef boxes instead of no glyphs at
// all.
func resolveAndShape(sr *subrun, text string, res *Resources) {
	dir := font.LeftToRight
	if sr.Dir == RightToLeft {
		dir = font.RightToLeft
	}
	sizePx := pointsToPixels(sr.Style.FontSizePt)
	span := text[sr.Start:sr.End]

	var bestFace *font.Face
	var bestGlyphs []font.ShapedGlyph
	bestCovered := -1

	tryFace := func(face *font.Face) (full bool) {
		glyphs, err := res.Shaper.Shape(span, font.ShapeParams{
			Face:      face,
			SizePx:    sizePx,
			Direction: dir,
		})
		if err != nil {
			return false
		}
		covered := countCoveredGlyphs(glyphs)
		if covered > bestCovered {
			bestFace, bestGlyphs, bestCovered = face, glyphs, covered
		}
		return len(glyphs) > 0 && covered == len(glyphs)
	}

	for _, family := range sr.Style.FamilyList {
		match, ok := res.Matcher.MatchExact(family, sr.Style.Weight, sr.Style.Italic)
		if !ok {
			continue
		}
		if tryFace(match.Face) {
			sr.Face, sr.Glyphs = bestFace, bestGlyphs
			return
		}
	}

	if match, err := res.Matcher.Match(sr.Style); err == nil {
		tryFace(match.Face)
	}
	sr.Face, sr.Glyphs = bestFace, bestGlyphs
}

// countCoveredGlyphs returns how many of glyphs are not the font's
// .notdef glyph (id 0), the signal a face has no outline for that
// cluster.
func countCoveredGlyphs(glyphs []font.ShapedGlyph) int {
	n := 0
	for _, g := range glyphs {
		if g.GlyphID != 0 {
			n++
		}
	}
	return n
}

// pointsToPixels converts a CSS-style point size to 26.6 pixels at
// the conventional 96dpi CSS reference (the same 96/72 factor
// context.PPI applies to a DPI). The render context's DPI is not
// applied, so glyph sizes do not change with it.
func pointsToPixels(pt float32) fixed.T {
	return fixed.FromFloat64(float64(pt) * 96.0 / 72.0)
}
