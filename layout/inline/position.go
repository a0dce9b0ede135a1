package inline

import (
	"github.com/afishhh/subrandr/core/fixed"
)

// positionLines turns each line's ordered breakUnits into a
// LineFragment: reordering units visually (§4.3 step 6), computing
// per-line ascent/descent, and stacking baselines (§4.3 step 7).
func positionLines(lines [][]breakUnit, subruns []subrun, lineGapFactor float64) []LineFragment {
	if lineGapFactor <= 0 {
		lineGapFactor = lineGapFactorDefault
	}
	var out []LineFragment
	var baseline fixed.T
	var prevDescent fixed.T
	for li, units := range lines {
		levels := make([]int, len(units))
		for i, u := range units {
			if u.ruby != nil {
				levels[i] = 0
				continue
			}
			levels[i] = subruns[u.subrunIdx].Level
		}
		order := reorderVisual(levels)

		var runs []GlyphRun
		var width fixed.T
		var ascent, descent fixed.T
		for _, idx := range order {
			u := units[idx]

			if u.ruby != nil {
				rr := u.ruby
				runs = append(runs, rr.Base.Runs...)
				runs = append(runs, rr.Annotation.Runs...)
				width += rr.Width
				if rr.Base.Ascent > ascent {
					ascent = rr.Base.Ascent
				}
				if rr.Base.Descent > descent {
					descent = rr.Base.Descent
				}
				topExtent := rr.Annotation.Ascent - rr.AnnotationOffsetY
				if topExtent > ascent {
					ascent = topExtent
				}
				continue
			}

			sr := subruns[u.subrunIdx]
			if sr.Face == nil {
				continue
			}
			m := sr.Face.Metrics()
			sizePx := pointsToPixels(sr.Style.FontSizePt)
			runAscent := fixed.T(m.Ascent * float64(sizePx))
			runDescent := fixed.T(m.Descent * float64(sizePx))
			if runAscent > ascent {
				ascent = runAscent
			}
			if runDescent > descent {
				descent = runDescent
			}

			glyphs := make([]Glyph, 0, u.glyphEnd-u.glyphStart)
			for _, g := range sr.Glyphs[u.glyphStart:u.glyphEnd] {
				glyphs = append(glyphs, Glyph{
					GlyphID:  g.GlyphID,
					XAdvance: g.XAdvance + sr.Style.LetterSpacing,
					YOffset:  g.YOffset,
					Cluster:  g.Cluster,
				})
				width += g.XAdvance + sr.Style.LetterSpacing
			}
			runs = append(runs, GlyphRun{
				FaceID:        sr.Face.ID,
				SizePx:        sizePx,
				Color:         sr.Style.Color,
				Background:    sr.Style.Background,
				Edge:          sr.Style.EdgeStyle,
				EdgeColor:     sr.Style.EdgeColor,
				EdgeBlur:      sr.Style.EdgeBlur,
				Glyphs:        glyphs,
				BidiLevel:     sr.Level,
				Underline:     sr.Style.Underline,
				Strikethrough: sr.Style.Strikethrough,
				LetterSpacing: sr.Style.LetterSpacing,
			})
		}

		if li > 0 {
			baseline += ascent + fixed.FromFloat64(prevDescent.Float64()*lineGapFactor)
		} else {
			baseline = ascent
		}

		out = append(out, LineFragment{
			OriginX: 0,
			OriginY: baseline,
			Width:   width,
			Ascent:  ascent,
			Descent: descent,
			Runs:    runs,
		})
		prevDescent = descent
	}
	return out
}

// decorationsFor computes underline/strikethrough rectangles for a
// line's runs at fixed fractions of each run's pixel size: the
// underline's top 0.15 em below the baseline, the strikethrough's top
// 0.3 em above it, thickness 0.07 em with a half-pixel minimum. Font
// underline metrics are not read.
func decorationsFor(line LineFragment) []Decoration {
	var decs []Decoration
	var x fixed.T
	for _, run := range line.Runs {
		w := runWidth(run)
		if run.Underline || run.Strikethrough {
			thickness := fixed.FromFloat64(run.SizePx.Float64() * 0.07)
			if thickness < fixed.One/2 {
				thickness = fixed.One / 2
			}
			if run.Underline {
				y := line.OriginY + fixed.FromFloat64(run.SizePx.Float64()*0.15)
				decs = append(decs, Decoration{
					Rect:  fixed.Rect{Min: fixed.Point{X: x, Y: y}, Max: fixed.Point{X: x + w, Y: y + thickness}},
					Color: run.Color,
				})
			}
			if run.Strikethrough {
				y := line.OriginY - fixed.FromFloat64(run.SizePx.Float64()*0.3)
				decs = append(decs, Decoration{
					Rect:          fixed.Rect{Min: fixed.Point{X: x, Y: y}, Max: fixed.Point{X: x + w, Y: y + thickness}},
					Color:         run.Color,
					Strikethrough: true,
				})
			}
		}
		x += w
	}
	return decs
}

func runWidth(run GlyphRun) fixed.T {
	var w fixed.T
	for _, g := range run.Glyphs {
		w += g.XAdvance
	}
	return w
}
