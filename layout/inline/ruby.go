package inline

import (
	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/document"
)

// rubyGapFactor is the minimum inter-baseline gap between an
// annotation and its base, expressed as a multiple of the annotation
// line's own size (§3 invariant: "inter-baseline gap ≥
// annotation_size × 1.1").
const rubyGapFactor = 1.1

// RubyResult is the laid-out form of one ruby container: a base line
// and an annotation line sharing a common width, with the annotation
// positioned above the base baseline (§4.3 step 8).
type RubyResult struct {
	Base       LineFragment
	Annotation LineFragment
	// Width is max(base width, annotation width); the narrower of the
	// two has already been center-distributed to fill it.
	Width fixed.T
	// AnnotationOffsetY is the annotation baseline's offset from the
	// base baseline (negative: the annotation sits above). layoutRuby
	// has already folded it into the annotation glyphs' YOffset, and
	// both lines' OriginY is zero.
	AnnotationOffsetY fixed.T
}

// layoutRuby lays out a ruby container's base and annotation as
// independent single-line inline boxes (§4.3 step 8: "lay out base and
// annotation as independent inline boxes"), then pairs them onto a
// shared width. It is single-line only — ruby annotations in subtitle
// text are short enough that wrapping them is out of scope.
func layoutRuby(it item, res *Resources) RubyResult {
	baseRoot := document.NewInline(it.rubyBase, it.style)
	annotationRoot := document.NewInline(it.rubyAnnotation, it.style)

	// Layout has no error path that a synthetic single-line box using
	// the caller's own already-valid Resources can hit, so the errors
	// here are discarded rather than threaded through RubyResult.
	baseResult, _ := Layout(Box{Root: baseRoot, TargetWidth: fixed.Max}, res)
	annotationResult, _ := Layout(Box{Root: annotationRoot, TargetWidth: fixed.Max}, res)

	var base, annotation LineFragment
	if len(baseResult.Lines) > 0 {
		base = baseResult.Lines[0]
	}
	if len(annotationResult.Lines) > 0 {
		annotation = annotationResult.Lines[0]
	}

	width := base.Width
	if annotation.Width > width {
		width = annotation.Width
	}
	// Base advance is max(base width, annotation width); the shorter
	// side is center-distributed to expand inter-cluster spacing
	// (§4.3 step 8), approximating proportional annotation-to-base
	// cluster pairing without tracking individual cluster pairs.
	base = spreadToWidth(base, width)
	annotation = spreadToWidth(annotation, width)

	gap := fixed.FromFloat64((annotation.Ascent + annotation.Descent).Float64() * rubyGapFactor)
	// Annotation baseline sits annotation_descent + base_ascent + gap
	// above the base baseline, i.e. at a negative Y offset relative to
	// it (§4.3 step 8).
	offsetY := -(annotation.Descent + base.Ascent + gap)

	// Fold each line's own baseline (and, for the annotation, its
	// offset from the base baseline) into its glyphs' YOffset, so a
	// consumer embedding these runs into another line can treat
	// OriginY as shared and YOffset as already relative to it.
	foldBaseline(&base, 0)
	foldBaseline(&annotation, offsetY)

	return RubyResult{Base: base, Annotation: annotation, Width: width, AnnotationOffsetY: offsetY}
}

// foldBaseline adds line's own OriginY plus extra into every glyph's
// YOffset, then zeroes OriginY.
func foldBaseline(line *LineFragment, extra fixed.T) {
	delta := line.OriginY + extra
	for ri := range line.Runs {
		for gi := range line.Runs[ri].Glyphs {
			line.Runs[ri].Glyphs[gi].YOffset += delta
		}
	}
	line.OriginY = 0
}

// spreadToWidth distributes (width - line.Width) evenly across the
// inter-glyph gaps of line, so a shorter base or annotation line
// visually centers its clusters under/over the wider counterpart
// rather than left-aligning with a trailing gap. A line already at
// least width wide is returned unchanged.
func spreadToWidth(line LineFragment, width fixed.T) LineFragment {
	deficit := width - line.Width
	if deficit <= 0 {
		return line
	}
	totalGlyphs := 0
	for _, r := range line.Runs {
		totalGlyphs += len(r.Glyphs)
	}
	if totalGlyphs <= 1 {
		line.Width = width
		return line
	}
	gaps := totalGlyphs - 1
	per := deficit / fixed.T(gaps)
	seen := 0
	for ri := range line.Runs {
		for gi := range line.Runs[ri].Glyphs {
			if seen < gaps {
				line.Runs[ri].Glyphs[gi].XAdvance += per
			}
			seen++
		}
	}
	line.Width = width
	return line
}
