package inline

import (
	"strings"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
)

// Layout lays out box into an ordered list of LineFragments by running
// its InlineNode tree through linearization (step 1), per-paragraph
// bidi resolution (step 2), itemization and shaping (steps 3-4), line
// breaking (step 5), and positioning (steps 6-7), with ruby containers
// (step 8) laid out as atomic units wherever they occur in the flow
// (§4.3).
//
// An InlineNode tree that linearizes to no items at all (no text,
// forced break or ruby node) produces a zero-line Result rather than
// an error. A tree holding only forced breaks or empty text still
// produces zero-metric lines, one per paragraph.
func Layout(box Box, res *Resources) (Result, error) {
	items := linearize(box.Root, style.Default())
	if len(items) == 0 {
		return Result{}, nil
	}

	var allSubruns []subrun
	var allUnits [][]breakUnit
	for _, paragraph := range paragraphsOf(items) {
		units := unitsForParagraph(paragraph, res, &allSubruns)
		if len(units) == 0 {
			// A blank paragraph between two forced breaks (a
			// newline-only event) still occupies a line rather than
			// being dropped; positionLines renders an empty unit slice
			// as a zero-metric LineFragment.
			allUnits = append(allUnits, nil)
			continue
		}
		allUnits = append(allUnits, breakLines(units, box.TargetWidth)...)
	}

	lines := positionLines(allUnits, allSubruns, lineGapFactorDefault)

	var bounds fixed.Rect
	for i := range lines {
		lines[i].Decorations = decorationsFor(lines[i])
		lineRect := fixed.Rect{
			Min: fixed.Point{X: lines[i].OriginX, Y: lines[i].OriginY - lines[i].Ascent},
			Max: fixed.Point{X: lines[i].OriginX + lines[i].Width, Y: lines[i].OriginY + lines[i].Descent},
		}
		lines[i].Background = &lineRect
		bounds = bounds.Union(lineRect)
	}

	return Result{Lines: lines, Bounds: bounds}, nil
}

// paragraphsOf splits a linearized item sequence at forced line breaks
// (§4.3 step 1: each itemLineBreak starts a new bidi paragraph, since
// the Unicode bidi algorithm itself treats paragraph separators as
// hard boundaries).
func paragraphsOf(items []item) [][]item {
	var out [][]item
	var cur []item
	for _, it := range items {
		if it.kind == itemLineBreak {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, it)
	}
	out = append(out, cur)
	return out
}

// unitsForParagraph turns one paragraph's items into breakUnits:
// consecutive text items are concatenated and run through bidi
// resolution and itemization together (so shaping sees real
// surrounding context), while ruby items are laid out independently
// and inserted as a single atomic unit at their position in the flow.
func unitsForParagraph(items []item, res *Resources, allSubruns *[]subrun) []breakUnit {
	var units []breakUnit
	var textGroup []item

	flushText := func() {
		if len(textGroup) == 0 {
			return
		}
		text, styleAt := concatItems(textGroup)
		for _, run := range resolveBidi(text) {
			for _, sr := range itemize(text, run, styleAt, res) {
				idx := len(*allSubruns)
				*allSubruns = append(*allSubruns, sr)
				units = append(units, splitIntoUnits(idx, sr, text)...)
			}
		}
		textGroup = nil
	}

	for _, it := range items {
		switch it.kind {
		case itemText:
			textGroup = append(textGroup, it)
		case itemRuby:
			flushText()
			rr := layoutRuby(it, res)
			units = append(units, breakUnit{subrunIdx: -1, width: rr.Width, ruby: &rr})
		default:
			flushText()
		}
	}
	flushText()
	return units
}

// concatItems concatenates a run of itemText items into one string for
// bidi/itemize to process together, returning a styleAt closure that
// maps a byte offset in the concatenated string back to the style of
// the item it came from.
func concatItems(items []item) (string, func(int) style.Style) {
	var b strings.Builder
	bounds := make([]int, len(items)+1)
	for i, it := range items {
		b.WriteString(it.text)
		bounds[i+1] = b.Len()
	}
	styles := make([]style.Style, len(items))
	for i, it := range items {
		styles[i] = it.style
	}
	styleAt := func(offset int) style.Style {
		for i := len(bounds) - 1; i > 0; i-- {
			if offset >= bounds[i-1] {
				return styles[i-1]
			}
		}
		return style.Default()
	}
	return b.String(), styleAt
}
