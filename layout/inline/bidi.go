package inline

import (
	xbidi "golang.org/x/text/unicode/bidi"
)

// Direction mirrors font.Direction at the layout-run granularity.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

// bidiRun is a maximal span of uniform embedding level produced by
// resolveBidi (§4.3 step 2), given as byte offsets into the
// concatenated text passed to it.
type bidiRun struct {
	Start, End int
	Level      int
	Dir        Direction
}

// resolveBidi runs the Unicode Bidirectional Algorithm over text,
// inferring paragraph base direction from the first strong character
// (§4.3 step 2). There is no parameter for a caller to force an
// explicit base direction.
//
// golang.org/x/text/unicode/bidi's Paragraph/Order API already
// exposes exactly the embedding-level run segmentation this step
// needs, so resolution is a thin adapter rather than a second
// from-scratch implementation of UAX#9.
func resolveBidi(text string) []bidiRun {
	if text == "" {
		return nil
	}

	var p xbidi.Paragraph
	if _, err := p.SetString(text); err != nil {
		// Malformed input (e.g. an isolate run without a matching PDI)
		// degrades to a single LTR run rather than failing layout —
		// bidi resolution has no failure mode in §4.3's contract.
		return []bidiRun{{Start: 0, End: len(text), Level: 0, Dir: LeftToRight}}
	}
	ordering, err := p.Order()
	if err != nil {
		return []bidiRun{{Start: 0, End: len(text), Level: 0, Dir: LeftToRight}}
	}

	runs := make([]bidiRun, 0, ordering.NumRuns())
	offset := 0
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		s := run.String()
		dir := LeftToRight
		level := 0
		if run.Direction() == xbidi.RightToLeft {
			dir = RightToLeft
			level = 1
		}
		start := offset
		end := start + len(s)
		runs = append(runs, bidiRun{Start: start, End: end, Level: level, Dir: dir})
		offset = end
	}
	return runs
}

// reorderVisual reverses the logical order of runs within each
// maximal descending-level span, per the Unicode bidi algorithm's
// final reordering rule (§4.3 step 6: "reverse glyphs in
// descending-level runs"). Operates on indices into a line's ordered
// run slice, returning a permutation to apply.
func reorderVisual(levels []int) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	if len(levels) == 0 {
		return order
	}
	maxLevel := 0
	minOddLevel := -1
	for _, l := range levels {
		if l > maxLevel {
			maxLevel = l
		}
		if l%2 == 1 && (minOddLevel == -1 || l < minOddLevel) {
			minOddLevel = l
		}
	}
	for level := maxLevel; level >= 1 && level >= minOddLevelOrOne(minOddLevel); level-- {
		i := 0
		for i < len(order) {
			if levels[order[i]] < level {
				i++
				continue
			}
			j := i
			for j < len(order) && levels[order[j]] >= level {
				j++
			}
			reverseInts(order[i:j])
			i = j
		}
	}
	return order
}

func minOddLevelOrOne(v int) int {
	if v < 0 {
		return 1
	}
	return v
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
