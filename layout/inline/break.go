package inline

import (
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/uax"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"

	"github.com/afishhh/subrandr/core/fixed"
)

// breakOpportunities returns, for s, the rune indices after which a
// line break is permitted, found with a Unicode line-break segmenter
// (§4.3 step 5: "line breaking opportunities are determined by a
// Unicode line-break segmenter applied to the source string").
func breakOpportunities(s string) []int {
	if s == "" {
		return nil
	}
	seg := segment.NewSegmenter(uax14.NewLineWrap())
	seg.Init(strings.NewReader(s))
	var points []int
	runes := 0
	for seg.Next() {
		runes += utf8.RuneCountInString(seg.Text())
		p1, _ := seg.Penalties()
		if p1 < uax.InfinitePenalty {
			points = append(points, runes)
		}
	}
	return points
}

// collapseWhitespace implements the CSS white-space: normal rule
// §4.3's Edge cases call for: a run of whitespace collapses to a
// single space, a tab counts as one space, and a soft hyphen survives
// only if the break is taken there (handled at glyph-insertion time in
// position.go, not here). pre-mode nodes skip collapsing entirely.
func collapseWhitespace(s string, pre bool) string {
	if pre {
		return s
	}
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == '\t' {
			r = ' '
		}
		if r == ' ' || r == '\n' || r == '\r' {
			if inSpace {
				continue
			}
			inSpace = true
			b.WriteByte(' ')
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// breakUnit is a run of glyphs from one subrun that is never split by
// the line breaker — it is placed wholly on one line or wholly
// overflows to the next (§4.3 step 5).
type breakUnit struct {
	subrunIdx     int
	glyphStart    int // index into subrun.Glyphs, inclusive
	glyphEnd      int // exclusive
	width         fixed.T
	trailingSpace bool

	// ruby is set instead of subrunIdx/glyphStart/glyphEnd for a unit
	// produced from a ruby container (§4.3 step 8): it is always kept
	// whole, never split further by the line breaker.
	ruby *RubyResult
}

// splitIntoUnits partitions sr's shaped glyphs into breakUnits at the
// rune-index boundaries breakOpportunities found for sr's own text, so
// each unit's width can be measured independently when the line
// breaker decides whether it still fits (§4.3 step 5).
func splitIntoUnits(subrunIdx int, sr subrun, text string) []breakUnit {
	if len(sr.Glyphs) == 0 {
		return nil
	}
	opps := breakOpportunities(text[sr.Start:sr.End])
	oppSet := make(map[int]bool, len(opps))
	for _, o := range opps {
		oppSet[o] = true
	}

	var units []breakUnit
	unitStart := 0
	var width fixed.T
	for i, g := range sr.Glyphs {
		width += g.XAdvance
		nextCluster := -1
		if i+1 < len(sr.Glyphs) {
			nextCluster = sr.Glyphs[i+1].Cluster
		}
		atBreak := nextCluster == -1 || oppSet[nextCluster]
		if atBreak {
			units = append(units, breakUnit{
				subrunIdx:  subrunIdx,
				glyphStart: unitStart,
				glyphEnd:   i + 1,
				width:      width,
			})
			unitStart = i + 1
			width = 0
		}
	}
	return units
}

// breakLines walks breakUnits in logical order, accumulating width
// until the next unit would exceed targetWidth, then starts a new
// line — placing an over-wide unit alone on its own line rather than
// dropping it (§4.3 step 5: "if even one break-unit does not fit,
// place it anyway").
func breakLines(units []breakUnit, targetWidth fixed.T) [][]breakUnit {
	if len(units) == 0 {
		return nil
	}
	var lines [][]breakUnit
	var cur []breakUnit
	var curWidth fixed.T
	for _, u := range units {
		if len(cur) > 0 && curWidth+u.width > targetWidth {
			lines = append(lines, cur)
			cur = nil
			curWidth = 0
		}
		cur = append(cur, u)
		curWidth += u.width
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
