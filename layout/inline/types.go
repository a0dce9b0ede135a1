// Package inline implements the Inline Layout Engine (§4.3): laying
// out one Box — an InlineNode tree plus a target width — into an
// ordered list of LineFragments, matching CSS 2 inline layout for
// LTR+RTL with a targeted subset of ruby positioning.
//
// The procedure is organized as one file per numbered step in §4.3 so
// each stage stays independently readable and testable: linearize.go
// (step 1), bidi.go (step 2), itemize.go (steps 3-4), break.go (step
// 5), position.go (steps 6-7), ruby.go (step 8). layout.go wires them
// together behind the single Layout entry point.
package inline

import (
	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
	"github.com/afishhh/subrandr/font"
)

// Box is the layout input derived from an Event at a point in time
// (§3 "Box (layout input)").
type Box struct {
	Root        document.InlineNode
	TargetWidth fixed.T
}

// Glyph is one positioned glyph within a GlyphRun, in the run's local
// coordinate space (§3 "GlyphRun").
type Glyph struct {
	GlyphID  uint32
	XAdvance fixed.T
	YOffset  fixed.T
	Cluster  int
}

// GlyphRun is a run of glyphs sharing a face, size, color and bidi
// level (§3 "GlyphRun"). positionLines emits one per line-breaking
// unit, so neighbouring runs on a line may share all of these.
type GlyphRun struct {
	FaceID    font.FaceID
	SizePx    fixed.T
	Color     style.Color
	Background style.Color
	Edge      style.EdgeStyle
	EdgeColor style.Color
	EdgeBlur  fixed.T
	Glyphs    []Glyph
	BidiLevel int
	Underline, Strikethrough bool
	// LetterSpacing is the run's letter spacing. positionLines has
	// already added it once to every glyph's XAdvance; nothing
	// downstream adds it again.
	LetterSpacing fixed.T
}

// Decoration is an underline or strikethrough rectangle computed for
// one GlyphRun, in line-local coordinates.
type Decoration struct {
	Rect      fixed.Rect
	Color     style.Color
	Strikethrough bool
}

// LineFragment is one laid-out line (§3 "LineFragment (layout
// output)"). OriginY is the line's baseline.
type LineFragment struct {
	OriginX, OriginY fixed.T
	Width            fixed.T
	Ascent, Descent  fixed.T
	Runs             []GlyphRun
	Decorations      []Decoration
	// Background is the line's own tight bounding rect, set by Layout
	// for callers that draw one background per line rather than one per
	// block (§4.4 step 1, document.FormatFlags.BackgroundBoxPerLine).
	Background       *fixed.Rect
}

// Result is the output of Layout: an ordered list of LineFragments
// plus the bounding box they occupy, relative to the box's origin.
type Result struct {
	Lines []LineFragment
	Bounds fixed.Rect
}

// Resources bundles the external services Layout needs at each step:
// a font matcher to resolve styles to faces (§4.2 Match) and a shaper
// to turn text runs into positioned glyphs (§4.2 Shape). Both are
// shared, long-lived, and safe for the single-threaded-per-renderer
// usage this package assumes (§5).
type Resources struct {
	Matcher *font.Matcher
	Shaper  *font.Shaper
}

// lineGapFactorDefault is the default line-gap multiplier applied
// between a line's descent and the next line's ascent (§4.3 step 7).
const lineGapFactorDefault = 1.2
