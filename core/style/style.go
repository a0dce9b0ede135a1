// Package style implements the flat, inherited style bag attached to
// every InlineNode (§3 "Style"). Unlike a general CSS property type
// modelling auto/inherit/initial keywords for an arbitrary W3C
// cascade, subrandr only ever cascades a small closed set of
// properties down a tree that is already fully resolved by the
// format-specific parser — there is no user-agent stylesheet, no
// specificity, and no STYLE blocks. Cascading here is therefore
// reduced to "child inherits parent's computed Style, then overrides
// the properties it specifies", which Override below implements
// directly instead of through a generic property-matching engine.
package style

import "github.com/afishhh/subrandr/core/fixed"

// EdgeStyle selects how a text run's glyph edges are painted (§3).
type EdgeStyle int

const (
	EdgeNone EdgeStyle = iota
	EdgeDropShadow
	EdgeRaised
	EdgeDepressed
	EdgeOutline
	EdgeSoftShadow
)

// RubyMode controls how a Ruby node's annotation relates to its base
// text (§3).
type RubyMode int

const (
	RubyNone RubyMode = iota
	RubyOver
	RubyUnder
	RubyContainer
)

// Color is a straight (non-premultiplied) 8-bit RGBA color, as used in
// a document's style properties. Premultiplication happens only at
// paint/rasterize time (§4.5).
type Color struct {
	R, G, B, A uint8
}

// Opaque reports whether the color has full coverage.
func (c Color) Opaque() bool { return c.A == 255 }

// Transparent is the zero value: fully transparent black.
var Transparent = Color{}

// White is a common default text color.
var White = Color{255, 255, 255, 255}

// Weight is a CSS-style numeric font weight (100-900). Named the same
// way golang.org/x/image/font.Weight does, but kept as a plain int so
// arbitrary OpenType variable-weight axis values pass through
// unclamped.
type Weight int

const (
	WeightThin      Weight = 100
	WeightLight     Weight = 300
	WeightNormal    Weight = 400
	WeightMedium    Weight = 500
	WeightSemiBold  Weight = 600
	WeightBold      Weight = 700
	WeightBlack     Weight = 900
)

// Style is the flat, inherited property bag described in §3. Every
// field is "computed" — percentages and keyword defaults have already
// been resolved by the time a Style reaches the layout engine; only
// EdgeBlur and LetterSpacing carry 26.6 quantities, matching §4.6's
// "blur parameters are quantized to 1/64 unit" requirement.
type Style struct {
	FamilyList  []string
	Weight      Weight
	Italic      bool
	FontSizePt  float32
	Color       Color
	Background  Color
	EdgeStyle   EdgeStyle
	EdgeColor   Color
	EdgeBlur    fixed.T
	Underline   bool
	Strikethrough bool
	LetterSpacing fixed.T
	RubyMode    RubyMode
}

// Default returns the root style new documents inherit from: a
// sans-serif family list, normal weight, white text, no decorations.
// Format parsers override this with whatever defaults their format
// specifies (SRV3's default color, WebVTT's default family stack) —
// this is only the fallback of last resort.
func Default() Style {
	return Style{
		FamilyList: []string{"sans-serif"},
		Weight:     WeightNormal,
		FontSizePt: 18,
		Color:      White,
		Background: Transparent,
		EdgeStyle:  EdgeNone,
		EdgeColor:  Color{0, 0, 0, 255},
		RubyMode:   RubyNone,
	}
}

// Inherit computes the style a child node has when it specifies no
// overrides of its own: every field of Style is inherited bit-for-bit
// in this model (there are no non-inherited properties in the subset
// §3 specifies), so Inherit is the identity — it exists as a named
// operation so call sites read as cascading rather than as aliasing.
func Inherit(parent Style) Style {
	return parent
}

// Override merges non-zero-value overrides from patch on top of base,
// field by field. A zero value in patch (empty FamilyList, Weight 0,
// etc.) means "not specified, inherit" — format parsers that need to
// explicitly reset a property to a CSS-style initial value must do so
// by setting it to Default()'s value rather than the zero value.
func Override(base Style, patch Style) Style {
	out := base
	if len(patch.FamilyList) > 0 {
		out.FamilyList = patch.FamilyList
	}
	if patch.Weight != 0 {
		out.Weight = patch.Weight
	}
	if patch.Italic {
		out.Italic = true
	}
	if patch.FontSizePt != 0 {
		out.FontSizePt = patch.FontSizePt
	}
	if patch.Color != (Color{}) {
		out.Color = patch.Color
	}
	if patch.Background != (Color{}) {
		out.Background = patch.Background
	}
	if patch.EdgeStyle != EdgeNone {
		out.EdgeStyle = patch.EdgeStyle
	}
	if patch.EdgeColor != (Color{}) {
		out.EdgeColor = patch.EdgeColor
	}
	if patch.EdgeBlur != 0 {
		out.EdgeBlur = patch.EdgeBlur
	}
	if patch.Underline {
		out.Underline = true
	}
	if patch.Strikethrough {
		out.Strikethrough = true
	}
	if patch.LetterSpacing != 0 {
		out.LetterSpacing = patch.LetterSpacing
	}
	if patch.RubyMode != RubyNone {
		out.RubyMode = patch.RubyMode
	}
	return out
}
