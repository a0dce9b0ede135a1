// Package document implements subrandr's time-independent subtitle
// document model (§3): an immutable tree of styled inline nodes per
// event, plus the anchor each event is positioned at.
//
// Unlike a general-purpose DOM with a mutable tree.Node base and a
// CSS cascade engine, subrandr's documents are produced wholesale by
// a format parser and never mutated afterwards (§3 "Lifecycles:
// Document... shared immutably"), so InlineNode is modelled as a
// single tagged-variant Go type (§9 "Tagged-variant inline tree"):
// one type with a Kind discriminant and only the fields each kind
// needs, rather than an interface implemented by four node types.
package document

import (
	"math"

	"github.com/afishhh/subrandr/core/style"
)

// NodeKind discriminates the variants of InlineNode (§3).
type NodeKind int

const (
	KindText NodeKind = iota
	KindInline
	KindLineBreak
	KindRuby
)

// InlineNode is a tagged-variant tree node. Only the fields relevant
// to Kind are meaningful; this discourages unbounded extension and
// keeps the layout engine's recursion patterns auditable (§9) rather
// than using an interface with one implementation per kind.
type InlineNode struct {
	Kind  NodeKind
	Style style.Style

	// KindText
	Text string

	// KindInline
	Children []InlineNode

	// KindRuby
	Base       []InlineNode
	Annotation []InlineNode
}

// NewText creates a Text node.
func NewText(chars string, sty style.Style) InlineNode {
	return InlineNode{Kind: KindText, Text: chars, Style: sty}
}

// NewInline creates an inline container node.
func NewInline(children []InlineNode, sty style.Style) InlineNode {
	return InlineNode{Kind: KindInline, Children: children, Style: sty}
}

// NewLineBreak creates a forced newline node.
func NewLineBreak() InlineNode {
	return InlineNode{Kind: KindLineBreak}
}

// NewRuby creates a ruby annotation node.
func NewRuby(base, annotation []InlineNode, sty style.Style) InlineNode {
	return InlineNode{Kind: KindRuby, Base: base, Annotation: annotation, Style: sty}
}

// HAlign is horizontal anchor alignment (§3 AnchorSpec).
type HAlign int

const (
	HStart HAlign = iota
	HCenter
	HEnd
)

// VAlign is vertical anchor alignment (§3 AnchorSpec).
type VAlign int

const (
	VTop VAlign = iota
	VMiddle
	VBottom
)

// AnchorSpec positions an event's laid-out block within the inner
// video area (context size minus padding), per §3.
type AnchorSpec struct {
	HAlign HAlign
	VAlign VAlign
	// XPct, YPct, WidthPct are percentages (0-100, may exceed the
	// range for formats that allow overscan) of the inner video area.
	XPct, YPct, WidthPct float64
}

// DefaultAnchor is the conventional bottom-center caption position
// used when a format's parser found no explicit positioning
// attributes.
var DefaultAnchor = AnchorSpec{
	HAlign:   HCenter,
	VAlign:   VBottom,
	XPct:     50,
	YPct:     90,
	WidthPct: 80,
}

// RawPosition retains the original, format-specific positioning data
// an event carried before it was normalized to AnchorSpec — SRV3 pen
// index/window position or WebVTT cue settings (§SPEC_FULL.C). The
// rendering core never reads this; it exists only so format.srv3 and
// format.webvtt can support diagnostics and so a future re-serializer
// can round-trip losslessly. A nil value means the parser produced an
// AnchorSpec directly with nothing left to preserve.
type RawPosition interface {
	// Source names the format this raw position came from, e.g.
	// "srv3" or "webvtt", for diagnostic messages.
	Source() string
}

// Event is one subtitle cue: a time range, a tree of styled inline
// content, and the anchor it is positioned at (§3).
type Event struct {
	TStartMS, TEndMS int64
	Root             InlineNode
	Anchor           AnchorSpec
	Raw              RawPosition
	// Index is the event's position in document order, used by the
	// selector for stable tie-breaking (§4.1 step 1).
	Index int
}

// Active reports whether the event is active at time t, per §4.1's
// half-open interval rule.
func (e Event) Active(tMS int64) bool {
	return e.TStartMS <= tMS && tMS < e.TEndMS
}

// FormatFlags captures the small behavioral differences between SRV3
// and WebVTT documents (§9 "Format-variant knobs", promoted into the
// data model by SPEC_FULL.C): the engine reads only these two
// booleans and never branches on a format name.
type FormatFlags struct {
	// BackgroundBoxPerLine: WebVTT draws one background rectangle per
	// line; SRV3 draws one rectangle for the whole block.
	BackgroundBoxPerLine bool
	// DecorationsAfterGlyphs: WebVTT paints underline/strikethrough
	// after glyph bodies; SRV3 paints them before, right after
	// shadows (§4.4 step 5).
	DecorationsAfterGlyphs bool
}

// FontFaceRef is an opaque reference to the external font database a
// Subtitles document may carry (§3 "A font database reference
// (external)"). subrandr's core never constructs one directly — a
// format parser or the embedding application supplies it alongside
// the parsed events when a document requires specific embedded fonts
// (SRV3's rare embedded-font extension, or a WebVTT sidecar).
type FontFaceRef interface {
	// Name is the logical family name this embedded face should be
	// matched under.
	Name() string
	// Data returns the raw font file bytes.
	Data() []byte
}

// Subtitles is the complete, immutable parsed document (§3). Once
// constructed it is never mutated — per §3's Lifecycles, it is shared
// by reference and only destroyed after all dependent renderers
// release it, which in Go terms just means callers must not let a
// Subtitles value outlive only by convention (Go's GC handles the
// rest); the mutual-exclusion part of that lifecycle rule is enforced
// instead by render.Renderer's bind/unbind state machine.
type Subtitles struct {
	Events      []Event
	Flags       FormatFlags
	EmbeddedFonts []FontFaceRef
}

// New constructs a Subtitles document from already-parsed events,
// assigning stable document-order indices.
func New(events []Event, flags FormatFlags, fonts []FontFaceRef) *Subtitles {
	for i := range events {
		events[i].Index = i
	}
	return &Subtitles{Events: events, Flags: flags, EmbeddedFonts: fonts}
}

// CheckFinite reports whether f is neither NaN nor infinite, so it can
// be converted to a fixed.T at all. It does not check the ±2^25 range;
// fixed.Add/Sub/Mul/MulDiv report that as ErrOverflow. It exists here
// because document construction from
// floating-point source formats (WebVTT percentages, SRV3 pixel
// coordinates) is the most common place a NaN or an overscan value
// can sneak into a fixed.T in the first place.
func CheckFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
