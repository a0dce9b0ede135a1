// Package paint implements the Painter (§4.4): it turns one box's
// laid-out LineFragments into an ordered list of draw commands a
// rasterizer can execute mechanically, without itself touching a
// pixel buffer. Keeping paint-list generation separate from
// rasterization mirrors the split between "what to draw" and "how to
// composite it" that the teacher's own glyph rasterizer already
// draws between outline walking and mask production.
//
// Commands are emitted in the exact draw order §4.4 specifies: one
// background rectangle per line or per block, then for every run in
// visual order its shadow/edge passes, then its glyph bodies, with
// underline/strikethrough rectangles interleaved before or after the
// glyph bodies depending on the format's decoration-order flag.
package paint

import (
	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
	"github.com/afishhh/subrandr/font"
	"github.com/afishhh/subrandr/layout/inline"
)

// Kind discriminates the small closed set of paint operations the
// rasterizer must support (§4.5's four primitives plus the blur pass
// that shadow/edge commands imply).
type Kind int

const (
	// KindRectFill paints Color over Rect (background boxes,
	// underline/strikethrough decorations).
	KindRectFill Kind = iota
	// KindGlyph blits one rasterized glyph bitmap at Glyph.Pos, tinted
	// with TintColor when the bitmap is a coverage mask rather than a
	// pre-colored bitmap (§4.4 step 4, §4.5 mask/color blit).
	KindGlyph
	// KindShadow composites ShadowGlyphs into a temporary coverage
	// buffer, blurs it by BlurRadius, tints the result with Color, and
	// blits it offset by Offset (§4.4 step 2-3: drop shadow, glow,
	// soft shadow and the outline/raised/depressed edge styles are all
	// expressed as one or two of these with different parameters).
	KindShadow
)

// GlyphPlacement names one rasterized glyph and the exact pen position
// (in device pixels, before bearing is applied) it should be blitted
// at.
type GlyphPlacement struct {
	Key font.GlyphKey
	Pos fixed.Point
}

// Command is one entry of the ordered paint list.
type Command struct {
	Kind Kind

	Rect  fixed.Rect
	Color style.Color

	Glyph     GlyphPlacement
	TintColor style.Color

	ShadowGlyphs []GlyphPlacement
	BlurRadius   fixed.T
	Offset       fixed.Point
}

// edgeOffsetUnit is the fixed device-pixel offset used for the
// raised/depressed edge styles, which have no dedicated offset field
// in style.Style and are therefore rendered as a constant one-pixel
// relief rather than a font-size-relative one (§4.4 step 3).
const edgeOffsetUnit = fixed.One

// dropShadowOffsetFactor scales a run's font size to the drop shadow's
// offset, applied on both axes whatever the run's edge_blur.
const dropShadowOffsetFactor = 0.06

// Generate produces the ordered paint list for one laid-out box,
// placed at origin (the top-left of the box in device pixels), honoring
// the format's decoration-order and background-grouping flags (§4.4).
func Generate(result inline.Result, origin fixed.Point, flags document.FormatFlags) []Command {
	var cmds []Command

	if flags.BackgroundBoxPerLine {
		for _, line := range result.Lines {
			if c, ok := lineBackground(line, origin); ok {
				cmds = append(cmds, c)
			}
		}
	} else if c, ok := blockBackground(result, origin); ok {
		cmds = append(cmds, c)
	}

	for _, line := range result.Lines {
		lineOrigin := fixed.Point{X: origin.X + line.OriginX, Y: origin.Y + line.OriginY}

		if !flags.DecorationsAfterGlyphs {
			cmds = append(cmds, decorationCommands(line, lineOrigin)...)
		}
		cmds = append(cmds, runCommands(line, lineOrigin)...)
		if flags.DecorationsAfterGlyphs {
			cmds = append(cmds, decorationCommands(line, lineOrigin)...)
		}
	}

	return cmds
}

// lineBackground emits one background rectangle for a single line,
// used by formats that box each line separately (WebVTT).
func lineBackground(line inline.LineFragment, origin fixed.Point) (Command, bool) {
	color := dominantBackground(line.Runs)
	if color.A == 0 || line.Background == nil {
		return Command{}, false
	}
	return Command{Kind: KindRectFill, Rect: translate(*line.Background, origin), Color: color}, true
}

// blockBackground emits one background rectangle for the whole box,
// used by formats that box the entire event (SRV3).
func blockBackground(result inline.Result, origin fixed.Point) (Command, bool) {
	var color style.Color
	for _, line := range result.Lines {
		if c := dominantBackground(line.Runs); c.A != 0 {
			color = c
			break
		}
	}
	if color.A == 0 || result.Bounds.Empty() {
		return Command{}, false
	}
	return Command{Kind: KindRectFill, Rect: translate(result.Bounds, origin), Color: color}, true
}

func dominantBackground(runs []inline.GlyphRun) style.Color {
	for _, r := range runs {
		if r.Background.A != 0 {
			return r.Background
		}
	}
	return style.Transparent
}

// decorationCommands turns a line's precomputed Decorations into fill
// commands. decorationsFor (layout/inline/position.go) computes Rect.X
// relative to the line's own left edge but Rect.Y already folded in
// the line's baseline, so the two axes translate by different
// reference points.
func decorationCommands(line inline.LineFragment, lineOrigin fixed.Point) []Command {
	cmds := make([]Command, 0, len(line.Decorations))
	by := fixed.Point{X: lineOrigin.X, Y: lineOrigin.Y - line.OriginY}
	for _, d := range line.Decorations {
		cmds = append(cmds, Command{
			Kind:  KindRectFill,
			Rect:  translate(d.Rect, by),
			Color: d.Color,
		})
	}
	return cmds
}

// runCommands emits the shadow/edge passes and glyph-body commands for
// every run on a line, in visual (left-to-right storage) order — the
// runs are already visually ordered by positionLines.
func runCommands(line inline.LineFragment, lineOrigin fixed.Point) []Command {
	var cmds []Command
	x := lineOrigin.X
	for _, run := range line.Runs {
		placements, width := placeGlyphs(run, fixed.Point{X: x, Y: lineOrigin.Y})

		if run.Edge != style.EdgeNone {
			cmds = append(cmds, edgeCommands(run, placements)...)
		}
		for _, p := range placements {
			cmds = append(cmds, Command{Kind: KindGlyph, Glyph: p, TintColor: run.Color})
		}

		x += width
	}
	return cmds
}

// placeGlyphs walks a run's glyphs, accumulating pen position and
// quantizing each glyph's horizontal sub-pixel phase into one of the
// four buckets §4.2 Rasterize requires, returning the placements plus
// the run's total advance.
func placeGlyphs(run inline.GlyphRun, penOrigin fixed.Point) ([]GlyphPlacement, fixed.T) {
	placements := make([]GlyphPlacement, 0, len(run.Glyphs))
	pen := penOrigin.X
	for _, g := range run.Glyphs {
		frac := float64(pen&(fixed.One-1)) / float64(fixed.One)
		sub := font.QuantizeSubpixelX(frac)
		placements = append(placements, GlyphPlacement{
			Key: font.GlyphKey{Face: run.FaceID, GlyphID: g.GlyphID, SizePx: run.SizePx, Subpixel: sub},
			Pos: fixed.Point{X: pen, Y: penOrigin.Y + g.YOffset},
		})
		pen += g.XAdvance
	}
	return placements, pen - penOrigin.X
}

// edgeCommands produces the shadow/outline/raised/depressed passes
// that precede a run's glyph bodies, reducing every edge_style to one
// or two KindShadow commands with different blur radius and offset
// (§4.4 step 2-3).
func edgeCommands(run inline.GlyphRun, placements []GlyphPlacement) []Command {
	switch run.Edge {
	case style.EdgeDropShadow:
		offset := fixed.FromFloat64(run.SizePx.Float64() * dropShadowOffsetFactor)
		return []Command{shadowCommand(placements, run.EdgeBlur, fixed.Point{X: offset, Y: offset}, run.EdgeColor)}
	case style.EdgeSoftShadow:
		return []Command{shadowCommand(placements, run.EdgeBlur, fixed.Point{}, run.EdgeColor)}
	case style.EdgeOutline:
		radius := run.EdgeBlur
		if radius == 0 {
			radius = fixed.One / 2
		}
		return []Command{shadowCommand(placements, radius, fixed.Point{}, run.EdgeColor)}
	case style.EdgeRaised:
		return []Command{
			shadowCommand(placements, 0, fixed.Point{X: -edgeOffsetUnit, Y: -edgeOffsetUnit}, run.EdgeColor),
		}
	case style.EdgeDepressed:
		return []Command{
			shadowCommand(placements, 0, fixed.Point{X: edgeOffsetUnit, Y: edgeOffsetUnit}, run.EdgeColor),
		}
	default:
		return nil
	}
}

func shadowCommand(placements []GlyphPlacement, radius fixed.T, offset fixed.Point, color style.Color) Command {
	return Command{
		Kind:         KindShadow,
		ShadowGlyphs: placements,
		BlurRadius:   radius,
		Offset:       offset,
		Color:        color,
	}
}

func translate(r fixed.Rect, by fixed.Point) fixed.Rect {
	return fixed.Rect{
		Min: fixed.Point{X: r.Min.X + by.X, Y: r.Min.Y + by.Y},
		Max: fixed.Point{X: r.Max.X + by.X, Y: r.Max.Y + by.Y},
	}
}
