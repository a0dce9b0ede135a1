// Package selector implements the Event Selector (§4.1): given a
// document and a timestamp, it picks the active events, resolves each
// one's anchor against the current Context, and yields the ordered
// list of boxes the inline layout engine should lay out for this
// frame.
package selector

import (
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/afishhh/subrandr/core/errs"
	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/rendercontext"
	"github.com/afishhh/subrandr/document"
	"github.com/afishhh/subrandr/internal/trace"
)

func tracer() tracing.Trace {
	return trace.For("subrandr.selector")
}

// LayoutInput is one box to lay out for the current frame: the
// event's content tree, the target inline width it should wrap to,
// and the rectangle its anchor resolves to within the video area
// (§3 "Box (layout input)").
type LayoutInput struct {
	Event       *document.Event
	TargetRect  fixed.Rect
	TargetWidth fixed.T
}

// ActiveAt returns the active boxes for subs at time tMS against ctx,
// in document order with stable (start, index) tie-breaking (§4.1
// step 1). Returned as a plain slice rather than an iterator — event
// counts per frame are small enough that a channel-based iterator
// would only add goroutine bookkeeping for no benefit.
func ActiveAt(subs *document.Subtitles, tMS int64, ctx rendercontext.Context) ([]LayoutInput, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	var active []document.Event
	for _, e := range subs.Events {
		if e.Active(tMS) {
			active = append(active, e)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].TStartMS != active[j].TStartMS {
			return active[i].TStartMS < active[j].TStartMS
		}
		return active[i].Index < active[j].Index
	})
	tracer().Debugf("selector: %d active events at t=%d", len(active), tMS)

	inner := ctx.InnerRect()
	out := make([]LayoutInput, 0, len(active))
	for i := range active {
		rect, width, err := resolveAnchor(active[i].Anchor, inner)
		if err != nil {
			return nil, errs.Wrap(err, errs.InvalidArgument, "resolving anchor for event %d", active[i].Index)
		}
		out = append(out, LayoutInput{
			Event:       &active[i],
			TargetRect:  rect,
			TargetWidth: width,
		})
	}
	return out, nil
}

// resolveAnchor turns an AnchorSpec's percentages into a concrete
// rectangle within inner (§4.1 step 2).
func resolveAnchor(a document.AnchorSpec, inner fixed.Rect) (fixed.Rect, fixed.T, error) {
	if !document.CheckFinite(a.XPct) || !document.CheckFinite(a.YPct) || !document.CheckFinite(a.WidthPct) {
		return fixed.Rect{}, 0, errs.New(errs.InvalidArgument, "anchor percentage is not finite")
	}
	innerW := inner.Width()
	innerH := inner.Height()

	width, err := fixed.MulDiv(innerW, int(a.WidthPct*64), 100*64)
	if err != nil {
		return fixed.Rect{}, 0, err
	}
	x, err := fixed.MulDiv(innerW, int(a.XPct*64), 100*64)
	if err != nil {
		return fixed.Rect{}, 0, err
	}
	y, err := fixed.MulDiv(innerH, int(a.YPct*64), 100*64)
	if err != nil {
		return fixed.Rect{}, 0, err
	}
	x += inner.Min.X
	y += inner.Min.Y

	var left fixed.T
	switch a.HAlign {
	case document.HStart:
		left = x
	case document.HCenter:
		left = x - width/2
	case document.HEnd:
		left = x - width
	}

	// VAlign only affects where the laid-out block's top edge starts;
	// the actual vertical extent depends on the block's height, which
	// isn't known until layout runs. We report the anchor point itself
	// via TargetRect.Min.Y; render.Renderer.Render shifts the block up
	// by half or all of its laid-out height for VMiddle/VBottom once
	// layout has run.
	top := y

	rect := fixed.Rect{
		Min: fixed.Point{X: left, Y: top},
		Max: fixed.Point{X: left + width, Y: top},
	}
	return rect, width, nil
}
