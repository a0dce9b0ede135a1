package render

import (
	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

// fnv64a mixes v into the running FNV-1a hash h, the same algorithm
// rendercontext.Context.Fingerprint uses for F_ctx, so the two halves
// of a layout cache key are computed the same way.
func fnv64a(h uint64, v uint64) uint64 {
	h ^= v
	h *= 1099511628211
	return h
}

const fnvOffset = uint64(14695981039346656037)

// boxFingerprint hashes an event's content tree and anchor — the
// "box_fingerprint" half of the per-box layout cache key described in
// §4.7 step 1. Events with the same fingerprint are treated as laying
// out identically against the same context and target width: the cache
// never compares the trees themselves, so a hash collision, or a
// difference finer than the 1/64 steps floatBits keeps, reuses the
// other event's layout.
func boxFingerprint(ev *document.Event) uint64 {
	h := fnvOffset
	h = mixAnchor(h, ev.Anchor)
	h = mixNode(h, ev.Root)
	return h
}

func mixAnchor(h uint64, a document.AnchorSpec) uint64 {
	h = fnv64a(h, uint64(a.HAlign))
	h = fnv64a(h, uint64(a.VAlign))
	h = fnv64a(h, floatBits(a.XPct))
	h = fnv64a(h, floatBits(a.YPct))
	h = fnv64a(h, floatBits(a.WidthPct))
	return h
}

func mixNode(h uint64, n document.InlineNode) uint64 {
	h = fnv64a(h, uint64(n.Kind))
	h = mixStyle(h, n.Style)
	h = mixString(h, n.Text)
	for _, c := range n.Children {
		h = mixNode(h, c)
	}
	for _, c := range n.Base {
		h = mixNode(h, c)
	}
	for _, c := range n.Annotation {
		h = mixNode(h, c)
	}
	return h
}

func mixStyle(h uint64, s style.Style) uint64 {
	for _, f := range s.FamilyList {
		h = mixString(h, f)
	}
	h = fnv64a(h, uint64(s.Weight))
	h = fnv64a(h, boolBit(s.Italic))
	h = fnv64a(h, floatBits(float64(s.FontSizePt)))
	h = mixColor(h, s.Color)
	h = mixColor(h, s.Background)
	h = fnv64a(h, uint64(s.EdgeStyle))
	h = mixColor(h, s.EdgeColor)
	h = fnv64a(h, uint64(s.EdgeBlur))
	h = fnv64a(h, boolBit(s.Underline))
	h = fnv64a(h, boolBit(s.Strikethrough))
	h = fnv64a(h, uint64(s.LetterSpacing))
	h = fnv64a(h, uint64(s.RubyMode))
	return h
}

func mixColor(h uint64, c style.Color) uint64 {
	return fnv64a(h, uint64(c.R)<<24|uint64(c.G)<<16|uint64(c.B)<<8|uint64(c.A))
}

func mixString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = fnv64a(h, uint64(s[i]))
	}
	return fnv64a(h, 0xff) // terminator, so "ab","c" and "a","bc" don't collide
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func floatBits(f float64) uint64 {
	return uint64(fixed.FromFloat64(f))
}
