package inline

import (
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
)

// itemKind discriminates the flat items linearize produces.
type itemKind int

const (
	itemText itemKind = iota
	itemLineBreak
	itemRuby
)

// item is one entry of the flat, logical-order sequence linearize
// produces from an InlineNode tree (§4.3 step 1).
type item struct {
	kind  itemKind
	text  string
	style style.Style

	// itemRuby: base and annotation subtrees, still structured, to be
	// laid out as independent inline boxes by ruby.go (§4.3 step 8).
	rubyBase, rubyAnnotation []document.InlineNode
}

// linearize walks root in logical (document) order, emitting one item
// per text chunk, forced break, and ruby container, each carrying its
// fully cascaded style (§4.3 step 1).
func linearize(root document.InlineNode, inherited style.Style) []item {
	var out []item
	walkNode(root, inherited, &out)
	return out
}

func walkNode(n document.InlineNode, inherited style.Style, out *[]item) {
	computed := style.Override(inherited, n.Style)
	switch n.Kind {
	case document.KindText:
		*out = append(*out, item{kind: itemText, text: n.Text, style: computed})
	case document.KindLineBreak:
		*out = append(*out, item{kind: itemLineBreak, style: computed})
	case document.KindRuby:
		*out = append(*out, item{
			kind:           itemRuby,
			style:          computed,
			rubyBase:       n.Base,
			rubyAnnotation: n.Annotation,
		})
	case document.KindInline:
		for _, child := range n.Children {
			walkNode(child, computed, out)
		}
	}
}
