package selector

import (
	"testing"

	"github.com/afishhh/subrandr/core/fixed"
	"github.com/afishhh/subrandr/core/rendercontext"
	"github.com/afishhh/subrandr/document"
)

func testContext() rendercontext.Context {
	return rendercontext.Context{
		DPI:         96,
		VideoWidth:  fixed.FromInt(1920),
		VideoHeight: fixed.FromInt(1080),
	}
}

func TestActiveAtFiltersByTime(t *testing.T) {
	subs := document.New([]document.Event{
		{TStartMS: 0, TEndMS: 1000, Anchor: document.DefaultAnchor},
		{TStartMS: 1000, TEndMS: 2000, Anchor: document.DefaultAnchor},
	}, document.FormatFlags{}, nil)

	inputs, err := ActiveAt(subs, 500, testContext())
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected 1 active event, got %d", len(inputs))
	}
}

func TestActiveAtOrdersByStartThenIndex(t *testing.T) {
	subs := document.New([]document.Event{
		{TStartMS: 100, TEndMS: 2000, Anchor: document.DefaultAnchor},
		{TStartMS: 100, TEndMS: 2000, Anchor: document.DefaultAnchor},
	}, document.FormatFlags{}, nil)

	inputs, err := ActiveAt(subs, 150, testContext())
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(inputs))
	}
	if inputs[0].Event.Index != 0 || inputs[1].Event.Index != 1 {
		t.Fatalf("events not in stable document order: %+v", inputs)
	}
}

func TestRemovingInactiveEventDoesNotChangeOutput(t *testing.T) {
	full := document.New([]document.Event{
		{TStartMS: 0, TEndMS: 1000, Anchor: document.DefaultAnchor},
		{TStartMS: 5000, TEndMS: 6000, Anchor: document.DefaultAnchor},
	}, document.FormatFlags{}, nil)
	trimmed := document.New([]document.Event{
		{TStartMS: 0, TEndMS: 1000, Anchor: document.DefaultAnchor},
	}, document.FormatFlags{}, nil)

	a, err := ActiveAt(full, 500, testContext())
	if err != nil {
		t.Fatal(err)
	}
	b, err := ActiveAt(trimmed, 500, testContext())
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) || a[0].TargetRect != b[0].TargetRect {
		t.Fatalf("output changed after removing an inactive event: %+v vs %+v", a, b)
	}
}

func TestInvalidContextRejected(t *testing.T) {
	subs := document.New(nil, document.FormatFlags{}, nil)
	bad := testContext()
	bad.VideoWidth = 0
	if _, err := ActiveAt(subs, 0, bad); err == nil {
		t.Fatal("expected error for zero video width")
	}
}
