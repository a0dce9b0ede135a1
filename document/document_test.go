package document

import (
	"testing"

	"github.com/afishhh/subrandr/core/style"
)

func TestEventActiveHalfOpen(t *testing.T) {
	e := Event{TStartMS: 1000, TEndMS: 2000}
	cases := []struct {
		t    int64
		want bool
	}{
		{999, false},
		{1000, true},
		{1500, true},
		{1999, true},
		{2000, false},
	}
	for _, c := range cases {
		if got := e.Active(c.t); got != c.want {
			t.Errorf("Active(%d) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestNewAssignsStableIndices(t *testing.T) {
	events := []Event{
		{TStartMS: 0, TEndMS: 1000},
		{TStartMS: 500, TEndMS: 1500},
	}
	subs := New(events, FormatFlags{}, nil)
	for i, e := range subs.Events {
		if e.Index != i {
			t.Errorf("event %d has Index %d", i, e.Index)
		}
	}
}

func TestInlineNodeConstructors(t *testing.T) {
	text := NewText("hello", style.Default())
	if text.Kind != KindText || text.Text != "hello" {
		t.Fatalf("unexpected text node: %+v", text)
	}
	br := NewLineBreak()
	if br.Kind != KindLineBreak {
		t.Fatalf("unexpected line break node: %+v", br)
	}
	ruby := NewRuby([]InlineNode{text}, []InlineNode{NewText("he", style.Default())}, style.Default())
	if ruby.Kind != KindRuby || len(ruby.Base) != 1 || len(ruby.Annotation) != 1 {
		t.Fatalf("unexpected ruby node: %+v", ruby)
	}
}

func TestCheckFinite(t *testing.T) {
	if !CheckFinite(12.5) {
		t.Fatal("12.5 should be finite")
	}
	if CheckFinite(1.0 / zero()) {
		t.Fatal("+Inf should not be finite")
	}
}

func zero() float64 { return 0 }
