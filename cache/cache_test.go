package cache

import "testing"

func constSize(int) int64 { return 1 }

func TestPutGetRoundTrip(t *testing.T) {
	c := New[string, int](10, constSize)
	c.Put("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestEvictsOldestWhenOverBudget(t *testing.T) {
	c := New[string, int](2, constSize)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected b to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected c to survive")
	}
}

func TestPinnedEntrySurvivesEviction(t *testing.T) {
	c := New[string, int](1, constSize)
	c.Put("a", 1)
	c.Pin("a")
	c.Put("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("pinned entry a should not have been evicted")
	}
	c.UnpinAll()
	c.Put("c", 3)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be evicted once unpinned")
	}
}

func TestGetPromotesToFront(t *testing.T) {
	c := New[string, int](2, constSize)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most-recently-used, b is least
	c.Put("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b (least recently used) to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive")
	}
}
