package fixed

import "testing"

func TestFromIntRoundTrip(t *testing.T) {
	v := FromInt(12)
	if v.Int() != 12 {
		t.Fatalf("Int() = %d, want 12", v.Int())
	}
	if v != 12*One {
		t.Fatalf("FromInt(12) = %d, want %d", v, 12*One)
	}
}

func TestRoundHalfDown(t *testing.T) {
	// Exactly .5 must round to the lower bin, deterministically.
	half := One/2 + 3*One // 3.5px
	if got := half.Round(); got != 3 {
		t.Fatalf("Round(3.5px) = %d, want 3", got)
	}
}

func TestMulDivOverflow(t *testing.T) {
	if _, err := MulDiv(Max, 2, 1); err != ErrOverflow {
		t.Fatalf("expected overflow error, got %v", err)
	}
}

func TestMulDivRounding(t *testing.T) {
	v, err := MulDiv(FromInt(10), 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := FromFloat64(10.0 / 3.0)
	if d := v - want; d > 1 || d < -1 {
		t.Fatalf("MulDiv(10,1,3) = %v, want ~%v", v, want)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{Point{0, 0}, Point{FromInt(10), FromInt(10)}}
	b := Rect{Point{FromInt(5), FromInt(5)}, Point{FromInt(20), FromInt(8)}}
	u := a.Union(b)
	if u.Max.X != FromInt(20) || u.Max.Y != FromInt(10) {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestAddOverflow(t *testing.T) {
	if _, err := Add(Max, One); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}
