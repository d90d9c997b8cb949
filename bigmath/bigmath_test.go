package bigmath

import "testing"

func TestQuoFloorsTowardNegativeInfinity(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{-1, 2, -1},
		{1, 2, 0},
		{-1, -2, 0},
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
	}
	for _, c := range cases {
		got := FromInt64(c.a).Quo(FromInt64(c.b))
		if got.Int64() != c.want {
			t.Errorf("FromInt64(%d).Quo(%d) = %d, want %d", c.a, c.b, got.Int64(), c.want)
		}
	}
}

func TestQuoPanicsOnZeroDivisor(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on division by zero")
		}
	}()
	_ = FromInt64(1).Quo(Zero())
}

func TestPow(t *testing.T) {
	got := FromInt64(2).Pow(10)
	if got.Int64() != 1024 {
		t.Errorf("2^10 = %d, want 1024", got.Int64())
	}
	if !FromInt64(5).Pow(0).Equal(One()) {
		t.Errorf("x^0 should be 1")
	}
}

func TestSumProduct(t *testing.T) {
	xs := []Int{FromInt64(1), FromInt64(2), FromInt64(3)}
	if Sum(xs).Int64() != 6 {
		t.Errorf("Sum = %d, want 6", Sum(xs).Int64())
	}
	if Product(xs).Int64() != 6 {
		t.Errorf("Product = %d, want 6", Product(xs).Int64())
	}
}

func TestMustFromStringPanicsOnGarbage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on malformed literal")
		}
	}()
	_ = MustFromString("not-a-number")
}

func TestMinMax(t *testing.T) {
	a, b := FromInt64(3), FromInt64(5)
	if !Min(a, b).Equal(a) {
		t.Errorf("Min(3,5) should be 3")
	}
	if !Max(a, b).Equal(b) {
		t.Errorf("Max(3,5) should be 5")
	}
}

func TestAbsNeg(t *testing.T) {
	a := FromInt64(-7)
	if a.Abs().Int64() != 7 {
		t.Errorf("Abs(-7) = %d, want 7", a.Abs().Int64())
	}
	if a.Neg().Int64() != 7 {
		t.Errorf("Neg(-7) = %d, want 7", a.Neg().Int64())
	}
}
