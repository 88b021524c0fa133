package mathexpr

import (
	"math"
	"testing"
)

func TestCompile(t *testing.T) {
	cases := []struct {
		expr string
		x    float64
		want float64
	}{
		{"x**2", 3, 9},
		{"x^2 - 4*x + 3", 0, 3},
		{"X^2", -2, 4},
		{"sin(x)", 0, 0},
		{"cos(0) + 1", 5, 2},
		{"-x**2", 2, -4},
		{"2^3^2", 0, 512},
		{"sqrt(abs(x))", -9, 3},
		{"2*pi", 0, 2 * math.Pi},
		{"exp(x)/e", 1, 1},
		{"(x + 1) * (x - 1)", 4, 15},
	}
	for _, tc := range cases {
		fn, err := Compile(tc.expr)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.expr, err)
		}
		if got := fn(tc.x); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%q at %v = %v, want %v", tc.expr, tc.x, got, tc.want)
		}
	}
}

func TestCompileWithParams(t *testing.T) {
	fn, err := CompileWith("m*x + b", map[string]float64{"m": 2, "b": 1})
	if err != nil {
		t.Fatalf("CompileWith: %v", err)
	}
	if got := fn(3); got != 7 {
		t.Fatalf("m*x+b at 3 = %v, want 7", got)
	}
}

func TestFreeNames(t *testing.T) {
	cases := []struct {
		expr string
		want []string
	}{
		{"x**2 - 4*x + 3", []string{"x"}},
		{"a*x**2 + b*x + c", []string{"a", "b", "c", "x"}},
		{"sin(x) + 2*pi*k", []string{"k", "x"}},
		{"exp(1) + e", nil},
		{"A*X", []string{"a", "x"}},
	}
	for _, tc := range cases {
		got := FreeNames(tc.expr)
		if len(got) != len(tc.want) {
			t.Fatalf("FreeNames(%q) = %v, want %v", tc.expr, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("FreeNames(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		}
	}
}

func TestCompileRejectsUnknownNames(t *testing.T) {
	bad := []string{
		"",
		"y + 1",
		"__import__('os')",
		"open(x)",
		"x +",
		"sin",
		"2x", // implicit multiplication is not supported
	}
	for _, expr := range bad {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) succeeded, want error", expr)
		}
	}
}

func TestSample(t *testing.T) {
	fn, err := Compile("x")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	pts := Sample(fn, 0, 1, 2)
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	if pts[0].X != 400 || pts[0].Y != 260 {
		t.Errorf("origin mapped to (%d,%d), want (400,260)", pts[0].X, pts[0].Y)
	}
	if pts[1].X != 440 || pts[1].Y != 220 {
		t.Errorf("(1,1) mapped to (%d,%d), want (440,220)", pts[1].X, pts[1].Y)
	}
}

func TestSampleCountAndPoles(t *testing.T) {
	fn, err := Compile("1/x")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	pts := Sample(fn, -1, 1, 121)
	if len(pts) != 121 {
		t.Fatalf("got %d points, want 121", len(pts))
	}
	// x=0 is the 61st sample; the pole flattens to the axis.
	if pts[60].X != 400 || pts[60].Y != 260 {
		t.Fatalf("pole mapped to (%d,%d), want (400,260)", pts[60].X, pts[60].Y)
	}
}
