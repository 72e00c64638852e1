package buffer

import "testing"

func TestComparePos(t *testing.T) {
	cases := []struct {
		name string
		a, b Pos
		want int
	}{
		{name: "equal", a: Pos{Row: 1, GraphemeCol: 2}, b: Pos{Row: 1, GraphemeCol: 2}, want: 0},
		{name: "earlier row", a: Pos{Row: 0, GraphemeCol: 9}, b: Pos{Row: 1, GraphemeCol: 0}, want: -1},
		{name: "later col", a: Pos{Row: 1, GraphemeCol: 3}, b: Pos{Row: 1, GraphemeCol: 2}, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComparePos(tc.a, tc.b); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNormalizeRange(t *testing.T) {
	r := Range{
		Start: Pos{Row: 2, GraphemeCol: 0},
		End:   Pos{Row: 0, GraphemeCol: 5},
	}
	n := NormalizeRange(r)
	if n.Start != r.End || n.End != r.Start {
		t.Fatalf("got %+v", n)
	}
	if !(Range{}).IsEmpty() {
		t.Fatalf("zero range must be empty")
	}
}

func TestClampRange(t *testing.T) {
	lineLen := func(row int) int { return []int{3, 5}[row] }
	r := ClampRange(Range{
		Start: Pos{Row: -1, GraphemeCol: 7},
		End:   Pos{Row: 9, GraphemeCol: 9},
	}, 2, lineLen)

	want := Range{
		Start: Pos{Row: 0, GraphemeCol: 3},
		End:   Pos{Row: 1, GraphemeCol: 5},
	}
	if r != want {
		t.Fatalf("got %+v, want %+v", r, want)
	}
}
