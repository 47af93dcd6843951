package diffcore

import "testing"

func sampleHunks() []Hunk {
	return []Hunk{
		{StartRow: 5, RowCount: 3},
		{StartRow: 20, RowCount: 4},
		{StartRow: 40, RowCount: 2},
	}
}

func TestHunkIndexNextHunkRow(t *testing.T) {
	idx := NewHunkIndex(sampleHunks())
	cases := []struct{ cur, want int }{
		{0, 5}, {4, 5}, {5, 20}, {19, 20}, {20, 40}, {41, -1}, {100, -1},
	}
	for _, c := range cases {
		if got := idx.NextHunkRow(c.cur); got != c.want {
			t.Errorf("NextHunkRow(%d) = %d, want %d", c.cur, got, c.want)
		}
	}
}

func TestHunkIndexPrevHunkRow(t *testing.T) {
	idx := NewHunkIndex(sampleHunks())
	cases := []struct{ cur, want int }{
		{0, -1}, {5, -1}, {6, 5}, {20, 5}, {21, 20}, {100, 40},
	}
	for _, c := range cases {
		if got := idx.PrevHunkRow(c.cur); got != c.want {
			t.Errorf("PrevHunkRow(%d) = %d, want %d", c.cur, got, c.want)
		}
	}
}

func TestHunkIndexHunkAtRow(t *testing.T) {
	idx := NewHunkIndex(sampleHunks())
	cases := []struct{ row, want int }{
		{0, -1}, {4, -1}, {5, 0}, {7, 0}, {8, -1}, {20, 1}, {23, 1}, {24, -1}, {40, 2}, {41, 2}, {42, -1},
	}
	for _, c := range cases {
		if got := idx.HunkAtRow(c.row); got != c.want {
			t.Errorf("HunkAtRow(%d) = %d, want %d", c.row, got, c.want)
		}
	}
}

func TestHunkIndexEmpty(t *testing.T) {
	idx := NewHunkIndex(nil)
	if idx.NextHunkRow(0) != -1 {
		t.Fatalf("expected -1 on empty index")
	}
	if idx.PrevHunkRow(0) != -1 {
		t.Fatalf("expected -1 on empty index")
	}
	if idx.HunkAtRow(0) != -1 {
		t.Fatalf("expected -1 on empty index")
	}
}
