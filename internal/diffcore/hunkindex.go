package diffcore

import "sort"

// HunkIndex supports O(log N) navigation between a DiffResult's hunks.
// Hunks must be sorted by StartRow and non-overlapping, which is guaranteed
// by Engine.Compute.
type HunkIndex struct {
	hunks []Hunk
}

// NewHunkIndex wraps a hunk slice for navigation. The slice is not copied;
// callers must not mutate it afterward.
func NewHunkIndex(hunks []Hunk) *HunkIndex {
	return &HunkIndex{hunks: hunks}
}

// NextHunkRow returns the start row of the first hunk whose StartRow is
// strictly greater than currentRow, or -1 if there is none.
func (idx *HunkIndex) NextHunkRow(currentRow int) int {
	i := sort.Search(len(idx.hunks), func(i int) bool {
		return idx.hunks[i].StartRow > currentRow
	})
	if i >= len(idx.hunks) {
		return -1
	}
	return idx.hunks[i].StartRow
}

// PrevHunkRow returns the start row of the last hunk whose StartRow is
// strictly less than currentRow, or -1 if there is none.
func (idx *HunkIndex) PrevHunkRow(currentRow int) int {
	i := sort.Search(len(idx.hunks), func(i int) bool {
		return idx.hunks[i].StartRow >= currentRow
	})
	if i == 0 {
		return -1
	}
	return idx.hunks[i-1].StartRow
}

// HunkAtRow returns the index of the unique hunk covering row, or -1 if no
// hunk covers it.
func (idx *HunkIndex) HunkAtRow(row int) int {
	i := sort.Search(len(idx.hunks), func(i int) bool {
		return idx.hunks[i].StartRow > row
	})
	if i == 0 {
		return -1
	}
	h := idx.hunks[i-1]
	if row >= h.StartRow && row < h.EndRow() {
		return i - 1
	}
	return -1
}

// Len returns the number of hunks.
func (idx *HunkIndex) Len() int { return len(idx.hunks) }

// At returns the hunk at position i.
func (idx *HunkIndex) At(i int) Hunk { return idx.hunks[i] }
