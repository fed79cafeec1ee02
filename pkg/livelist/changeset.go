package livelist

import "slices"

// ChangeSet describes the delta between two observed states of an ordered
// collection. Removed holds positions in the state before the change,
// while Inserted and Modified hold positions in the state after it. Every
// slice is sorted ascending and free of duplicates.
//
// A nil *ChangeSet delivered to a Listener means the collection announced
// its initial state and consumers should load it in full.
type ChangeSet struct {
	Removed  []int
	Inserted []int
	Modified []int
}

// NewChangeSet builds a normalized change set: each index set is sorted
// ascending with duplicates dropped.
func NewChangeSet(removed, inserted, modified []int) *ChangeSet {
	return &ChangeSet{
		Removed:  normalizeIndexes(removed),
		Inserted: normalizeIndexes(inserted),
		Modified: normalizeIndexes(modified),
	}
}

func (changes ChangeSet) IsEmpty() bool {
	return len(changes.Removed) == 0 &&
		len(changes.Inserted) == 0 &&
		len(changes.Modified) == 0
}

func normalizeIndexes(indexes []int) []int {
	if len(indexes) == 0 {
		return nil
	}
	out := slices.Clone(indexes)
	slices.Sort(out)
	return slices.Compact(out)
}
