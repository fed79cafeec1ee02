package results

import (
	"bytes"

	"gitlab.com/pala-software/livelist/pkg/livelist"
)

// diffRows compares two snapshots ordered by key and expresses the
// transition as a change set. Removed indexes address the old snapshot,
// inserted and modified indexes the new one.
func diffRows(before, after []livelist.Row) *livelist.ChangeSet {
	var removed, inserted, modified []int

	oldIndex, newIndex := 0, 0
	for oldIndex < len(before) && newIndex < len(after) {
		oldRow, newRow := before[oldIndex], after[newIndex]
		switch {
		case oldRow.Key == newRow.Key:
			if !bytes.Equal(oldRow.Data, newRow.Data) {
				modified = append(modified, newIndex)
			}
			oldIndex++
			newIndex++
		case oldRow.Key < newRow.Key:
			removed = append(removed, oldIndex)
			oldIndex++
		default:
			inserted = append(inserted, newIndex)
			newIndex++
		}
	}
	for ; oldIndex < len(before); oldIndex++ {
		removed = append(removed, oldIndex)
	}
	for ; newIndex < len(after); newIndex++ {
		inserted = append(inserted, newIndex)
	}

	return livelist.NewChangeSet(removed, inserted, modified)
}
