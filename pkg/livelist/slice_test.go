package livelist_test

import (
	"slices"
	"testing"

	"gitlab.com/pala-software/livelist/pkg/livelist"
)

type recordedChange struct {
	initial bool
	changes livelist.ChangeSet
}

func recordChanges(target *[]recordedChange) livelist.Listener {
	return func(changes *livelist.ChangeSet) {
		if changes == nil {
			*target = append(*target, recordedChange{initial: true})
			return
		}
		*target = append(*target, recordedChange{changes: *changes})
	}
}

func TestSliceCollectionSubscribe(t *testing.T) {
	list := livelist.NewSliceCollection(rows("a", "b")...)

	var received []recordedChange
	list.Subscribe(recordChanges(&received))

	if len(received) != 1 || !received[0].initial {
		t.Fatalf("expected one initial notification, got %v", received)
	}
	if !list.Valid() {
		t.Error("expected collection to be valid")
	}
	if actual := list.Len(); actual != 2 {
		t.Errorf("expected length 2, got %d", actual)
	}
}

func TestSliceCollectionMutations(t *testing.T) {
	list := livelist.NewSliceCollection(rows("b", "d")...)

	var received []recordedChange
	list.Subscribe(recordChanges(&received))
	received = nil

	list.InsertAt(0, row("a"))
	list.Append(row("e"))
	list.Set(1, row("c"))
	list.RemoveAt(2)

	expected := []recordedChange{
		{changes: *livelist.NewChangeSet(nil, []int{0}, nil)},
		{changes: *livelist.NewChangeSet(nil, []int{2}, nil)},
		{changes: *livelist.NewChangeSet(nil, nil, []int{1})},
		{changes: *livelist.NewChangeSet([]int{2}, nil, nil)},
	}
	if len(received) != len(expected) {
		t.Fatalf("expected %d notifications, got %d", len(expected), len(received))
	}
	for index, change := range expected {
		actual := received[index]
		if actual.initial ||
			!slices.Equal(actual.changes.Removed, change.changes.Removed) ||
			!slices.Equal(actual.changes.Inserted, change.changes.Inserted) ||
			!slices.Equal(actual.changes.Modified, change.changes.Modified) {
			t.Errorf("expected notification %d to be %v, got %v", index, change, actual)
		}
	}

	item, ok := list.Item(1)
	if !ok || item.Key != "c" {
		t.Errorf("expected item 'c' at index 1, got %v", item)
	}
	if _, ok := list.Item(3); ok {
		t.Error("expected no item at index 3")
	}
}

func TestSliceCollectionReset(t *testing.T) {
	list := livelist.NewSliceCollection(rows("a")...)

	var received []recordedChange
	list.Subscribe(recordChanges(&received))
	received = nil

	list.Reset(rows("x", "y"))

	if len(received) != 1 || !received[0].initial {
		t.Fatalf("expected one initial notification, got %v", received)
	}
	if actual := list.Len(); actual != 2 {
		t.Errorf("expected length 2, got %d", actual)
	}
}

func TestSliceCollectionUnsubscribe(t *testing.T) {
	list := livelist.NewSliceCollection(rows("a")...)

	var received []recordedChange
	token := list.Subscribe(recordChanges(&received))
	received = nil

	token.Unsubscribe()
	token.Unsubscribe()

	list.Append(row("b"))
	if len(received) != 0 {
		t.Errorf("expected no notifications, got %v", received)
	}
}

func TestSliceCollectionClose(t *testing.T) {
	list := livelist.NewSliceCollection(rows("a")...)

	var received []recordedChange
	list.Subscribe(recordChanges(&received))
	received = nil

	list.Close()

	if list.Valid() {
		t.Error("expected collection to be invalid")
	}

	list.Append(row("b"))
	if len(received) != 0 {
		t.Errorf("expected no notifications, got %v", received)
	}
	if actual := list.Len(); actual != 1 {
		t.Errorf("expected length 1, got %d", actual)
	}

	token := list.Subscribe(recordChanges(&received))
	token.Unsubscribe()
	if len(received) != 0 {
		t.Errorf("expected no notifications after close, got %v", received)
	}
}
