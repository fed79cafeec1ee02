package livelist

import "slices"

// SliceCollection is an in-memory ordered collection. Mutations notify
// listeners synchronously on the calling goroutine, and Subscribe
// delivers the initial notification before it returns, so the whole
// collection is bound to a single goroutine.
type SliceCollection struct {
	rows      []Row
	listeners map[int]Listener
	nextID    int
	closed    bool
}

func NewSliceCollection(rows ...Row) *SliceCollection {
	return &SliceCollection{
		rows:      slices.Clone(rows),
		listeners: map[int]Listener{},
	}
}

func (list *SliceCollection) Len() int {
	return len(list.rows)
}

func (list *SliceCollection) Item(index int) (Row, bool) {
	if index < 0 || index >= len(list.rows) {
		return Row{}, false
	}
	return list.rows[index], true
}

func (list *SliceCollection) Valid() bool {
	return !list.closed
}

func (list *SliceCollection) Subscribe(listener Listener) Subscription {
	if list.closed {
		return SubscriptionFunc(func() {})
	}
	id := list.nextID
	list.nextID++
	list.listeners[id] = listener
	listener(nil)
	return SubscriptionFunc(func() {
		delete(list.listeners, id)
	})
}

// Close marks the collection invalid. Listeners are dropped without a
// final notification and later mutations are ignored.
func (list *SliceCollection) Close() {
	list.closed = true
	list.listeners = map[int]Listener{}
}

// InsertAt places row at index, which must be within [0, Len()].
func (list *SliceCollection) InsertAt(index int, row Row) {
	if list.closed {
		return
	}
	list.rows = slices.Insert(list.rows, index, row)
	list.notify(NewChangeSet(nil, []int{index}, nil))
}

func (list *SliceCollection) Append(row Row) {
	list.InsertAt(len(list.rows), row)
}

// RemoveAt drops the row at index, which must be within [0, Len()).
func (list *SliceCollection) RemoveAt(index int) {
	if list.closed {
		return
	}
	list.rows = slices.Delete(list.rows, index, index+1)
	list.notify(NewChangeSet([]int{index}, nil, nil))
}

// Set overwrites the row at index, which must be within [0, Len()).
func (list *SliceCollection) Set(index int, row Row) {
	if list.closed {
		return
	}
	list.rows[index] = row
	list.notify(NewChangeSet(nil, nil, []int{index}))
}

// Apply mutates the rows in bulk and reports the delta in one
// notification. The change set must describe exactly the transition from
// the previous rows to the given ones.
func (list *SliceCollection) Apply(rows []Row, changes *ChangeSet) {
	if list.closed {
		return
	}
	list.rows = slices.Clone(rows)
	list.notify(changes)
}

// Reset replaces all rows and announces the new state as an initial load.
func (list *SliceCollection) Reset(rows []Row) {
	if list.closed {
		return
	}
	list.rows = slices.Clone(rows)
	list.notify(nil)
}

func (list *SliceCollection) notify(changes *ChangeSet) {
	for _, listener := range list.listeners {
		listener(changes)
	}
}
