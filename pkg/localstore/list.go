package localstore

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"gitlab.com/pala-software/livelist/pkg/livelist"
)

// List is a live, ordered collection over one named list of a store.
// Notifications run synchronously on the goroutine that mutated the
// store, with the list already updated. Listeners must not call back
// into the store.
type List struct {
	store *Store
	name  string

	mu        sync.Mutex
	rows      []livelist.Row
	listeners map[int]livelist.Listener
	nextID    int
	closed    bool
}

func (list *List) Name() string {
	return list.name
}

func (list *List) Len() int {
	list.mu.Lock()
	defer list.mu.Unlock()
	return len(list.rows)
}

func (list *List) Item(index int) (livelist.Row, bool) {
	list.mu.Lock()
	defer list.mu.Unlock()
	if index < 0 || index >= len(list.rows) {
		return livelist.Row{}, false
	}
	return list.rows[index], true
}

func (list *List) Valid() bool {
	list.mu.Lock()
	defer list.mu.Unlock()
	return !list.closed
}

func (list *List) Subscribe(listener livelist.Listener) livelist.Subscription {
	list.mu.Lock()
	if list.closed {
		list.mu.Unlock()
		return livelist.SubscriptionFunc(func() {})
	}
	id := list.nextID
	list.nextID++
	list.listeners[id] = listener
	list.mu.Unlock()

	listener(nil)

	return livelist.SubscriptionFunc(func() {
		list.mu.Lock()
		delete(list.listeners, id)
		list.mu.Unlock()
	})
}

// Close detaches the list from its store and invalidates it.
func (list *List) Close() error {
	list.store.unregister(list)
	list.invalidate()
	return nil
}

func (list *List) invalidate() {
	list.mu.Lock()
	list.closed = true
	list.listeners = map[int]livelist.Listener{}
	list.mu.Unlock()
}

func (list *List) put(key string, data json.RawMessage) func() {
	list.mu.Lock()
	defer list.mu.Unlock()
	if list.closed {
		return nil
	}

	index, found := list.search(key)
	if found {
		if bytes.Equal(list.rows[index].Data, data) {
			return nil
		}
		list.rows[index].Data = slices.Clone(data)
		return list.dispatch(livelist.NewChangeSet(nil, nil, []int{index}))
	}

	list.rows = slices.Insert(list.rows, index, livelist.Row{
		Key:  key,
		Data: slices.Clone(data),
	})
	return list.dispatch(livelist.NewChangeSet(nil, []int{index}, nil))
}

func (list *List) delete(key string) func() {
	list.mu.Lock()
	defer list.mu.Unlock()
	if list.closed {
		return nil
	}

	index, found := list.search(key)
	if !found {
		return nil
	}
	list.rows = slices.Delete(list.rows, index, index+1)
	return list.dispatch(livelist.NewChangeSet([]int{index}, nil, nil))
}

func (list *List) search(key string) (int, bool) {
	return slices.BinarySearchFunc(
		list.rows,
		key,
		func(row livelist.Row, key string) int {
			return strings.Compare(row.Key, key)
		},
	)
}

func (list *List) dispatch(changes *livelist.ChangeSet) func() {
	listeners := make([]livelist.Listener, 0, len(list.listeners))
	for _, listener := range list.listeners {
		listeners = append(listeners, listener)
	}
	return func() {
		for _, listener := range listeners {
			listener(changes)
		}
	}
}
