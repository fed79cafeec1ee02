package livelist

import "encoding/json"

// Row is a single element of a collection: a stable key and the row
// contents encoded as JSON.
type Row struct {
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// Listener receives change notifications from a collection. A nil change
// set announces the initial state.
type Listener func(changes *ChangeSet)

// Subscription represents an active listener registration. Unsubscribe
// releases it and may be called any number of times.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to the Subscription interface.
type SubscriptionFunc func()

func (unsubscribe SubscriptionFunc) Unsubscribe() {
	unsubscribe()
}

// Collection is a live, ordered set of rows.
//
// Implementations deliver notifications to each listener sequentially and
// only after their own state already reflects the change, so a listener
// may read the collection while handling one. Right after registration
// every listener receives a single notification with a nil change set
// announcing the state observable at that point; whether that delivery
// happens before Subscribe returns is up to the implementation.
//
// Valid reports whether the source behind the collection is still open.
// An invalid collection never notifies again.
type Collection interface {
	Len() int
	Item(index int) (Row, bool)
	Valid() bool
	Subscribe(listener Listener) Subscription
}
