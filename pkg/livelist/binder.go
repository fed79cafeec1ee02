package livelist

// Binder keeps a view consistent with a live, possibly replaced backing
// collection. A notification without a change set requests a full reload.
// A notification with a change set is applied as single-item calls:
// removals first, then insertions, then modifications, each set walked
// from the highest index down so that indexes still pending stay valid
// while earlier ones are consumed.
//
// A binder holds at most one subscription at a time and performs no
// locking of its own. All calls on it, including listener dispatch from
// the collection, must happen on a single goroutine.
type Binder struct {
	view       View
	data       Collection
	autoUpdate bool
	token      Subscription
}

// NewBinder pairs view with data. When autoUpdate is set, Attach and
// UpdateData register for change notifications; otherwise the view is
// only refreshed when the collection is replaced.
func NewBinder(view View, data Collection, autoUpdate bool) *Binder {
	return &Binder{
		view:       view,
		data:       data,
		autoUpdate: autoUpdate,
	}
}

// Attach subscribes the binder to its collection. It does nothing when
// auto-update is disabled, when the collection is absent or no longer
// valid, or when a subscription is already held.
func (binder *Binder) Attach() {
	if !binder.autoUpdate || binder.token != nil || !binder.valid() {
		return
	}
	binder.token = binder.data.Subscribe(binder.onChange)
}

// Detach releases the active subscription, if any.
func (binder *Binder) Detach() {
	if binder.token == nil {
		return
	}
	binder.token.Unsubscribe()
	binder.token = nil
}

// Len returns the size of the backing collection, or zero when the
// collection is absent or no longer valid.
func (binder *Binder) Len() int {
	if !binder.valid() {
		return 0
	}
	return binder.data.Len()
}

// Item returns the row at index. The second return value is false when
// the collection is absent, no longer valid or index is out of range.
func (binder *Binder) Item(index int) (Row, bool) {
	if !binder.valid() {
		return Row{}, false
	}
	return binder.data.Item(index)
}

// ItemID reports the identity of the row at index. Positions are the
// identity here; consumers that need stable identities should read
// Row.Key instead.
func (binder *Binder) ItemID(index int) int64 {
	return int64(index)
}

// Data returns the backing collection, which may be nil.
func (binder *Binder) Data() Collection {
	return binder.data
}

// UpdateData replaces the backing collection and asks the view to reload.
// With auto-update enabled the old subscription is released first and a
// new one is registered as long as data is non-nil, regardless of its
// validity.
func (binder *Binder) UpdateData(data Collection) {
	if binder.autoUpdate {
		binder.Detach()
	}
	binder.data = data
	if binder.autoUpdate && data != nil {
		binder.token = data.Subscribe(binder.onChange)
	}
	binder.view.Reload()
}

func (binder *Binder) valid() bool {
	return binder.data != nil && binder.data.Valid()
}

func (binder *Binder) onChange(changes *ChangeSet) {
	if changes == nil {
		binder.view.Reload()
		return
	}
	if changes.IsEmpty() {
		return
	}
	batch, batching := binder.view.(BatchView)
	if batching {
		batch.BeginBatch()
	}
	for index := len(changes.Removed) - 1; index >= 0; index-- {
		binder.view.RemoveItem(changes.Removed[index])
	}
	for index := len(changes.Inserted) - 1; index >= 0; index-- {
		binder.view.InsertItem(changes.Inserted[index])
	}
	for index := len(changes.Modified) - 1; index >= 0; index-- {
		binder.view.RefreshItem(changes.Modified[index])
	}
	if batching {
		batch.EndBatch()
	}
}
