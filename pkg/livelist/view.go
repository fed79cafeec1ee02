package livelist

// View is the consumer side of a binder: a full reload plus single-item
// refresh calls. Indexes passed to InsertItem and RefreshItem address the
// collection state after the change, the one passed to RemoveItem the
// state before it.
//
// TODO: Batch contiguous indexes into range calls once views grow a
// ranged interface.
type View interface {
	Reload()
	InsertItem(index int)
	RemoveItem(index int)
	RefreshItem(index int)
}

// BatchView marks views that want the application of one change set
// framed as a unit, for example to flush it as a single message. Binder
// brackets delta application with BeginBatch and EndBatch when the view
// implements it.
type BatchView interface {
	View
	BeginBatch()
	EndBatch()
}
