package viewsse

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

const frameBuffer = 32

// Frame is one server-sent event waiting to be written out.
type Frame struct {
	Event string
	Data  []byte
}

type itemPayload struct {
	Index int             `json:"index"`
	Key   string          `json:"key"`
	Data  json.RawMessage `json:"data"`
}

type resetPayload struct {
	Subscription string         `json:"subscription"`
	Rows         []livelist.Row `json:"rows"`
}

type changePayload struct {
	Subscription string        `json:"subscription"`
	Removed      []int         `json:"removed,omitempty"`
	Inserted     []itemPayload `json:"inserted,omitempty"`
	Refreshed    []itemPayload `json:"refreshed,omitempty"`
}

// StreamView renders binder refresh calls as server-sent event frames.
// One change set becomes one change frame and a reload becomes a reset
// frame carrying the full row set. Removed indexes keep dispatch order,
// highest first. Inserted and refreshed entries are sorted ascending, so
// a consumer can replay a frame against its copy of the rows: removals
// as given, then insertions, then refreshes.
//
// The view must only be driven on the collection's dispatch goroutine.
// When the consumer falls behind and the frame buffer fills up, deltas
// are dropped and the next delivered frame is a fresh reset.
type StreamView struct {
	id     string
	binder *livelist.Binder
	frames chan Frame

	batching     bool
	change       changePayload
	resetPending bool
}

func NewStreamView() *StreamView {
	return &StreamView{
		id:     uuid.NewString(),
		frames: make(chan Frame, frameBuffer),
	}
}

// Bind sets the binder the view reads rows through. It must be called
// before the binder attaches to its collection.
func (view *StreamView) Bind(binder *livelist.Binder) {
	view.binder = binder
}

func (view *StreamView) Frames() <-chan Frame {
	return view.frames
}

func (view *StreamView) Details() map[string]string {
	return map[string]string{
		"subscription": view.id,
	}
}

func (view *StreamView) Reload() {
	view.emitReset()
}

func (view *StreamView) BeginBatch() {
	view.batching = true
	view.change = changePayload{Subscription: view.id}
}

func (view *StreamView) EndBatch() {
	view.batching = false
	change := view.change
	view.change = changePayload{}

	slices.SortFunc(change.Inserted, compareItems)
	slices.SortFunc(change.Refreshed, compareItems)
	view.emit("change", change)
}

func (view *StreamView) RemoveItem(index int) {
	view.batched(func() {
		view.change.Removed = append(view.change.Removed, index)
	})
}

func (view *StreamView) InsertItem(index int) {
	view.batched(func() {
		view.change.Inserted = append(view.change.Inserted, view.item(index))
	})
}

func (view *StreamView) RefreshItem(index int) {
	view.batched(func() {
		view.change.Refreshed = append(view.change.Refreshed, view.item(index))
	})
}

// batched wraps a single-item call in its own batch when the binder did
// not open one.
func (view *StreamView) batched(add func()) {
	if view.batching {
		add()
		return
	}
	view.BeginBatch()
	add()
	view.EndBatch()
}

func (view *StreamView) item(index int) itemPayload {
	payload := itemPayload{Index: index}
	if view.binder == nil {
		return payload
	}
	row, ok := view.binder.Item(index)
	if !ok {
		return payload
	}
	payload.Key = row.Key
	payload.Data = row.Data
	return payload
}

func (view *StreamView) emitReset() {
	rows := []livelist.Row{}
	if view.binder != nil {
		for index := 0; index < view.binder.Len(); index++ {
			row, ok := view.binder.Item(index)
			if !ok {
				break
			}
			rows = append(rows, row)
		}
	}
	view.emit("reset", resetPayload{
		Subscription: view.id,
		Rows:         rows,
	})
}

func (view *StreamView) emit(event string, payload any) {
	if view.resetPending && event != "reset" {
		// The consumer already missed deltas; send a snapshot instead.
		view.emitReset()
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Println(err)
		return
	}

	select {
	case view.frames <- Frame{Event: event, Data: data}:
		view.resetPending = false
	default:
		view.resetPending = true
	}
}

func compareItems(a, b itemPayload) int {
	return cmp.Compare(a.Index, b.Index)
}
