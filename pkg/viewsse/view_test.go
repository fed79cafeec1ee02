package viewsse_test

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/viewsse"
)

type frameItem struct {
	Index int             `json:"index"`
	Key   string          `json:"key"`
	Data  json.RawMessage `json:"data"`
}

type resetBody struct {
	Subscription string `json:"subscription"`
	Rows         []struct {
		Key  string          `json:"key"`
		Data json.RawMessage `json:"data"`
	} `json:"rows"`
}

type changeBody struct {
	Subscription string      `json:"subscription"`
	Removed      []int       `json:"removed"`
	Inserted     []frameItem `json:"inserted"`
	Refreshed    []frameItem `json:"refreshed"`
}

func row(key string, value int) livelist.Row {
	return livelist.Row{
		Key:  key,
		Data: json.RawMessage(fmt.Sprintf(`{"value":%d}`, value)),
	}
}

func takeFrame(t *testing.T, view *viewsse.StreamView) viewsse.Frame {
	t.Helper()
	select {
	case frame := <-view.Frames():
		return frame
	default:
		t.Fatal("expected a frame")
		return viewsse.Frame{}
	}
}

func expectNoFrame(t *testing.T, view *viewsse.StreamView) {
	t.Helper()
	select {
	case frame := <-view.Frames():
		t.Errorf("expected no frame, got %s %s", frame.Event, frame.Data)
	default:
	}
}

func decodeFrame(t *testing.T, frame viewsse.Frame, body any) {
	t.Helper()
	err := json.Unmarshal(frame.Data, body)
	if err != nil {
		t.Fatal(err)
	}
}

func attached(rows ...livelist.Row) (*viewsse.StreamView, *livelist.SliceCollection) {
	view := viewsse.NewStreamView()
	list := livelist.NewSliceCollection(rows...)
	binder := livelist.NewBinder(view, list, true)
	view.Bind(binder)
	binder.Attach()
	return view, list
}

func TestStreamViewReset(t *testing.T) {
	view, _ := attached(row("a", 1), row("b", 2))

	frame := takeFrame(t, view)
	if frame.Event != "reset" {
		t.Fatalf("expected reset frame, got %s", frame.Event)
	}

	var body resetBody
	decodeFrame(t, frame, &body)
	if body.Subscription != view.Details()["subscription"] {
		t.Errorf("expected subscription id in frame, got '%s'", body.Subscription)
	}
	if len(body.Rows) != 2 || body.Rows[0].Key != "a" || body.Rows[1].Key != "b" {
		t.Errorf("expected rows a and b, got %v", body.Rows)
	}
	expectNoFrame(t, view)
}

func TestStreamViewChangeFrame(t *testing.T) {
	view, list := attached(
		row("a", 1),
		row("b", 2),
		row("c", 3),
		row("d", 4),
		row("e", 5),
	)
	takeFrame(t, view)

	list.Apply(
		[]livelist.Row{
			row("x", 10),
			row("b", 2),
			row("y", 20),
			row("d", 40),
			row("e", 50),
		},
		livelist.NewChangeSet([]int{0, 2}, []int{0, 2}, []int{3, 4}),
	)

	frame := takeFrame(t, view)
	if frame.Event != "change" {
		t.Fatalf("expected change frame, got %s", frame.Event)
	}

	var body changeBody
	decodeFrame(t, frame, &body)
	if !slices.Equal(body.Removed, []int{2, 0}) {
		t.Errorf("expected removed [2 0], got %v", body.Removed)
	}
	if len(body.Inserted) != 2 ||
		body.Inserted[0].Index != 0 || body.Inserted[0].Key != "x" ||
		body.Inserted[1].Index != 2 || body.Inserted[1].Key != "y" {
		t.Errorf("expected insertions of x at 0 and y at 2, got %v", body.Inserted)
	}
	if len(body.Refreshed) != 2 ||
		body.Refreshed[0].Index != 3 || body.Refreshed[1].Index != 4 {
		t.Errorf("expected refreshes at 3 and 4, got %v", body.Refreshed)
	}
	if string(body.Inserted[0].Data) != `{"value":10}` {
		t.Errorf("expected inserted row data, got %s", body.Inserted[0].Data)
	}
	expectNoFrame(t, view)
}

func TestStreamViewUnbatchedCall(t *testing.T) {
	view := viewsse.NewStreamView()

	view.RemoveItem(3)

	frame := takeFrame(t, view)
	if frame.Event != "change" {
		t.Fatalf("expected change frame, got %s", frame.Event)
	}
	var body changeBody
	decodeFrame(t, frame, &body)
	if !slices.Equal(body.Removed, []int{3}) {
		t.Errorf("expected removed [3], got %v", body.Removed)
	}
}

func TestStreamViewOverflow(t *testing.T) {
	view, list := attached(row("a", 0))

	// Fill the frame buffer without a consumer.
	for value := 1; value <= 40; value++ {
		list.Set(0, row("a", value))
	}

	delivered := 0
	for {
		select {
		case <-view.Frames():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered == 41 {
		t.Fatal("expected frames to be dropped")
	}

	list.Set(0, row("a", 99))
	frame := takeFrame(t, view)
	if frame.Event != "reset" {
		t.Fatalf("expected reset frame after overflow, got %s", frame.Event)
	}

	var body resetBody
	decodeFrame(t, frame, &body)
	if len(body.Rows) != 1 || string(body.Rows[0].Data) != `{"value":99}` {
		t.Errorf("expected current row state, got %v", body.Rows)
	}
}
