package rows_test

import (
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/rows"
)

func serveList(
	request *http.Request,
	handle func(rows.ListParams) (rows.ListResult, error),
) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc(
		"GET /{schema}/{table}",
		func(writer http.ResponseWriter, request *http.Request) {
			rows.ListOperationHandler{}.Handle(writer, request, handle)
		},
	)
	mux.ServeHTTP(recorder, request)
	return recorder
}

func TestListHandleDefaults(t *testing.T) {
	var params rows.ListParams
	request := httptest.NewRequest("GET", "/app/task", nil)

	recorder := serveList(
		request,
		func(received rows.ListParams) (rows.ListResult, error) {
			params = received
			return rows.ListResult{}, nil
		},
	)

	if params.Table != "task" {
		t.Errorf("expected table 'task', got '%s'", params.Table)
	}
	if params.Key != "id" {
		t.Errorf("expected default key 'id', got '%s'", params.Key)
	}
	if params.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", params.Limit)
	}
	if params.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", params.Offset)
	}
	if recorder.Code != 200 {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
	if body := recorder.Body.String(); body != "[]" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestListHandleParams(t *testing.T) {
	var params rows.ListParams
	request := httptest.NewRequest(
		"GET", "/app/task?key=uid&limit=5&offset=10&where[list]=inbox", nil,
	)

	serveList(
		request,
		func(received rows.ListParams) (rows.ListResult, error) {
			params = received
			return rows.ListResult{}, nil
		},
	)

	if params.Key != "uid" {
		t.Errorf("expected key 'uid', got '%s'", params.Key)
	}
	if params.Limit != 5 {
		t.Errorf("expected limit 5, got %d", params.Limit)
	}
	if params.Offset != 10 {
		t.Errorf("expected offset 10, got %d", params.Offset)
	}
	if !maps.Equal(params.Where, livelist.Where{"list": "inbox"}) {
		t.Errorf("expected where clause on list, got %v", params.Where)
	}
}

func TestListHandleBadLimit(t *testing.T) {
	called := false
	request := httptest.NewRequest("GET", "/app/task?limit=many", nil)

	recorder := serveList(
		request,
		func(rows.ListParams) (rows.ListResult, error) {
			called = true
			return rows.ListResult{}, nil
		},
	)

	if called {
		t.Error("expected operation not to run")
	}
	if recorder.Code != 400 {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}

func TestListHandleEncoding(t *testing.T) {
	request := httptest.NewRequest("GET", "/app/task", nil)

	recorder := serveList(
		request,
		func(rows.ListParams) (rows.ListResult, error) {
			return rows.ListResult{
				Items: []json.RawMessage{
					json.RawMessage(`{"id":"a"}`),
					json.RawMessage(`{"id":"b"}`),
				},
			}, nil
		},
	)

	contentType := recorder.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected json content type, got '%s'", contentType)
	}

	body, err := io.ReadAll(recorder.Body)
	if err != nil {
		t.Fatal(err)
	}
	expected := `[{"id":"a"},{"id":"b"}]`
	if string(body) != expected {
		t.Errorf("expected %s, got %s", expected, body)
	}
}

func TestListHandleError(t *testing.T) {
	request := httptest.NewRequest("GET", "/app/task", nil)

	recorder := serveList(
		request,
		func(rows.ListParams) (rows.ListResult, error) {
			return rows.ListResult{}, pgx.ErrNoRows
		},
	)

	if recorder.Code != 404 {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}
