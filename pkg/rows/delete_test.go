package rows_test

import (
	"maps"
	"net/http"
	"net/http/httptest"
	"testing"

	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/rows"
)

func serveDelete(
	request *http.Request,
	handle func(rows.DeleteParams) (livelist.EmptyOperationResult, error),
) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc(
		"DELETE /{schema}/{table}",
		func(writer http.ResponseWriter, request *http.Request) {
			rows.DeleteOperationHandler{}.Handle(writer, request, handle)
		},
	)
	mux.ServeHTTP(recorder, request)
	return recorder
}

func TestDeleteHandleParams(t *testing.T) {
	var params rows.DeleteParams
	request := httptest.NewRequest(
		"DELETE", "/app/task?where[id]=a", nil,
	)

	recorder := serveDelete(
		request,
		func(received rows.DeleteParams) (livelist.EmptyOperationResult, error) {
			params = received
			return livelist.EmptyOperationResult{}, nil
		},
	)

	if params.Table != "task" {
		t.Errorf("expected table 'task', got '%s'", params.Table)
	}
	if !maps.Equal(params.Where, livelist.Where{"id": "a"}) {
		t.Errorf("expected where clause on id, got %v", params.Where)
	}
	if recorder.Code != 204 {
		t.Errorf("expected status 204, got %d", recorder.Code)
	}
}

func TestDeleteHandleError(t *testing.T) {
	request := httptest.NewRequest("DELETE", "/app/task", nil)

	recorder := serveDelete(
		request,
		func(rows.DeleteParams) (livelist.EmptyOperationResult, error) {
			return livelist.EmptyOperationResult{}, livelist.ErrForbiddenSchema
		},
	)

	if recorder.Code != 403 {
		t.Errorf("expected status 403, got %d", recorder.Code)
	}
}
