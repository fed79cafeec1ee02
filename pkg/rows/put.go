package rows

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

type requestError struct {
	message string
}

func (err requestError) Error() string {
	return err.message
}

func (err requestError) Message() string {
	return err.message
}

func (err requestError) Status() int {
	return 400
}

// Returned when the request body does not carry a value for the key
// column, so the row could not be addressed on a later put.
var ErrMissingKey = &requestError{message: "data does not contain the key column"}

type PutParams struct {
	Table string
	Key   string
	Data  map[string]any
}

func (params PutParams) Details() map[string]string {
	return map[string]string{
		"table":   params.Table,
		"key":     params.Key,
		"columns": strings.Join(params.Columns(), ", "),
	}
}

// Columns returns column names of the data in deterministic order.
func (params PutParams) Columns() []string {
	columns := make([]string, 0, len(params.Data))
	for column := range params.Data {
		columns = append(columns, column)
	}
	slices.Sort(columns)
	return columns
}

type PutOperationHandler struct{}

func (PutOperationHandler) Name() string {
	return "Put"
}

func (PutOperationHandler) Execute(
	ctx livelist.OperationContext,
	params PutParams,
) (res livelist.EmptyOperationResult, err error) {
	if _, ok := params.Data[params.Key]; !ok {
		err = ErrMissingKey
		return
	}

	columns := params.Columns()
	names := make([]string, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	assignments := make([]string, 0, len(columns))
	values := make([]any, 0, len(columns))
	for n, column := range columns {
		name := pgx.Identifier{column}.Sanitize()
		names = append(names, name)
		placeholders = append(placeholders, "$"+strconv.Itoa(n+1))
		assignments = append(assignments, name+" = EXCLUDED."+name)
		values = append(values, params.Data[column])
	}

	_, err = ctx.Tx.Exec(
		ctx,
		fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			pgx.Identifier{ctx.Schema, params.Table}.Sanitize(),
			strings.Join(names, ", "),
			strings.Join(placeholders, ", "),
			pgx.Identifier{params.Key}.Sanitize(),
			strings.Join(assignments, ", "),
		),
		values...,
	)
	return
}

func (PutOperationHandler) Handle(
	writer http.ResponseWriter,
	request *http.Request,
	handle func(PutParams) (livelist.EmptyOperationResult, error),
) {
	var err error

	query := request.URL.Query()
	params := PutParams{
		Table: request.PathValue("table"),
		Key:   query.Get("key"),
	}
	if params.Key == "" {
		params.Key = "id"
	}

	if request.Body == nil {
		writer.WriteHeader(400)
		return
	}

	msg, err := io.ReadAll(request.Body)
	if err != nil {
		fmt.Println(err)
		writer.WriteHeader(500)
		return
	}

	err = json.Unmarshal(msg, &params.Data)
	if err != nil {
		fmt.Println(err)
		writer.WriteHeader(400)
		return
	}

	_, err = handle(params)
	if err != nil {
		livelist.HandleStoreError(writer, err)
		return
	}

	writer.WriteHeader(204)
}

type PutOperation struct {
	*livelist.Operation[PutParams, livelist.EmptyOperationResult]
}

func NewPutOperation(begin *livelist.BeginOperation) *PutOperation {
	return &PutOperation{
		Operation: livelist.NewOperation[PutParams, livelist.EmptyOperationResult](
			PutOperationHandler{},
			begin,
		),
	}
}
