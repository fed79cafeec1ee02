package rows

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

type ListParams struct {
	Table  string
	Key    string
	Where  livelist.Where
	Limit  int
	Offset int
}

func (params ListParams) Details() map[string]string {
	details := map[string]string{
		"table":  params.Table,
		"key":    params.Key,
		"limit":  strconv.Itoa(params.Limit),
		"offset": strconv.Itoa(params.Offset),
	}
	params.Where.AddDetails(details)
	return details
}

type ListResult struct {
	Items []json.RawMessage
}

func (result ListResult) Details() map[string]string {
	return map[string]string{
		"count": strconv.Itoa(len(result.Items)),
	}
}

type ListOperationHandler struct{}

func (ListOperationHandler) Name() string {
	return "List"
}

func (ListOperationHandler) Execute(
	ctx livelist.OperationContext,
	params ListParams,
) (result ListResult, err error) {
	// Rows are ordered the same way live collections order them so that a
	// one-shot listing agrees with a watched one.
	rows, err := ctx.Tx.Query(
		ctx,
		fmt.Sprintf(
			`SELECT to_json(t) FROM %s AS t %s ORDER BY %s::text COLLATE "C" LIMIT %d OFFSET %d`,
			pgx.Identifier{ctx.Schema, params.Table}.Sanitize(),
			params.Where.String("t", 1),
			pgx.Identifier{"t", params.Key}.Sanitize(),
			params.Limit,
			params.Offset,
		),
		params.Where.Values()...,
	)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var item json.RawMessage
		err = rows.Scan(&item)
		if err != nil {
			return
		}
		result.Items = append(result.Items, item)
	}

	err = rows.Err()
	return
}

func (ListOperationHandler) Handle(
	writer http.ResponseWriter,
	request *http.Request,
	handle func(ListParams) (ListResult, error),
) {
	var err error

	query := request.URL.Query()
	params := ListParams{
		Table: request.PathValue("table"),
		Key:   query.Get("key"),
		Where: livelist.ParseWhere(query),
		Limit: 100,
	}
	if params.Key == "" {
		params.Key = "id"
	}
	if query.Has("limit") {
		params.Limit, err = strconv.Atoi(query.Get("limit"))
		if err != nil {
			writer.WriteHeader(400)
			return
		}
	}
	if query.Has("offset") {
		params.Offset, err = strconv.Atoi(query.Get("offset"))
		if err != nil {
			writer.WriteHeader(400)
			return
		}
	}

	result, err := handle(params)
	if err != nil {
		livelist.HandleStoreError(writer, err)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(200)
	writer.Write([]byte("["))
	for index, item := range result.Items {
		if index > 0 {
			writer.Write([]byte(","))
		}

		_, err = writer.Write(item)
		if err != nil {
			fmt.Println(err)
			return
		}
	}
	writer.Write([]byte("]"))
}

type ListOperation struct {
	*livelist.Operation[ListParams, ListResult]
}

func NewListOperation(begin *livelist.BeginOperation) *ListOperation {
	return &ListOperation{
		Operation: livelist.NewOperation[ListParams, ListResult](
			ListOperationHandler{},
			begin,
		),
	}
}
