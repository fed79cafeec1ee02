package rows

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

type DeleteParams struct {
	Table string
	Where livelist.Where
}

func (params DeleteParams) Details() map[string]string {
	details := map[string]string{
		"table": params.Table,
	}
	params.Where.AddDetails(details)
	return details
}

type DeleteOperationHandler struct{}

func (DeleteOperationHandler) Name() string {
	return "Delete"
}

func (DeleteOperationHandler) Execute(
	ctx livelist.OperationContext,
	params DeleteParams,
) (res livelist.EmptyOperationResult, err error) {
	_, err = ctx.Tx.Exec(
		ctx,
		fmt.Sprintf(
			"DELETE FROM %s AS t %s",
			pgx.Identifier{ctx.Schema, params.Table}.Sanitize(),
			params.Where.String("t", 1),
		),
		params.Where.Values()...,
	)
	return
}

func (DeleteOperationHandler) Handle(
	writer http.ResponseWriter,
	request *http.Request,
	handle func(DeleteParams) (livelist.EmptyOperationResult, error),
) {
	params := DeleteParams{
		Table: request.PathValue("table"),
		Where: livelist.ParseWhere(request.URL.Query()),
	}

	_, err := handle(params)
	if err != nil {
		livelist.HandleStoreError(writer, err)
		return
	}

	writer.WriteHeader(204)
}

type DeleteOperation struct {
	*livelist.Operation[DeleteParams, livelist.EmptyOperationResult]
}

func NewDeleteOperation(begin *livelist.BeginOperation) *DeleteOperation {
	return &DeleteOperation{
		Operation: livelist.NewOperation[DeleteParams, livelist.EmptyOperationResult](
			DeleteOperationHandler{},
			begin,
		),
	}
}
