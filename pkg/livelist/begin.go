package livelist

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrForbiddenSchema = errors.New("forbidden schema")

// BeginOperation opens the transaction-scoped context every other
// operation runs in. It is registered like any operation so hooks can
// decorate the context, but it is never routed over HTTP.
type BeginOperation struct {
	*Operation[EmptyOperationParams, OperationContext]
}

func NewBeginOperation(pool *pgxpool.Pool) *BeginOperation {
	return &BeginOperation{
		Operation: NewOperation[EmptyOperationParams, OperationContext](
			beginHandler{pool: pool},
			nil,
		),
	}
}

func (op *BeginOperation) Begin(
	ctx context.Context,
	request *http.Request,
	schema string,
) (OperationContext, error) {
	return op.Execute(
		OperationContext{
			Context:   ctx,
			Request:   request,
			Schema:    schema,
			Variables: map[string]Loggable{},
		},
		EmptyOperationParams{},
	)
}

func (op *BeginOperation) BeginHTTP(request *http.Request) (OperationContext, error) {
	return op.Begin(
		request.Context(),
		request,
		request.PathValue("schema"),
	)
}

type beginHandler struct {
	pool *pgxpool.Pool
}

func (beginHandler) Name() string {
	return "Begin"
}

func (handler beginHandler) Execute(
	initial OperationContext,
	_ EmptyOperationParams,
) (ctx OperationContext, err error) {
	ctx = initial
	if ctx.Schema == "" || ctx.Schema == "pg_temp" {
		err = ErrForbiddenSchema
		return
	}

	ctx.Tx, err = handler.pool.Begin(ctx)
	if err != nil {
		return
	}

	_, err = ctx.Tx.Exec(
		ctx,
		fmt.Sprintf(
			// pg_temp is set to last in search_path so that we don't accidentally or
			// in any case query temporary tables implicitly.
			"SET LOCAL search_path TO %s, pg_temp",
			pgx.Identifier{ctx.Schema}.Sanitize(),
		),
	)
	return
}

func (beginHandler) Handle(
	writer http.ResponseWriter,
	_ *http.Request,
	_ func(EmptyOperationParams) (OperationContext, error),
) {
	writer.WriteHeader(405)
}
