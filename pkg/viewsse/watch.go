package viewsse

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

// CollectionOpener provides live collections over watched tables.
type CollectionOpener interface {
	OpenCollection(
		ctx context.Context,
		schema string,
		table string,
		keyColumn string,
		where livelist.Where,
	) (livelist.Collection, error)
}

// OpenerFunc adapts a function to the CollectionOpener interface.
type OpenerFunc func(
	ctx context.Context,
	schema string,
	table string,
	keyColumn string,
	where livelist.Where,
) (livelist.Collection, error)

func (open OpenerFunc) OpenCollection(
	ctx context.Context,
	schema string,
	table string,
	keyColumn string,
	where livelist.Where,
) (livelist.Collection, error) {
	return open(ctx, schema, table, keyColumn, where)
}

type ViewParams struct {
	Table string
	Key   string
	Where livelist.Where
}

func (params ViewParams) Details() map[string]string {
	details := map[string]string{
		"table": params.Table,
		"key":   params.Key,
	}
	params.Where.AddDetails(details)
	return details
}

type ViewOperationHandler struct {
	opener CollectionOpener
}

func (ViewOperationHandler) Name() string {
	return "View"
}

func (handler ViewOperationHandler) Execute(
	ctx livelist.OperationContext,
	params ViewParams,
) (view *StreamView, err error) {
	// Probe the table under the caller's role. The collection itself is
	// opened outside the transaction and survives its commit.
	_, err = ctx.Tx.Exec(
		ctx,
		fmt.Sprintf(
			"SELECT 1 FROM %s",
			pgx.Identifier{ctx.Schema, params.Table}.Sanitize(),
		),
	)
	if err != nil {
		return
	}

	collection, err := handler.opener.OpenCollection(
		ctx,
		ctx.Schema,
		params.Table,
		params.Key,
		params.Where,
	)
	if err != nil {
		return
	}

	view = NewStreamView()
	binder := livelist.NewBinder(view, collection, true)
	view.Bind(binder)
	binder.Attach()

	context.AfterFunc(ctx, func() {
		binder.Detach()
		if closer, ok := collection.(io.Closer); ok {
			closer.Close()
		}
	})

	return
}

func (ViewOperationHandler) Handle(
	writer http.ResponseWriter,
	request *http.Request,
	handle func(ViewParams) (*StreamView, error),
) {
	query := request.URL.Query()
	params := ViewParams{
		Table: request.PathValue("table"),
		Key:   query.Get("key"),
		Where: livelist.ParseWhere(query),
	}
	if params.Key == "" {
		params.Key = "id"
	}

	view, err := handle(params)
	if err != nil {
		livelist.HandleStoreError(writer, err)
		return
	}

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	responseController := http.NewResponseController(writer)

	for {
		select {
		case <-request.Context().Done():
			return

		case frame := <-view.Frames():
			// Prepend the payload with an event name and a "data: " prefix
			message := append([]byte("event: "+frame.Event+"\ndata: "), frame.Data...)

			// End the message with two newline characters
			message = append(message, 0x0A, 0x0A)

			_, err = writer.Write(message)
			if err != nil {
				fmt.Println(err)
				return
			}

			err = responseController.Flush()
			if err != nil {
				fmt.Println(err)
				return
			}
		}
	}
}

type ViewOperation struct {
	*livelist.Operation[ViewParams, *StreamView]
}

func NewViewOperation(
	begin *livelist.BeginOperation,
	opener CollectionOpener,
) *ViewOperation {
	return &ViewOperation{
		Operation: livelist.NewOperation[ViewParams, *StreamView](
			ViewOperationHandler{opener: opener},
			begin,
		),
	}
}
