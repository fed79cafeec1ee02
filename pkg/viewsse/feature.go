package viewsse

import (
	"context"
	"fmt"
	"net/http"

	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/results"
)

type Views struct {
	// Root path where table views can be accessed.
	RootPath string
}

// Construct Views Feature and read configuration from environment
// variables.
func ViewsFromEnv() *Views {
	feature := &Views{}
	// No configuration at this time
	return feature
}

func (feature *Views) Provider() any {
	return func(
		begin *livelist.BeginOperation,
		watcher *results.Watcher,
	) (
		self *Views,
		view *ViewOperation,
	) {
		self = feature
		view = NewViewOperation(begin, OpenerFunc(func(
			ctx context.Context,
			schema string,
			table string,
			keyColumn string,
			where livelist.Where,
		) (livelist.Collection, error) {
			return watcher.Open(ctx, schema, table, keyColumn, where)
		}))
		return
	}
}

func (feature *Views) Invoker() any {
	return func(
		core *livelist.Core,
		mux *http.ServeMux,
		view *ViewOperation,
	) (err error) {
		core.Operations().Register(view)

		err = feature.RegisterRoutes(mux, view)
		if err != nil {
			return
		}

		return
	}
}

func (feature Views) RegisterRoutes(
	mux *http.ServeMux,
	view *ViewOperation,
) (err error) {
	rootPath := "/"
	if feature.RootPath != "" {
		rootPath = feature.RootPath
	}
	if rootPath == "/" {
		rootPath = ""
	}

	mux.HandleFunc(
		fmt.Sprintf("OPTIONS %s/{schema}/{table}/view", rootPath),
		handleViewOptions,
	)
	mux.Handle(
		fmt.Sprintf("GET %s/{schema}/{table}/view", rootPath),
		view,
	)

	return
}

func handleViewOptions(
	writer http.ResponseWriter,
	request *http.Request,
) {
	writer.Header().Set("Allow", "OPTIONS, GET")
	writer.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET")
	writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	writer.WriteHeader(204)
}
