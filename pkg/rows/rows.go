package rows

import (
	"fmt"
	"net/http"

	"gitlab.com/pala-software/livelist/pkg/livelist"
)

type Rows struct {
	// Root path where row resources can be accessed.
	RootPath string
}

// Construct row access Feature and read configuration from environment
// variables.
func RowsFromEnv() *Rows {
	feature := Rows{}
	// No configuration at this time
	return &feature
}

func (feature *Rows) Provider() any {
	return func(
		begin *livelist.BeginOperation,
	) (
		self *Rows,
		list *ListOperation,
		put *PutOperation,
		delete *DeleteOperation,
	) {
		self = feature
		list = NewListOperation(begin)
		put = NewPutOperation(begin)
		delete = NewDeleteOperation(begin)
		return
	}
}

func (feature *Rows) Invoker() any {
	return func(
		core *livelist.Core,
		mux *http.ServeMux,
		list *ListOperation,
		put *PutOperation,
		delete *DeleteOperation,
	) (err error) {
		core.Operations().Register(list)
		core.Operations().Register(put)
		core.Operations().Register(delete)

		err = feature.RegisterRoutes(
			mux,
			list,
			put,
			delete,
		)
		if err != nil {
			return
		}

		return
	}
}

func (feature Rows) RegisterRoutes(
	mux *http.ServeMux,
	list *ListOperation,
	put *PutOperation,
	delete *DeleteOperation,
) (err error) {
	rootPath := "/"
	if feature.RootPath != "" {
		rootPath = feature.RootPath
	}
	if rootPath == "/" {
		rootPath = ""
	}

	mux.HandleFunc(
		fmt.Sprintf("OPTIONS %s/{schema}/{table}", rootPath),
		handleTableOptions,
	)
	mux.Handle(
		fmt.Sprintf("GET %s/{schema}/{table}", rootPath),
		list,
	)
	mux.Handle(
		fmt.Sprintf("POST %s/{schema}/{table}", rootPath),
		put,
	)
	mux.Handle(
		fmt.Sprintf("DELETE %s/{schema}/{table}", rootPath),
		delete,
	)

	return
}

func handleTableOptions(
	writer http.ResponseWriter,
	request *http.Request,
) {
	writer.Header().Set("Allow", "OPTIONS, GET, POST, DELETE")
	writer.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, DELETE")
	writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	writer.WriteHeader(204)
}
