package livelist

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type HttpError interface {
	error
	Message() string
	Status() int
}

// HandleStoreError writes the HTTP status matching err. Database errors
// ending up here have already passed the schema and role checks, so
// anything unrecognized is reported as a server fault.
func HandleStoreError(writer http.ResponseWriter, err error) {
	switch err {
	case pgx.ErrNoRows:
		writer.WriteHeader(404)
		return
	case ErrForbiddenSchema:
		writer.WriteHeader(403)
		return
	}

	if err, ok := err.(*pgconn.PgError); ok {
		switch {
		case err.Code == "42501":
			writer.WriteHeader(403)
			writer.Write([]byte(err.Message))
			return
		case err.Code == "42P01":
			writer.WriteHeader(404)
			writer.Write([]byte(err.Message))
			return
		case err.Code[0:2] == "22" ||
			err.Code[0:2] == "23" ||
			err.Code[0:2] == "3F" ||
			err.Code[0:2] == "42" ||
			err.Code[0:2] == "44" ||
			err.Code[0:2] == "54":
			writer.WriteHeader(400)
			writer.Write([]byte(err.Message))
			return
		case err.Code[0:2] == "53":
			// Insufficient resources on the server side, not a client fault.
			fmt.Println(err)
			writer.WriteHeader(503)
			return
		case err.Code[0:2] == "55":
			writer.WriteHeader(409)
			writer.Write([]byte(err.Message))
			return
		case err.Code == "P0001":
			writer.WriteHeader(400)
			writer.Write([]byte(err.Message))
			return
		}
	}

	if err, ok := err.(HttpError); ok {
		writer.WriteHeader(err.Status())
		writer.Write([]byte(err.Message()))
		return
	}

	fmt.Println(err)
	writer.WriteHeader(500)
}
