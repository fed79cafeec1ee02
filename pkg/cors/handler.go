package cors

import (
	"net/http"
)

type corsHandler struct {
	cors Cors
	next http.Handler
}

func (handler corsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if handler.cors.AllowedOrigins != "" {
		writer.Header().Set("Access-Control-Allow-Origin", handler.cors.AllowedOrigins)
	}
	handler.next.ServeHTTP(writer, request)
}
