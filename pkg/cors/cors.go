package cors

import (
	"net/http"
	"os"
)

type Cors struct {
	AllowedOrigins string
}

// Construct CORS middleware and read configuration from environment
// variables.
func CorsFromEnv() *Cors {
	feature := Cors{}
	feature.AllowedOrigins = os.Getenv("LIVELIST_ALLOWED_ORIGINS")
	return &feature
}

func (cors Cors) Middleware(next http.Handler) http.Handler {
	return corsHandler{cors: cors, next: next}
}
