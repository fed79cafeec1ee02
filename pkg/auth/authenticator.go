package auth

import (
	"fmt"
	"net/http"
)

// TODO: Make default roles configurable
const AnonymousRole = "anonymous"
const AuthenticatedRole = "authenticated"

type AuthenticationResult struct {
	// May be empty if user is not recognized (anonymous).
	Variables map[string]any

	// Always set to some role name. It's anonymous if user is not authenticated.
	Role string
}

// Details for logging
func (result AuthenticationResult) Details() map[string]string {
	details := make(map[string]string, len(result.Variables)+1)
	details["role"] = result.Role
	for key, val := range result.Variables {
		details[key] = fmt.Sprint(val)
	}
	return details
}

type Authenticator interface {
	Authenticate(*http.Request) (*AuthenticationResult, error)
}

// Anonymous treats every request as unauthenticated.
type Anonymous struct{}

func (Anonymous) Authenticate(*http.Request) (*AuthenticationResult, error) {
	return &AuthenticationResult{Role: AnonymousRole}, nil
}
