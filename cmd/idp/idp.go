package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

// Development identity provider for trying out token authentication.
// Tokens are created interactively and introspected the same way the
// oauth feature introspects real ones.

type introspection struct {
	Active  bool   `json:"active"`
	Role    string `json:"role,omitempty"`
	Subject string `json:"sub,omitempty"`
}

type identityProvider struct {
	data map[string]introspection
}

func main() {
	idp := newIdentityProvider()
	idp.Run()
}

func newIdentityProvider() *identityProvider {
	return &identityProvider{
		data: map[string]introspection{},
	}
}

func (idp identityProvider) Run() {
	go idp.Prompt()
	idp.ListenAndServe()
}

func (idp *identityProvider) Prompt() {
	nextId := 1
	for {
		data := introspection{
			Active: true,
		}

		fmt.Print("Enter wanted role name: ")
		fmt.Scanln(&data.Role)
		if data.Role == "" {
			fmt.Print("Role name must not be empty!\n\n")
			continue
		}

		fmt.Print("Enter wanted user ID: ")
		fmt.Scanln(&data.Subject)
		if data.Subject == "" {
			fmt.Print("User ID must not be empty!\n\n")
			continue
		}

		tokenId := fmt.Sprintf("TOKEN-%d", nextId)
		idp.data[tokenId] = data
		nextId++
		fmt.Printf("Created token:\n%s\n\n", tokenId)
	}
}

func (idp identityProvider) ListenAndServe() {
	addr := os.Getenv("LIVELIST_IDP_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	http.HandleFunc("POST /introspect", idp.handleIntrospection)
	err := http.ListenAndServe(addr, nil)
	log.Fatalln(err)
}

func (idp identityProvider) handleIntrospection(
	writer http.ResponseWriter,
	request *http.Request,
) {
	tokenId := request.PostFormValue("token")
	if tokenId == "" {
		writer.WriteHeader(400)
		return
	}

	data := idp.data[tokenId]
	body, err := json.Marshal(data)
	if err != nil {
		writer.WriteHeader(500)
		return
	}

	writer.Write(body)
}
