package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"gitlab.com/pala-software/livelist/pkg/cors"
	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/otel"
)

func startHttpServer(
	mux *http.ServeMux,
	lifecycle *livelist.Lifecycle,
	otelFeature *otel.OTel,
) (err error) {
	addr := os.Getenv("LIVELIST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Start listening
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() {
		for _, hook := range lifecycle.Shutdown.Value() {
			hookErr := hook()
			err = errors.Join(err, hookErr)
		}
	}()

	// Emit start event
	for _, hook := range lifecycle.Start.Value() {
		err = hook()
		if err != nil {
			return
		}
	}

	var handler http.Handler = mux
	handler = otelFeature.Middleware()(handler)
	handler = cors.CorsFromEnv().Middleware(handler)

	// Serve HTTP
	srv := &http.Server{Handler: handler}
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Serve(listener)
	}()

	fmt.Println("Server started on " + addr + "!")

	// Wait for interruption.
	select {
	case err = <-srvErr:
		// Error when starting HTTP server.
		return
	case <-ctx.Done():
		// Wait for first CTRL+C.
		// Stop receiving signal notifications as soon as possible.
		stop()
	}

	// When Shutdown is called, Serve immediately returns ErrServerClosed.
	// Event streams hold their connections open, so force the remaining
	// ones closed after a grace period.
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = srv.Close()
	}
	return
}
