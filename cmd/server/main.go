package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"sipscore/log"
	"sipscore/service"
)

const defaultPort = "5000"

func main() {
	tokens := service.NewTokenService()
	api := service.NewAPI(tokens)

	port := os.Getenv("SIPSCORE_PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      api.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Logger().Print("shutting down gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Logger().Printf("server forced to shutdown: %s", err)
		}
		close(done)
	}()

	log.Logger().Printf("started HTTP listener on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Logger().Fatalf("http server error: %s", err)
	}
	<-done
	log.Logger().Print("graceful shutdown complete")
}
