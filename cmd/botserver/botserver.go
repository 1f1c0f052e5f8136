package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/botserver"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/garage"
)

func main() {
	defaultGarage := os.Getenv("BOTCALC_GARAGE")
	if defaultGarage == "" {
		defaultGarage = "garage.yaml"
	}
	port := flag.String("port", "8080", "Server port")
	garagePath := flag.String("garage", defaultGarage, "Garage file, created on first change (env BOTCALC_GARAGE)")
	flag.Parse()

	g, err := garage.Load(*garagePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("No garage at %s, starting a new one", *garagePath)
		g = garage.New()
		if err := g.Select(g.Create()); err != nil {
			log.Fatal(err)
		}
	case err != nil:
		log.Fatal(err)
	}

	log.Printf("Starting bot server on port %s with %d bots", *port, len(g.List()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := botserver.NewServer(g, *garagePath)
	go s.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Shutting down server (signal: %v)...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := g.Save(*garagePath); err != nil {
		log.Printf("Failed to save garage: %v", err)
	}
	log.Println("Server stopped")
}
