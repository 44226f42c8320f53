package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klabast/wb-services/civic-registry/internal/app"
	"github.com/klabast/wb-services/civic-registry/internal/commands"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		commands.HashPassword(os.Args[2:])
		return
	}

	defaultSeed := os.Getenv(app.SeedFileEnv)
	seedExplicit := defaultSeed != ""
	if defaultSeed == "" {
		defaultSeed = app.DefaultSeedFile
	}

	port := flag.Int("port", 8080, "Port to listen on")
	flag.BoolVar(&app.EditMode, "edit", false, "Enable edit mode (default is serve mode)")
	seedFile := flag.String("seed", defaultSeed, "YAML file with festivals, elections and validator rules")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedExplicit = true
		}
	})

	if app.EditMode {
		if err := app.LoadAuthCredentials(); err != nil {
			log.Fatalf("Failed to load auth credentials: %v", err)
		}
	}

	if err := app.LoadAndApplySeed(*seedFile, seedExplicit); err != nil {
		log.Fatalf("Failed to load seed data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", app.GetConfig)
	mux.HandleFunc("/api/festivals", app.HandleFestivals)
	mux.HandleFunc("/api/festivals/upcoming", app.HandleUpcoming)
	mux.HandleFunc("/api/download", app.HandleDownload)
	mux.HandleFunc("/api/subscribe", app.HandleSubscribe)
	mux.HandleFunc("/api/voters/validate", app.HandleValidateVoter)
	mux.HandleFunc("/api/regions/count", app.HandleCountRegions)
	mux.HandleFunc("/api/elections/", app.HandleElection)

	// Edit mode routes (protected with Basic Auth)
	if app.EditMode {
		mux.HandleFunc("/api/festivals/add", app.RequireAuth(app.AddFestival))
		mux.HandleFunc("/api/festivals/delete", app.RequireAuth(app.DeleteFestival))
		mux.HandleFunc("/api/elections", app.RequireAuth(app.CreateElection))
	}

	mode := app.ModeServe
	if app.EditMode {
		mode = app.ModeEdit
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux}
	go func() {
		log.Printf("Starting Civic Registry in %s mode on http://localhost:%d", mode, *port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("Shutting down...")
	app.Elections.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
