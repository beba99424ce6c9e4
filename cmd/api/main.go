package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoukyDPA/mission-ia/internal/auth"
	"github.com/DoukyDPA/mission-ia/internal/config"
	"github.com/DoukyDPA/mission-ia/internal/forms"
	"github.com/DoukyDPA/mission-ia/internal/httpapi"
	"github.com/DoukyDPA/mission-ia/internal/identity"
	"github.com/DoukyDPA/mission-ia/internal/obs"
	"github.com/DoukyDPA/mission-ia/internal/storage"
	"github.com/DoukyDPA/mission-ia/internal/store"
	"github.com/DoukyDPA/mission-ia/internal/store/memory"
	"github.com/DoukyDPA/mission-ia/internal/store/pg"
)

// Overridden at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		st    store.Store
		ready httpapi.ReadyProbe
	)
	if cfg.Preview() {
		log.Printf("No MISSIONIA_PG_DSN set; running in preview mode with demo data")
		if !auth.SecretConfigured() {
			if err := auth.GenerateEphemeralSecret(); err != nil {
				log.Fatalf("auth: %v", err)
			}
			log.Printf("MISSIONIA_AUTH_SECRET not set; using an ephemeral secret, sessions reset on restart")
		}
		st = memory.Seeded()
	} else {
		if !auth.SecretConfigured() {
			log.Fatalf("config: MISSIONIA_AUTH_SECRET is required")
		}
		pgStore, err := pg.Open(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		st = pgStore
		ready = httpapi.ReadyProbe{DB: pgStore.DB()}
	}

	files := storage.NewLocal(cfg.StorageDir, cfg.PublicFilesURL)

	identityOpts := []identity.Option{
		identity.WithSessionTTL(time.Duration(cfg.SessionTTLHours) * time.Hour),
	}
	if cfg.Preview() {
		identityOpts = append(identityOpts, identity.WithPreviewMode(true))
	}

	api := httpapi.New(httpapi.Options{
		Store:      st,
		Files:      files,
		Identity:   identity.NewService(st, identityOpts...),
		Forms:      forms.NewProcessor(st, files),
		Ready:      ready,
		Version:    version,
		FileDir:    files.Dir(),
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting missionia-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
