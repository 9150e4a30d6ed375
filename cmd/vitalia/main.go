package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/emastro/vitalia/internal/config"
	"github.com/emastro/vitalia/internal/consult"
	"github.com/emastro/vitalia/internal/generation"
	"github.com/emastro/vitalia/internal/httpapi"
	"github.com/emastro/vitalia/internal/knowledge"
	"github.com/emastro/vitalia/internal/medication"
	"github.com/emastro/vitalia/internal/observability"
	"github.com/emastro/vitalia/internal/profile"
	"github.com/emastro/vitalia/internal/session"
	"github.com/emastro/vitalia/internal/translation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := profile.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("profile store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL == "" {
		log.Printf("profile store: in-memory (no DATABASE_URL)")
	} else {
		log.Printf("profile store: postgres")
	}

	backend, err := generation.NewBackend(generation.Config{
		Mode:    cfg.GenerationMode,
		HTTPURL: cfg.GenerationHTTPURL,
		Timeout: cfg.GenerationTimeout,
	})
	if err != nil {
		log.Fatalf("generation backend init failed: %v", err)
	}

	translator, err := translation.NewTranslator(translation.Config{
		Mode:    cfg.TranslationMode,
		HTTPURL: cfg.TranslationHTTPURL,
		Timeout: cfg.TranslationTimeout,
	})
	if err != nil {
		log.Fatalf("translator init failed: %v", err)
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Conversation) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	orchestrator := consult.NewOrchestrator(consult.Deps{
		Sessions:    sessions,
		Retriever:   knowledge.NewRetriever(),
		Backend:     backend,
		Translator:  translator,
		Store:       store,
		Medications: medication.NewStaticSource(),
		Metrics:     metrics,
		Logger:      log.Default(),
	}, consult.Options{
		RetrievalTopK:      cfg.RetrievalTopK,
		ProfileTimeout:     cfg.ProfileTimeout,
		GenerationTimeout:  cfg.GenerationTimeout,
		TranslationTimeout: cfg.TranslationTimeout,
		MedicationTimeout:  cfg.MedicationTimeout,
		PersistTimeout:     cfg.PersistTimeout,
		DefaultLanguage:    cfg.DefaultLanguage,
		TranslationEnabled: cfg.TranslationEnabled,
		PersistenceEnabled: cfg.PersistenceEnabled,
		MedicationEnabled:  cfg.MedicationEnabled,
	})

	api := httpapi.New(cfg, sessions, orchestrator, store, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, cfg.SessionJanitorInterval)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
