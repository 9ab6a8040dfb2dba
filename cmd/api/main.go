package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/z-butler/backend/internal/config"
	"github.com/zhouzirui/z-butler/backend/internal/handler"
	"github.com/zhouzirui/z-butler/backend/internal/model/dialog"
	"github.com/zhouzirui/z-butler/backend/internal/service/completion"
	"github.com/zhouzirui/z-butler/backend/internal/service/resolve"
	"github.com/zhouzirui/z-butler/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Dialog tables are loaded once and shared read-only by every session.
	rules := dialog.LoadRules(cfg.Data.RulesPath)
	knowledge := dialog.LoadKnowledge(cfg.Data.KnowledgePath)
	store := dialog.NewStore(rules, knowledge)
	log.Printf("dialog tables loaded: %d rules, %d knowledge entries", len(rules), len(knowledge))

	var completer resolve.Completer
	if client, err := completion.NewClient(ctx, cfg.Completion); err != nil {
		log.Printf("warning: failed to initialize completion client: %v", err)
		log.Println("continuing with a canned fallback reply for unresolved inputs")
		completer = completion.Disabled{}
	} else {
		log.Printf("completion client initialized for %s", cfg.Completion.BaseURL)
		completer = client
	}

	engine := resolve.NewEngine(store, completer)

	dispatcher := speech.NewDispatcher(speech.Options{
		CloudBaseURL: cfg.Speech.CloudBaseURL,
		LocalCommand: cfg.Speech.LocalCommand,
		Timeout:      cfg.Speech.Timeout,
	})
	if voices := dispatcher.Voices(); len(voices) > 0 {
		log.Printf("on-device synthesis available with %d voices", len(voices))
	} else {
		log.Println("on-device synthesis unavailable, cloud engines only")
	}

	router := handler.NewRouter(engine, dispatcher, cfg.Speech.DefaultEngine)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Z Butler backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
