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

	"github.com/starkline/phone-mirror/backend/internal/analysis/sentiment"
	"github.com/starkline/phone-mirror/backend/internal/config"
	"github.com/starkline/phone-mirror/backend/internal/gossip"
	"github.com/starkline/phone-mirror/backend/internal/handler"
	"github.com/starkline/phone-mirror/backend/internal/model/persona"
	"github.com/starkline/phone-mirror/backend/internal/service/ai"
	chatservice "github.com/starkline/phone-mirror/backend/internal/service/chat"
	notifyservice "github.com/starkline/phone-mirror/backend/internal/service/notify"
	"github.com/starkline/phone-mirror/backend/internal/store"
)

// gossipPurgeInterval drives the periodic eviction of stale gossip entries.
const gossipPurgeInterval = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	gossipStore := gossip.NewStore(personaStore, cfg.Chat.GossipCapacity)

	historyStore, cleanup, err := newHistoryStore(cfg.Chat)
	if err != nil {
		log.Fatalf("failed to initialize history store: %v", err)
	}
	defer cleanup()

	generator := newGenerator(ctx, gossipStore, cfg.AI)
	analyzer := sentiment.NewAnalyzer(angerPersonaID(personaStore))
	relay := notifyservice.NewRelay()
	chatSvc := chatservice.NewService(personaStore, historyStore, generator, analyzer, gossipStore, relay)

	go purgeGossipLoop(ctx, gossipStore)

	router := handler.NewRouter(personaStore, chatSvc, relay)
	startServer(ctx, cfg.Server, router)
}

// newGenerator prefers the LLM chain and falls back to canned lines so the
// simulation runs without credentials.
func newGenerator(ctx context.Context, gossipStore *gossip.Store, cfg config.AIConfig) chatservice.Generator {
	if !cfg.Enabled() {
		log.Println("Ark credentials not configured, using canned generator")
		return ai.NewCanned()
	}

	svc, err := ai.NewService(ctx, gossipStore, cfg)
	if err != nil {
		log.Printf("warning: failed to initialize AI service: %v", err)
		log.Println("continuing with canned generator")
		return ai.NewCanned()
	}
	log.Println("AI service initialized successfully")
	return svc
}

func newHistoryStore(cfg config.ChatConfig) (store.HistoryStore, func(), error) {
	if cfg.DBPath == "" {
		return store.NewMemoryStore(), func() {}, nil
	}
	sqlite, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("chat history persisted to %s", cfg.DBPath)
	return sqlite, func() { _ = sqlite.Close() }, nil
}

func angerPersonaID(personas persona.Store) string {
	for _, p := range personas.List() {
		if p.TracksAnger {
			return p.ID
		}
	}
	return ""
}

func purgeGossipLoop(ctx context.Context, gossipStore *gossip.Store) {
	ticker := time.NewTicker(gossipPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gossipStore.PurgeOlderThan(gossip.DefaultMaxAge)
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Phone mirror backend listening on %s", addr)
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
