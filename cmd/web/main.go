package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"snowman/internal/game"
	"snowman/internal/gateway"
	"snowman/internal/handlers"
	"snowman/internal/platform/config"
	"snowman/internal/users/sqlite"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	cfg, err := config.LoadWeb()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetPrefix("[WEB] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, closeGateway, err := openGateway(cfg)
	if err != nil {
		log.Fatalf("open gateway: %v", err)
	}
	defer closeGateway()

	store := game.NewStore(cfg.Tuning)
	go store.RunSweeper(ctx, cfg.SessionSweepPeriod, cfg.SessionTTL, log.Default())
	handlerCfg := handlers.Config{Logger: log.Default(), GatewayTimeout: cfg.GatewayTimeout}

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal(err)
	}

	homeHandler := handlers.NewHomeHandler(store, gw, handlerCfg)
	gameHandler := handlers.NewGameHandler(store, gw, handlerCfg)
	pointerHandler := handlers.NewPointerHandler(store, handlers.PointerConfig{Logger: log.Default()})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
		homeHandler.RegisterRoutes(r)
		gameHandler.RegisterRoutes(r)
	})
	// SSE and websocket connections outlive any request timeout.
	r.Group(func(r chi.Router) {
		gameHandler.RegisterStreams(r)
		pointerHandler.RegisterStreams(r)
	})

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on http://localhost%s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	// Ending sessions closes SSE streams and pointer sockets so Shutdown can drain.
	store.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openGateway talks to a remote gateway when GATEWAY_URL is set and
// otherwise keeps users in a local SQLite file.
func openGateway(cfg config.Web) (gateway.Gateway, func(), error) {
	if cfg.GatewayURL != "" {
		client, err := gateway.NewClient(cfg.GatewayURL, cfg.GatewayTimeout)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using remote gateway %s", cfg.GatewayURL)
		return client, func() {}, nil
	}
	usersStore, err := sqlite.Open(cfg.UsersDBPath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("using local users store %s", cfg.UsersDBPath)
	return gateway.NewLocal(usersStore, ""), func() { _ = usersStore.Close() }, nil
}

//go:embed static/*
var embeddedStatic embed.FS
