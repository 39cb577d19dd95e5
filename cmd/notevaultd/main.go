// Command notevaultd runs the NoteVault HTTP backend: email/password
// authentication with rotating refresh tokens, and note CRUD behind the
// access-token gate.
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

	"github.com/redis/go-redis/v9"

	notevault "github.com/notevault/notevault"
	"github.com/notevault/notevault/internal/httpapi"
	"github.com/notevault/notevault/internal/store"
)

type config struct {
	Addr          string
	RedisAddr     string
	DBPath        string
	AccessSecret  string
	RefreshSecret string
}

func loadConfig() config {
	return config{
		Addr:          envOr("NOTEVAULT_ADDR", ":3001"),
		RedisAddr:     envOr("NOTEVAULT_REDIS_ADDR", "127.0.0.1:6379"),
		DBPath:        envOr("NOTEVAULT_DB_PATH", "notevault.db"),
		AccessSecret:  os.Getenv("NOTEVAULT_ACCESS_TOKEN_SECRET"),
		RefreshSecret: os.Getenv("NOTEVAULT_REFRESH_TOKEN_SECRET"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := loadConfig()
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return errors.New("NOTEVAULT_ACCESS_TOKEN_SECRET and NOTEVAULT_REFRESH_TOKEN_SECRET must be set")
	}

	db, err := store.NewStorage(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("closing storage: %v", err)
		}
	}()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return err
	}
	log.Printf("connected to redis at %s", cfg.RedisAddr)

	engine, err := notevault.New().
		WithConfig(notevault.Config{
			Token: notevault.TokenConfig{
				AccessSecret:  []byte(cfg.AccessSecret),
				RefreshSecret: []byte(cfg.RefreshSecret),
			},
		}).
		WithRedis(rdb).
		WithUserProvider(store.NewUsers(db)).
		Build()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(engine, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server running on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
