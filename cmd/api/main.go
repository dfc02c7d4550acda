package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gatherly.org/internal/auth"
	"gatherly.org/internal/event"
	"gatherly.org/internal/httpapi"
	"gatherly.org/internal/notify"
	"gatherly.org/internal/obs"
	"gatherly.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("GATHERLY_AUTH_SECRET")
	if secret == "" {
		log.Fatal("GATHERLY_AUTH_SECRET is required")
	}

	addr := os.Getenv("GATHERLY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Optional DB: the user table moves to Postgres when a DSN is set,
	// events stay in-memory either way.
	var db *sql.DB
	if dsn := os.Getenv("GATHERLY_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	var users auth.UserStore = auth.NewInMemoryUsers()
	if db != nil {
		users = auth.NewPGUsers(db)
	}

	tokens, err := auth.NewTokenService([]byte(secret))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	var sender notify.Sender = notify.LogSender{}
	if apiKey := os.Getenv("GATHERLY_RESEND_API_KEY"); apiKey != "" {
		sender, err = notify.NewResendSender(apiKey, os.Getenv("GATHERLY_EMAIL_FROM"))
		if err != nil {
			log.Fatalf("notify: %v", err)
		}
	}

	authSvc, err := auth.NewService(users, tokens, auth.WithNotifier(sender))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, event.NewInMemory(), stream.New())

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting gatherly-api %s on %s", version, srv.Addr)

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
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
