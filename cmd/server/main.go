package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pollwise/api/internal/adapters/handler/http"
	"github.com/pollwise/api/internal/adapters/oauth/google"
	fsrepo "github.com/pollwise/api/internal/adapters/repository/firestore"
	"github.com/pollwise/api/internal/adapters/repository/postgres"
	"github.com/pollwise/api/internal/core/ports"
	"github.com/pollwise/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx := context.Background()

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_PORT"), os.Getenv("POSTGRES_DB"))
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	pollRepo, responseRepo, err := pollStores(ctx, db)
	if err != nil {
		log.Fatal(err)
	}
	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewAuthRepository(db)

	pollSvc := services.NewPollService(pollRepo)
	responseSvc := services.NewResponseService(pollRepo, responseRepo)
	resultsSvc := services.NewResultsService(pollRepo, responseRepo)
	authSvc := services.NewAuthService(userRepo, authRepo, google.NewVerifier())
	userSvc := services.NewUserService(userRepo)
	adminSvc := services.NewAdminService(userRepo, pollRepo)

	handlers := http.Handlers{
		Poll:     http.NewPollHandler(pollSvc),
		Response: http.NewResponseHandler(responseSvc),
		Results:  http.NewResultsHandler(resultsSvc, pollSvc),
		Auth:     http.NewAuthHandler(authSvc, os.Getenv("AUTH_REDIRECT_URL"), os.Getenv("COOKIE_DOMAIN"), stdhttp.SameSiteLaxMode),
		User:     http.NewUserHandler(userSvc, authSvc),
		Admin:    http.NewAdminHandler(adminSvc),
	}

	var origins []string
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	handler := http.NewHandler(handlers, origins)
	server := &stdhttp.Server{Addr: "0.0.0.0:8080", Handler: handler}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-runCtx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

// pollStores picks the backend for poll and response documents. Identity and
// refresh tokens always live in postgres; the document store only ever held
// the poll data.
func pollStores(ctx context.Context, db *sql.DB) (ports.PollRepository, ports.ResponseRepository, error) {
	switch backend := os.Getenv("DOCUMENT_STORE"); backend {
	case "", "postgres":
		return postgres.NewPollRepository(db), postgres.NewResponseRepository(db), nil
	case "firestore":
		client, err := fsrepo.NewClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return fsrepo.NewPollRepository(client), fsrepo.NewResponseRepository(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown DOCUMENT_STORE %q", backend)
	}
}
