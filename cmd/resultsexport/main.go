package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pollwise/api/internal/adapters/repository/postgres"
	"github.com/pollwise/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dbHost, dbPort, dbUser, dbPass, dbName, pollID, out string

	flag.StringVar(&dbHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	flag.StringVar(&dbPort, "db-port", os.Getenv("POSTGRES_PORT"), "Database port")
	flag.StringVar(&dbUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&dbPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&dbName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.StringVar(&pollID, "poll", "", "Poll ID to export")
	flag.StringVar(&out, "out", "", "Output file (default: stdout)")
	flag.Parse()

	if pollID == "" {
		log.Fatal("missing required flag: -poll")
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	pollRepo := postgres.NewPollRepository(db)
	responseRepo := postgres.NewResponseRepository(db)
	resultsService := services.NewResultsService(pollRepo, responseRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, err := resultsService.Export(ctx, pollID)
	if err != nil {
		log.Fatalf("Error exporting results: %v", err)
	}

	if out == "" {
		os.Stdout.Write(data)
		return
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		log.Fatalf("Error writing export file: %v", err)
	}
	log.Printf("Results exported to %s", out)
}
