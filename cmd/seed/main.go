// seed registers a handful of test users in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/nbekenov/authsvc/internal/domain"
	"github.com/nbekenov/authsvc/internal/email"
	"github.com/nbekenov/authsvc/internal/infrastructure/postgres"
	"github.com/nbekenov/authsvc/internal/password"
	"github.com/nbekenov/authsvc/internal/usecase"
)

type seedUser struct {
	email    string
	password string
}

var users = []seedUser{
	{"alice@test.local", "alice-pass-1"},
	{"bob@test.local", "bob-pass-1"},
	{"carol@test.local", "carol-pass-1"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	if err := postgres.Migrate(ctx, dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	auth := usecase.NewAuthUsecase(
		postgres.NewUserRepository(pool),
		password.NewBcryptHasher(10),
		email.NewSender("local", "", "", logger),
		"http://localhost:8080",
	)

	var created, skipped int
	for _, u := range users {
		_, err := auth.Register(ctx, u.email, u.password)
		switch {
		case errors.Is(err, domain.ErrAlreadyRegistered):
			skipped++
		case err != nil:
			log.Fatalf("register %s: %v", u.email, err)
		default:
			created++
		}
	}

	fmt.Println("Seed complete")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Skipped: %d (already registered)\n", skipped)
}
