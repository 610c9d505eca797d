package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-social-feed/config"
	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
	pginfra "github.com/oksasatya/go-social-feed/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// seed creates a demo account and its first post. Run after migrations.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)

	auth := application.NewAuthService(application.AuthDeps{
		Users:  users,
		Hasher: helpers.NewBcryptHasher(cfg.BcryptCost),
		Tokens: helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Logger: logger,
	})

	const (
		email    = "demo@example.com"
		password = "password123"
		name     = "demoUser"
	)
	var userID string
	u, err := auth.Register(ctx, application.RegisterInput{UserName: name, Email: email, Password: password})
	switch {
	case err == nil:
		userID = u.ID
	case errors.Is(err, domain.ErrConflict):
		existing, gerr := users.GetByEmail(ctx, email)
		if gerr != nil {
			log.Fatalf("failed to load demo user: %v", gerr)
		}
		userID = existing.ID
		fmt.Println("demo user already exists")
	default:
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", userID, email, name, password)

	own, err := posts.List(ctx, repository.PostFilter{UserID: userID})
	if err != nil {
		log.Fatalf("failed to list posts: %v", err)
	}
	if len(own) > 0 {
		fmt.Println("demo post already exists")
		return
	}
	p := &entity.Post{UserID: userID, Text: "Hello from the demo account!"}
	if err := posts.Create(ctx, p); err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	fmt.Printf("seeded post: id=%s\n", p.ID)
}
