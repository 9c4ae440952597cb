// Command create-admin creates an admin account, or promotes the account
// that already uses ADMIN_EMAIL.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/config"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/database"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/logger"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/service"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	email := flag.String("email", config.GetEnv("ADMIN_EMAIL", ""), "admin email")
	password := flag.String("password", config.GetEnv("ADMIN_PASSWORD", ""), "admin password (>= 6 characters; empty keeps an existing password)")
	name := flag.String("name", config.GetEnv("ADMIN_NAME", "Administrator"), "display name")
	flag.Parse()

	if *email == "" {
		log.Fatal("ADMIN_EMAIL or -email is required")
	}
	if *password != "" && len(*password) < 6 {
		log.Fatal("admin password must be at least 6 characters")
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		zlog.Fatal("connect", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	if err := store.EnsureIndexes(ctx, db); err != nil {
		zlog.Fatal("ensure indexes", zap.Error(err))
	}

	auth := service.NewAuthService(store.NewUserStore(db))
	user, created, err := auth.EnsureAdmin(ctx, *email, *password, *name)
	if err != nil {
		zlog.Fatal("ensure admin", zap.Error(err))
	}
	if created {
		zlog.Info("admin created", zap.String("email", user.Email), zap.String("id", user.ID.Hex()))
		return
	}
	zlog.Info("existing account promoted to admin", zap.String("email", user.Email), zap.String("id", user.ID.Hex()))
}
