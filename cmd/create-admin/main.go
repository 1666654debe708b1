// Command create-admin seeds an admin account directly in MongoDB. The
// console has no sign-up route, so the first admin is created here.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"anonboard/internal/admin"
	"anonboard/internal/common"
	"anonboard/internal/config"
	"anonboard/internal/dbmongo"
)

func main() {
	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.Parse()

	cfg := config.LoadConfig()
	logger, err := common.NewLogger(cfg.Server.Environment, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, *username, *password, logger); err != nil {
		logger.Fatal("Could not create admin", zap.Error(err))
	}
}

func run(cfg *config.Config, username, password string, logger *zap.Logger) error {
	if username == "" || password == "" {
		return errors.New("both -username and -password are required")
	}
	username, err := common.ValidateUsername(username)
	if err != nil {
		return err
	}
	if err := common.ValidatePassword(password); err != nil {
		return err
	}

	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer mc.Close(context.Background())

	if err := mc.EnsureIndexes(ctx); err != nil {
		return err
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return err
	}
	account := &admin.Account{Username: username, PasswordHash: hashed, IsAdmin: true}
	if err := admin.NewRepository(mc.Database).Create(ctx, account); err != nil {
		return err
	}

	logger.Info("Admin created", zap.String("username", account.Username), zap.String("id", account.ID.Hex()))
	return nil
}
