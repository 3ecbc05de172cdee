// Command admin grants the admin role to an existing account.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/db"
	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "email of the account to promote")
	flag.Parse()

	cfg := config.MustLoad()
	logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	if *email == "" {
		logger.Error("-email is required")
		os.Exit(2)
	}

	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer dbMySQL.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// sessions are not touched, so no redis client is needed
	users := repository.NewRepositories(dbMySQL, nil).Users

	user, err := users.GetByEmail(ctx, domain.NormalizeEmail(*email))
	if err != nil {
		logger.Error("user lookup failed", zap.String("email", *email), zap.Error(err))
		os.Exit(1)
	}

	if user.IsAdmin() {
		logger.Info("user is already an admin", zap.String("user_id", user.ID.String()))
		return
	}

	user.Role = domain.RoleAdmin
	user.UpdatedAt = time.Now().UTC()
	if err := users.Update(ctx, user); err != nil {
		logger.Error("grant admin failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		os.Exit(1)
	}

	logger.Info("admin role granted", zap.String("user_id", user.ID.String()))
}
