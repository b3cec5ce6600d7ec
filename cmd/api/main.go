package main

import (
	"context"
	"os"

	"github.com/yigit/alumnet/internal/pkg/logger"
	"github.com/yigit/alumnet/internal/server"
)

// @title AlumNet API
// @version 1.0
// @description Alumni network: posts, threaded comments, votes, moderation, notifications, connections and messaging.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT issued by the identity provider.

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
}
