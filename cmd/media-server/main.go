// Command media-server serves GridFS story images on their own port, for
// deployments that put image traffic behind a separate proxy or CDN.
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

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"anonboard/internal/common"
	"anonboard/internal/config"
	"anonboard/internal/dbmongo"
	"anonboard/internal/media"
)

func main() {
	cfg := config.LoadConfig()
	logger, err := common.NewLogger(cfg.Server.Environment, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Close(context.Background())

	router := mux.NewRouter()
	router.Use(common.LoggingMiddleware(logger))
	media.NewHTTPServer(dbmongo.NewMediaStorage(mongoClient), logger).RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Media.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Media server starting", zap.String("addr", server.Addr), zap.String("path", dbmongo.MediaPathPrefix+"{fileId}"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Media server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Media server forced to shutdown", zap.Error(err))
	}
}
