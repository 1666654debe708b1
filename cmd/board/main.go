package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"anonboard/internal/common"
	"anonboard/internal/story"
	"anonboard/internal/wire"
)

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()
	logger := app.Logger
	defer logger.Sync()

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        setupRouter(app),
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go story.StartCleaner(ctx, app.Story, app.Config.Story.CleanupInterval, logger)

	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", app.Config.Server.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server gracefully stopped")
}

func setupRouter(app *wire.Application) http.Handler {
	router := mux.NewRouter()
	router.Use(common.LoggingMiddleware(app.Logger))

	router.HandleFunc("/health", healthCheckHandler(app)).Methods(http.MethodGet)
	app.Media.RegisterRoutes(router)

	api := router.PathPrefix("/api").Subrouter()
	app.Messages.RegisterRoutes(api)
	app.Stories.RegisterRoutes(api)
	app.Admin.RegisterRoutes(api.PathPrefix("/admin").Subrouter())

	c := cors.New(cors.Options{
		AllowedOrigins:   app.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func healthCheckHandler(app *wire.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := app.Mongo.Client.Ping(ctx, nil); err != nil {
			app.Logger.Warn("Health check: MongoDB ping failed", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
		common.RespondJSON(w, app.Logger, code, map[string]string{
			"status":  status,
			"service": "anonboard",
		})
	}
}
