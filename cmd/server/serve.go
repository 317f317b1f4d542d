package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"metadata-repository/docs"
	"metadata-repository/internal/archive"
	"metadata-repository/internal/handlers"
	"metadata-repository/internal/logging"
	"metadata-repository/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the log backup scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.logs.Activity

	gin.SetMode(a.cfg.GinMode)
	router := gin.New()
	router.Use(
		logging.GinLogger(log),
		metrics.Middleware(),
		gin.Recovery(),
		cors.New(corsConfig(a.cfg.CORSAllowedOrigins)),
	)

	api := handlers.NewAPI(a.engine, a.intake, a.datalake, a.auth, a.backup, log)
	api.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	scheduler := archive.NewScheduler(a.backup, a.cfg.LogBackupInterval, log, a.logs.OutOfBand)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	log.Info("Shutdown signal received, stopping server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

// corsConfig allows every origin when the list contains "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
