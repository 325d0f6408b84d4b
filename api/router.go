// Package api exposes the optimizer over HTTP.
package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/kilianp07/bessopt/api/handlers"
	"github.com/kilianp07/bessopt/api/middleware"
	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/infra/logger"
)

// Deps carries everything the HTTP layer needs. Store may be nil when
// persistence is disabled.
type Deps struct {
	Optimizer handlers.Optimizer
	Store     handlers.RunStore
	Battery   model.BatteryParams
	Tariff    model.Tariff
	MaxSteps  int
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	opt := handlers.NewOptimizeHandler(deps.Optimizer, deps.Battery, deps.Tariff, deps.MaxSteps)
	runs := handlers.NewRunsHandler(deps.Store)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/optimize", opt.Optimize)
		v1.GET("/runs", runs.ListRuns)
		v1.GET("/runs/:id", runs.GetRun)
	}

	return router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, cfg config.APIConfig, router *gin.Engine) error {
	log := logger.New("api")

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(router)

	srv := &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
	}()

	log.Infof("api server listening on %s", cfg.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
