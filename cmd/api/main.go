package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/config"
	dbpkg "github.com/fieldserve/marketplace-core/internal/db"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	"github.com/fieldserve/marketplace-core/internal/routes"
)

func main() {

	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db := dbpkg.NewDB(cfg)
	if err := dbpkg.SeedFinanceDefaults(db); err != nil {
		logger.Fatal("failed to seed finance settings", zap.Error(err))
	}

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, logger)

	logger.Info("server running", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
