package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threadgraph/backend/internal/graph"
	"threadgraph/backend/internal/indexes"
	"threadgraph/backend/internal/maintenance"
	"threadgraph/backend/internal/probe"
	"threadgraph/backend/internal/reconstruct"
	"threadgraph/backend/pkg/config"
	"threadgraph/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting maintenance API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := graph.NewDriver(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase, cfg.QueryTimeout, cfg.MaxRetries)
	if err := repo.Verify(context.Background()); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies
	orchestrator := reconstruct.NewOrchestrator(repo, cfg.ReconstructionWorkers, cfg.BatchSize)
	definitions := indexes.Definitions(cfg.EmbeddingDimensions, cfg.SimilarityFunction)
	manager := indexes.NewManager(repo, definitions)
	svc := maintenance.NewService(orchestrator, manager, definitions)
	prober := probe.NewProber(repo, cfg.RedisURL, cfg.OllamaURL)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// System status with collaborator probes
		api.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, prober.Status(c.Request.Context()))
		})

		// Trigger a full reply and thread reconstruction run
		api.POST("/reconstruct", func(c *gin.Context) {
			result := svc.RunThreadReconstruction(c.Request.Context())
			if !result.Success {
				c.JSON(http.StatusInternalServerError, result)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		// Recreate the similarity indexes
		api.POST("/indexes/recreate", func(c *gin.Context) {
			var req struct {
				DropExisting bool `json:"drop_existing"`
			}
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBindJSON(&req); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
			}

			result := svc.RecreateSimilarityIndexes(c.Request.Context(), req.DropExisting)
			if !result.Success {
				c.JSON(http.StatusInternalServerError, result)
				return
			}
			c.JSON(http.StatusOK, result)
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
