package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"caradvisor/internal/handler"
	"caradvisor/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	maxTopK         = 20
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("starting caradvisor",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	repo, err := rt.openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "open listing store")
	}
	defer repo.Close()

	gen, err := rt.textGenerator(ctx)
	if err != nil {
		return err
	}

	// Embeddings are computed by OpenAI-compatible providers only
	var embedder service.Embedder
	if client := rt.openAIClient(); client != nil {
		embedder = client
	}

	interviews := rt.newInterviewService(gen)
	recommender := rt.newRecommendService(repo, gen)
	embeddings := service.NewEmbeddingService(repo, embedder, rt.cfg.OpenAI.BatchSize, rt.logger)

	interviewHandler := handler.NewInterviewHandler(interviews, recommender, rt.cfg.Recommend.TopK, maxTopK)
	recommendHandler := handler.NewRecommendHandler(recommender, rt.cfg.Recommend.TopK, maxTopK)
	embeddingHandler := handler.NewEmbeddingHandler(embeddings, rt.cfg.OpenAI.EmbeddingDimensions)

	gin.SetMode(rt.cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(rt.logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(rt.cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": app,
			"store":   repo.Driver(),
			"version": Version,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		// Interview endpoints
		apiV1.POST("/interviews", interviewHandler.Start)
		apiV1.GET("/interviews/:id", interviewHandler.Status)
		apiV1.POST("/interviews/:id/answers", interviewHandler.Answer)
		apiV1.POST("/interviews/:id/finish", interviewHandler.Finish)
		apiV1.POST("/interviews/:id/recommendations", interviewHandler.Recommend)
		apiV1.POST("/interviews/:id/recommendations/stream", interviewHandler.RecommendStream)

		// Stateless recommendations
		apiV1.POST("/recommendations", recommendHandler.Recommend)
		apiV1.POST("/recommendations/stream", recommendHandler.RecommendStream)
		apiV1.GET("/listings/:id", recommendHandler.GetListing)

		// Embedding endpoints
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	addr := fmt.Sprintf("%s:%d", rt.cfg.Server.Host, rt.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutdown")
	}
	rt.logger.Info("server stopped")
	return nil
}

// requestLogger logs one line per request with zap
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
