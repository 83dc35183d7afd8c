package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/Aidin1998/trivia/api/handlers"
	"github.com/Aidin1998/trivia/common/apiutil"
	"github.com/Aidin1998/trivia/internal/trivia"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Options tunes the HTTP layer
type Options struct {
	// AllowOrigins lists CORS origins; "*" or an empty list allows all
	AllowOrigins []string
	// RateLimit throttles question writes per client IP ("120-M").
	// Empty disables throttling.
	RateLimit    string
	ServiceName  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server represents the API server
type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	trivia      *handlers.TriviaHandler
	rateLimiter gin.HandlerFunc
	httpServer  *http.Server
}

// NewServer creates a new API server on top of the trivia service
func NewServer(logger *zap.Logger, svc trivia.TriviaService, opts Options) (*Server, error) {
	server := &Server{
		logger: logger,
		trivia: handlers.NewTriviaHandler(logger, svc),
	}

	if opts.RateLimit != "" {
		limit, err := apiutil.RateLimitMiddleware(opts.RateLimit)
		if err != nil {
			return nil, err
		}
		server.rateLimiter = limit
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "trivia-api"
	}

	// Create router
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Add middleware
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.CustomRecoveryWithZap(logger, true, func(c *gin.Context, _ any) {
		apiutil.WriteErrorResponse(c, http.StatusInternalServerError)
	}))
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(apiutil.RequestIDMiddleware())
	router.Use(apiutil.MetricsMiddleware())
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	router.NoRoute(func(c *gin.Context) {
		apiutil.WriteErrorResponse(c, http.StatusNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		apiutil.WriteErrorResponse(c, http.StatusMethodNotAllowed)
	})

	server.router = router
	server.registerRoutes()

	server.httpServer = &http.Server{
		Handler:      router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return server, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "PATCH", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", apiutil.RequestIDHeader}
	cfg.ExposeHeaders = []string{"Content-Length", apiutil.RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

// Start serves HTTP on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", zap.String("addr", addr))
	s.httpServer.Addr = addr
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.trivia.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Categories
	s.router.GET("/categories", s.trivia.GetCategories)
	s.router.GET("/categories/:id/questions", s.trivia.GetCategoryQuestions)

	// Questions
	questions := s.router.Group("/questions")
	{
		questions.GET("", s.trivia.GetQuestions)
		questions.POST("/search", s.trivia.SearchQuestions)

		writes := questions.Group("")
		if s.rateLimiter != nil {
			writes.Use(s.rateLimiter)
		}
		writes.POST("", s.trivia.CreateQuestion)
		writes.DELETE("/:id", s.trivia.DeleteQuestion)
	}

	// Quizzes
	quizzes := s.router.Group("/quizzes")
	{
		quizzes.POST("", s.trivia.PlayQuiz)
		quizzes.POST("/answers", s.trivia.CheckAnswer)
	}
}
