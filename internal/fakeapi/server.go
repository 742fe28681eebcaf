// Package fakeapi is an in-process member portal backend used by tests.
// It serves the auth and member routes the CLI talks to.
package fakeapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/branchd-dev/memberctl/internal/auth"
)

// Server represents the fake HTTP backend
type Server struct {
	router *gin.Engine
	logger zerolog.Logger
	signer *auth.Signer
	hasher *auth.PasswordHasher

	mu      sync.Mutex
	members map[string]*member // by id
	byEmail map[string]string  // email -> id
	hits    map[string]int     // "METHOD /path" -> count
	failing map[string]int     // "METHOD /path" -> forced status
}

// Option configures the fake server
type Option func(*serverOptions)

type serverOptions struct {
	logger   zerolog.Logger
	secret   string
	tokenTTL time.Duration
}

// WithLogger sets the request logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *serverOptions) {
		o.logger = l
	}
}

// WithSecret sets the token signing secret
func WithSecret(secret string) Option {
	return func(o *serverOptions) {
		o.secret = secret
	}
}

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(o *serverOptions) {
		o.tokenTTL = ttl
	}
}

// New creates a new fake backend
func New(opts ...Option) *Server {
	o := &serverOptions{
		logger:   zerolog.Nop(),
		secret:   "fakeapi-secret",
		tokenTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(o)
	}

	gin.SetMode(gin.TestMode)

	s := &Server{
		logger:  o.logger,
		signer:  auth.NewSigner(o.secret, o.tokenTTL),
		hasher:  auth.NewPasswordHasher(bcrypt.MinCost),
		members: make(map[string]*member),
		byEmail: make(map[string]string),
		hits:    make(map[string]int),
		failing: make(map[string]int),
	}
	s.setupRouter()
	return s
}

// Handler returns the HTTP handler, suitable for httptest.NewServer
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.faultMiddleware())

	s.router.GET("/health", s.healthCheck)

	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/register", s.register)

	api := s.router.Group("/api")
	api.Use(s.bearerAuthMiddleware())
	{
		api.GET("/auth/me", s.getCurrentMember)

		members := api.Group("/members")
		{
			members.PUT("/profile", s.updateProfile)
			members.PUT("/password", s.changePassword)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		key := c.Request.Method + " " + c.Request.URL.Path

		s.mu.Lock()
		s.hits[key]++
		s.mu.Unlock()

		c.Next()

		s.logger.Info().
			Str("request_id", c.GetHeader("X-Request-ID")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

// faultMiddleware answers with a forced status for routes registered via FailNext
func (s *Server) faultMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path

		s.mu.Lock()
		status, ok := s.failing[key]
		if ok {
			delete(s.failing, key)
		}
		s.mu.Unlock()

		if ok {
			c.AbortWithStatus(status)
			return
		}
		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "member-portal-api",
	})
}

// Hits returns how many requests reached method+path
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// FailNext makes the next request to method+path fail with status and an empty body
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[method+" "+path] = status
}
