// Package stubserver is a local development backend implementing the
// endpoints the monitor client consumes: login, check-in, submission
// history and result submission. It exists so the client can be
// exercised end to end without the production backend.
package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tallysentry/internal/backend"
)

// ServerConfig holds the stub server's listen configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the stub backend HTTP server
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	store      *Store
	logger     *zap.Logger

	// now is swappable so tests get deterministic timestamps
	now func() time.Time
}

// NewServer creates a stub backend server over the given store
func NewServer(config ServerConfig, store *Store, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		config: config,
		router: router,
		store:  store,
		logger: logger,
		now:    time.Now,
	}

	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	router.GET("/health", s.handleHealth)
	router.POST("/login", s.handleLogin)
	router.POST("/checkin", s.handleCheckIn)
	router.GET("/submissions/:monitorId", s.handleSubmissions)
	router.POST("/submit-results", s.handleSubmitResults)

	return s
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// Start runs the server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting stub backend", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("Stub backend stopped")
	return nil
}

// Router returns the underlying gin router (for tests)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func message(text string) gin.H {
	return gin.H{"message": text}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type loginRequest struct {
	MonitorID string `json:"monitorId"`
	Password  string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MonitorID == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, message("Monitor ID and password are required."))
		return
	}

	ok, err := s.store.Authenticate(c.Request.Context(), req.MonitorID, req.Password)
	if err != nil {
		s.logger.Error("Authentication lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, message("Internal server error."))
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, message("Invalid monitor ID or password."))
		return
	}

	c.JSON(http.StatusOK, message("Login successful."))
}

type checkInRequest struct {
	MonitorID string `json:"monitorId"`
}

func (s *Server) handleCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MonitorID == "" {
		c.JSON(http.StatusBadRequest, message("Monitor ID is required."))
		return
	}

	exists, err := s.store.MonitorExists(c.Request.Context(), req.MonitorID)
	if err != nil {
		s.logger.Error("Monitor lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, message("Internal server error."))
		return
	}
	if !exists {
		c.JSON(http.StatusUnauthorized, message("Unknown monitor."))
		return
	}

	at := s.now()
	if err := s.store.RecordCheckIn(c.Request.Context(), req.MonitorID, at); err != nil {
		s.logger.Error("Failed to record check-in", zap.Error(err))
		c.JSON(http.StatusInternalServerError, message("Internal server error."))
		return
	}

	c.JSON(http.StatusOK, message(fmt.Sprintf("Check-in recorded at %s.", at.UTC().Format("15:04 MST"))))
}

func (s *Server) handleSubmissions(c *gin.Context) {
	monitorID := c.Param("monitorId")

	records, err := s.store.ListSubmissions(c.Request.Context(), monitorID)
	if err != nil {
		s.logger.Error("Failed to list submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, message("Internal server error."))
		return
	}

	c.JSON(http.StatusOK, records)
}

// submitRequest mirrors the client's submit payload
type submitRequest struct {
	SubmissionID       *string `json:"submissionId"`
	MonitorID          string  `json:"monitorId"`
	RegisteredVoters   string  `json:"registeredVoters"`
	NullifiedVotes     string  `json:"nullifiedVotes"`
	InvalidVotes       string  `json:"invalidVotes"`
	PresidentialVotes  string  `json:"presidentialVotes"`
	PresidentialImage  *string `json:"presidentialImage"`
	ParliamentaryVotes string  `json:"parliamentaryVotes"`
	ParliamentaryImage *string `json:"parliamentaryImage"`
	LocalGovVotes      string  `json:"localGovVotes"`
	LocalGovImage      *string `json:"localGovImage"`
}

func (r *submitRequest) toBackendRequest() backend.SubmitRequest {
	return backend.SubmitRequest{
		SubmissionID:       r.SubmissionID,
		MonitorID:          r.MonitorID,
		RegisteredVoters:   r.RegisteredVoters,
		NullifiedVotes:     r.NullifiedVotes,
		InvalidVotes:       r.InvalidVotes,
		PresidentialVotes:  r.PresidentialVotes,
		PresidentialImage:  r.PresidentialImage,
		ParliamentaryVotes: r.ParliamentaryVotes,
		ParliamentaryImage: r.ParliamentaryImage,
		LocalGovVotes:      r.LocalGovVotes,
		LocalGovImage:      r.LocalGovImage,
	}
}

func (r *submitRequest) valid() bool {
	return r.MonitorID != "" &&
		r.PresidentialVotes != "" &&
		r.ParliamentaryVotes != "" &&
		r.LocalGovVotes != "" &&
		r.PresidentialImage != nil && *r.PresidentialImage != "" &&
		r.ParliamentaryImage != nil && *r.ParliamentaryImage != "" &&
		r.LocalGovImage != nil && *r.LocalGovImage != ""
}

func (s *Server) handleSubmitResults(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, message("Invalid data"))
		return
	}

	ctx := c.Request.Context()
	stored := req.toBackendRequest()

	if req.SubmissionID == nil {
		id := uuid.NewString()
		if err := s.store.CreateSubmission(ctx, id, s.now(), stored); err != nil {
			s.logger.Error("Failed to create submission", zap.Error(err))
			c.JSON(http.StatusInternalServerError, message("Internal server error."))
			return
		}
		c.JSON(http.StatusOK, message("Results submitted successfully."))
		return
	}

	err := s.store.UpdateSubmission(ctx, *req.SubmissionID, stored)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, message("Submission not found."))
	case errors.Is(err, ErrVerified):
		c.JSON(http.StatusConflict, message("Verified submissions cannot be edited."))
	case err != nil:
		s.logger.Error("Failed to update submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, message("Internal server error."))
	default:
		c.JSON(http.StatusOK, message("Results updated successfully."))
	}
}
