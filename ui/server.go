// Package ui exposes the prediction pipeline over HTTP: a gin API server for
// uploads and result reads, plus a small chi operations endpoint.
package ui

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robertofernandezmartinez/ai-corporate-suite/app"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	apperrors "github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// Server represents the prediction API server
type Server struct {
	router   *gin.Engine
	pipeline *app.PipelineService
	registry *inference.Registry
	store    ports.PredictionStore
}

// NewServer creates a new API server instance
func NewServer(pipeline *app.PipelineService, registry *inference.Registry, store ports.PredictionStore) *Server {
	s := &Server{
		router:   gin.Default(),
		pipeline: pipeline,
		registry: registry,
		store:    store,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/:domain/upload", s.handleUpload)
	api.GET("/predictions/:domain/recent", s.handleRecent)
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	log.Printf("Starting prediction API on http://%s", addr)
	return s.router.Run(addr)
}

// handleIndex lists the available prediction domains.
func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "ai-corporate-suite",
		"domains": s.pipeline.Domains(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload runs one dataset through the scoring pipeline. A failed
// pipeline still answers with the structured summary; only an unknown domain
// or a missing file is a plain request error.
func (s *Server) handleUpload(c *gin.Context) {
	domain := c.Param("domain")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, apperrors.InvalidInput("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	summary, err := s.pipeline.Process(c.Request.Context(), domain, file, header.Filename)
	if err != nil {
		if errors.Is(err, core.ErrUnknownDomain) {
			respondError(c, http.StatusNotFound, apperrors.NotFound("domain "+domain))
			return
		}
		respondError(c, http.StatusServiceUnavailable, apperrors.InternalError(err.Error()))
		return
	}

	status := http.StatusOK
	if !summary.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, summary)
}

// handleRecent returns the latest stored predictions for a domain.
func (s *Server) handleRecent(c *gin.Context) {
	domain := c.Param("domain")
	d, ok := s.registry.Lookup(domain)
	if !ok {
		respondError(c, http.StatusNotFound, apperrors.NotFound("domain "+domain))
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	rows, err := s.store.Recent(c.Request.Context(), d.Table, limit)
	if err != nil {
		log.Printf("[Recent] Query failed for %s: %v", d.Table, err)
		respondError(c, http.StatusInternalServerError, apperrors.DatabaseError("failed to load recent predictions"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domain":      domain,
		"count":       len(rows),
		"predictions": presentRows(rows),
	})
}

// respondError renders a structured error with its taxonomy code.
func respondError(c *gin.Context, status int, err error) {
	code := apperrors.CodeInternalError
	if apperrors.IsAppError(err) {
		code = apperrors.GetCode(err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// presentRows makes scanned rows JSON-friendly; pq hands text columns back as
// byte slices.
func presentRows(rows []map[string]any) []map[string]any {
	for _, row := range rows {
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
	}
	return rows
}
