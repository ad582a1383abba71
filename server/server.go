// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the resolution service over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/regionfund/geocoding"
	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/regions"
	"github.com/jcodagnone/regionfund/resolution"
	"github.com/rs/cors"
)

// Error messages of the HTTP surface.
const (
	msgInternal          = "Internal server error"
	msgRegionsLoadFailed = "Failed to load region data"
	msgRegionsMissing    = "Region data unavailable"
	msgNotFound          = "Endpoint not found"
)

const shutdownTimeout = 5 * time.Second

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string

	// StaticDir is served at "/" when set; "/" maps to its index.html.
	StaticDir string

	Metrics *metrics.Collector
}

// Server routes HTTP requests to the resolution service.
type Server struct {
	service   *resolution.Service
	index     *regions.Index
	metrics   *metrics.Collector
	addr      string
	staticDir string
}

// NewServer creates a server. index may be nil, in which case /api/regions
// reports the failure.
func NewServer(service *resolution.Service, index *regions.Index, options Options) *Server {
	return &Server{
		service:   service,
		index:     index,
		metrics:   options.Metrics,
		addr:      options.Addr,
		staticDir: options.StaticDir,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), s.observe, gin.CustomRecovery(s.handlePanic))

	r.GET("/api/regions", s.getRegions)
	r.POST("/api/geocode", s.geocode)
	r.GET("/api/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	if s.staticDir != "" {
		r.GET("/", s.home)
	}

	r.NoRoute(s.fallback)

	return r
}

// Handler is the router wrapped with CORS handling for every origin.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         900, // 15 mins
	})

	return c.Handler(s.Router())
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// four sequential geocoding attempts fit comfortably
		WriteTimeout: 60 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		log.Printf("Listening on %s", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) observe(ctx *gin.Context) {
	ctx.Next()
	s.metrics.ObserveHTTPRequest(ctx.FullPath(), ctx.Writer.Status())
}

func (s *Server) handlePanic(ctx *gin.Context, err any) {
	log.Printf("Panic serving %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
}

func (s *Server) getRegions(ctx *gin.Context) {
	if s.index == nil {
		log.Println("Error loading regions: no region index")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": msgRegionsLoadFailed})

		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", s.index.Document())
}

func (s *Server) geocode(ctx *gin.Context) {
	var req resolution.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": resolution.MsgLocationRequired})

		return
	}

	result, err := s.service.Handle(ctx.Request.Context(), req)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, result)
}

// fail maps service errors onto HTTP responses. Internal details are only
// logged.
func (s *Server) fail(ctx *gin.Context, err error) {
	var (
		invalid      *resolution.InvalidInputError
		unresolvable *geocoding.UnresolvableError
	)

	switch {
	case errors.As(err, &invalid):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
	case errors.As(err, &unresolvable):
		log.Printf("Unresolvable location %s", unresolvable.Diagnostic())
		ctx.JSON(http.StatusBadRequest, gin.H{"error": unresolvable.Error()})
	case errors.Is(err, regions.ErrUnavailable):
		log.Printf("Geocoding endpoint error: %v", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": msgRegionsMissing})
	default:
		log.Printf("Geocoding endpoint error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "ontario-map-api"})
}

func (s *Server) home(ctx *gin.Context) {
	ctx.File(path.Join(s.staticDir, "index.html"))
}

// fallback serves static files; anything else, including unknown /api
// paths, is a JSON 404.
func (s *Server) fallback(ctx *gin.Context) {
	name := path.Clean("/" + ctx.Request.URL.Path)

	if s.staticDir != "" && ctx.Request.Method == http.MethodGet && !strings.HasPrefix(name, "/api/") {
		dir := http.Dir(s.staticDir)
		if f, err := dir.Open(name); err == nil {
			info, statErr := f.Stat()
			f.Close()

			if statErr == nil && !info.IsDir() {
				ctx.FileFromFS(name, dir)

				return
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Opening static file %s: %v", name, err)
		}
	}

	ctx.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
}
