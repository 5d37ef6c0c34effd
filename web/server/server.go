package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
	"github.com/df07/go-mesh-pathtracer/pkg/renderer"
	"github.com/df07/go-mesh-pathtracer/pkg/scene"
)

// errUnknownScene is returned for scene IDs that are neither built in nor
// listed in the scenes directory
var errUnknownScene = errors.New("unknown scene")

const (
	defaultScene = "cornell"
	maxWidth     = 800
	maxSamples   = 1024
	maxBounces   = 16
	maxWorkers   = 64
)

// Server serves renders and pixel inspection over HTTP
type Server struct {
	port      int
	scenesDir string
	logger    *zap.Logger
	renders   *atomic.Uint64
	mux       *http.ServeMux
}

// NewServer creates a new web server. Only OBJ files listed in scenesDir may
// be rendered besides the built-in scenes.
func NewServer(port int, scenesDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		port:      port,
		scenesDir: scenesDir,
		logger:    logger,
		renders:   atomic.NewUint64(0),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the request router wrapped with access logging
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(s.mux, w, r)
		s.logger.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("elapsed", m.Duration))
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting web server", zap.String("addr", "http://localhost"+httpServer.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists every scene ID accepted by the render and inspect endpoints
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		s.logger.Error("Listing scenes failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// RenderRequest holds the query parameters shared by render and inspect
type RenderRequest struct {
	Scene   string // Scene ID from /api/scenes
	Width   int    // Image width override, recentered on the scene's view; 0 keeps it
	Samples int    // Samples per pixel
	Bounces int    // Maximum bounces
	Workers int    // Parallel column workers
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (RenderRequest, error) {
	req := RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxWidth); err != nil {
		return RenderRequest{}, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 4, 1, maxSamples); err != nil {
		return RenderRequest{}, err
	}
	if req.Bounces, err = parseIntParam(values, "bounces", 4, 0, maxBounces); err != nil {
		return RenderRequest{}, err
	}
	defaultWorkers := runtime.NumCPU()
	if defaultWorkers > maxWorkers {
		defaultWorkers = maxWorkers
	}
	if req.Workers, err = parseIntParam(values, "workers", defaultWorkers, 1, maxWorkers); err != nil {
		return RenderRequest{}, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// newRenderer builds a renderer for the request with its scene installed
func (s *Server) newRenderer(req RenderRequest, logger core.Logger) (*renderer.Renderer, error) {
	config := renderer.DefaultConfig()
	builtin, view, isBuiltin := scene.Builtin(req.Scene)
	if isBuiltin {
		config.ApplyViewpoint(view)
	}
	if req.Width > 0 {
		config.ResizeViewport(req.Width)
	}
	config.SamplesPerPixel = req.Samples
	config.MaxBounces = req.Bounces
	config.Workers = req.Workers

	r, err := renderer.New(config, logger)
	if err != nil {
		return nil, err
	}

	if isBuiltin {
		return r, r.SetScene(builtin)
	}
	path, err := s.objScenePath(req.Scene)
	if err != nil {
		return nil, err
	}
	return r, r.LoadScene(path)
}

// objScenePath resolves a scene ID against the scenes directory listing
func (s *Server) objScenePath(id string) (string, error) {
	scenes, err := scene.ListOBJScenes(s.scenesDir)
	if err != nil {
		return "", err
	}
	for _, info := range scenes {
		if info.ID == id {
			return info.FilePath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errUnknownScene, id)
}

// nextRenderID numbers requests for log correlation
func (s *Server) nextRenderID() string {
	return fmt.Sprintf("render-%d", s.renders.Inc())
}

// statusFor maps renderer setup errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnknownScene):
		return http.StatusNotFound
	case errors.Is(err, renderer.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
