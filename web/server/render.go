package server

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// handleRender renders the requested scene and replies with a PNG.
// A client disconnect cancels the render through the request context.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	renderID := s.nextRenderID()
	log := s.logger.With(zap.String("render", renderID), zap.String("scene", req.Scene))

	rt, err := s.newRenderer(req, newRenderLogger(s.logger, renderID))
	if err != nil {
		log.Warn("Render setup failed", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	buffer, stats, err := rt.RenderContext(r.Context())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info("Render cancelled by client", zap.Error(err))
		return
	}
	if err != nil {
		log.Error("Render failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var body bytes.Buffer
	if err := png.Encode(&body, buffer.ToRGBA()); err != nil {
		log.Error("PNG encoding failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-ID", renderID)
	w.Header().Set("X-Render-Rays", strconv.Itoa(stats.RaysTraced))
	w.Header().Set("X-Render-Elapsed-Ms", strconv.FormatInt(stats.Elapsed.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body.Bytes()); err != nil {
		log.Warn("Writing response failed", zap.Error(err))
	}
}
