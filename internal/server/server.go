package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"energia/internal/config"
	"energia/internal/logging"
	"energia/internal/pipeline"
	"energia/internal/store"
	"energia/internal/types"
)

// maxProxyImageBytes caps how much image data the proxy endpoint inlines.
const maxProxyImageBytes = 20 << 20

// Server exposes the meditation pipeline and persistence gateway over HTTP.
type Server struct {
	pipeline *pipeline.Pipeline
	gateway  *store.Gateway
	fetcher  *http.Client
	httpSrv  *http.Server
}

// New builds the server. fetcher is used by the image proxy endpoint; nil
// uses a default client.
func New(cfg config.ServerConfig, p *pipeline.Pipeline, gw *store.Gateway, fetcher *http.Client) *Server {
	if fetcher == nil {
		fetcher = &http.Client{Timeout: 20 * time.Second}
	}
	s := &Server{pipeline: p, gateway: gw, fetcher: fetcher}
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
	}
	return s
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/photos", s.handleGenerate)
	mux.HandleFunc("GET /api/meditations/{id}", s.handleGetMeditation)
	mux.HandleFunc("GET /api/firestore/meditations/{userId}", s.handleListMeditations)
	mux.HandleFunc("POST /api/firestore/meditations", s.handleSaveMeditation)
	mux.HandleFunc("POST /api/firestore/imageUploads", s.handleTrackUpload)
	mux.HandleFunc("PATCH /api/firestore/imageUploads/{id}", s.handleUpdateAnalysis)
	mux.HandleFunc("GET /api/uploads/{userId}", s.handleRecentUploads)
	mux.HandleFunc("GET /api/proxy/image", s.handleProxyImage)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Server("shutting down")
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// generateRequest is the POST /api/photos body. photoUrl and imageUrl are
// accepted interchangeably.
type generateRequest struct {
	PhotoURL string `json:"photoUrl"`
	ImageURL string `json:"imageUrl"`
	UserID   string `json:"userId"`
	Style    string `json:"style"`
	Theme    string `json:"theme"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

type generateResponse struct {
	MeditationID    string                 `json:"meditationId"`
	UploadID        string                 `json:"uploadId,omitempty"`
	GeminiGuidance  string                 `json:"geminiGuidance"`
	Analysis        types.AnalysisRecord   `json:"analysisData"`
	Meditation      types.MeditationRecord `json:"meditation"`
	NarrativeSource string                 `json:"narrativeSource"`
	Status          string                 `json:"status"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	imageURL := req.PhotoURL
	if imageURL == "" {
		imageURL = req.ImageURL
	}
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, "photoUrl is required")
		return
	}

	res, err := s.pipeline.Run(r.Context(), pipeline.Request{
		ImageURL: imageURL,
		UserID:   req.UserID,
		Style:    req.Style,
		Theme:    req.Theme,
		FileName: req.FileName,
		FileType: req.FileType,
		FileSize: req.FileSize,
	})
	if err != nil {
		logging.ServerError("generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "meditation generation failed")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		MeditationID:    res.MeditationID,
		UploadID:        res.UploadID,
		GeminiGuidance:  res.Meditation.GeminiGuidance,
		Analysis:        res.Analysis,
		Meditation:      res.Meditation,
		NarrativeSource: res.NarrativeSource,
		Status:          res.Status,
	})
}

func (s *Server) handleGetMeditation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.gateway.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListMeditations(w http.ResponseWriter, r *http.Request) {
	records, err := s.gateway.ListForUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		logging.ServerError("list meditations failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list meditations")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSaveMeditation(w http.ResponseWriter, r *http.Request) {
	var rec types.MeditationRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := s.gateway.Save(r.Context(), rec)
	if err != nil {
		logging.ServerError("save meditation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save meditation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleTrackUpload(w http.ResponseWriter, r *http.Request) {
	var rec types.UploadRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := s.gateway.TrackUpload(r.Context(), rec)
	if err != nil {
		logging.ServerError("track upload failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to track upload")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// analysisUpdateRequest is the PATCH body linking an upload to its analysis.
type analysisUpdateRequest struct {
	MeditationID string               `json:"meditationId"`
	AnalysisData types.AnalysisRecord `json:"analysisData"`
}

func (s *Server) handleUpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.gateway.UpdateAnalysis(r.Context(), r.PathValue("id"), req.MeditationID, req.AnalysisData); err != nil {
		logging.ServerError("update analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update analysis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecentUploads(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	records, err := s.gateway.RecentUploads(r.Context(), r.PathValue("userId"), limit)
	if err != nil {
		logging.ServerError("recent uploads failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleProxyImage fetches a remote image server-side and returns it as a
// data URL, sidestepping client-side cross-origin limits on photo hosts.
func (s *Server) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		logging.ServerError("image proxy fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch image")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("image fetch returned status %d", resp.StatusCode))
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyImageBytes))
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadGateway, "failed to read image")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"dataUrl": fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus probes remote connectivity, draining the offline queue when
// the remote store answers.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateway.CheckConnection(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ServerError("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
