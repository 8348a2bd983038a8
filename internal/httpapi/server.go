// Package httpapi exposes redline's preview and apply operations over HTTP
// for editor integrations.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/skovand/redline/internal/batch"
	"github.com/skovand/redline/internal/edit"
	"github.com/skovand/redline/internal/preview"
	"github.com/skovand/redline/internal/workspace"
)

// BatchStore persists applied batches. Implementations must be safe for
// concurrent use.
type BatchStore interface {
	SaveBatch(ctx context.Context, root string, results []batch.Result) (string, error)
}

// Server serves the redline HTTP API.
type Server struct {
	root     string
	previews *preview.Previewer
	coord    *batch.Coordinator
	files    batch.FileService
	store    BatchStore
	logger   *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer wires the API around the given collaborators. A nil store
// disables history recording.
func NewServer(root string, files batch.FileService, cmds batch.CommandService, store BatchStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		root:     root,
		previews: preview.NewPreviewer(files),
		coord:    batch.NewCoordinator(files, cmds, logger),
		files:    files,
		store:    store,
		logger:   logger,
	}
}

// Start starts the HTTP server on the given address. Use port 0 for a random
// available port. It returns the full address (e.g., "http://127.0.0.1:8787")
// once the server is ready. The server shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context, address string) (string, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return "", fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler: s.logRequests(s.routes()),
	}

	boundAddress := fmt.Sprintf("http://%s", listener.Addr().String())

	// Start serving in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Handle graceful shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx) //nolint:contextcheck // Using Background() is correct for graceful shutdown since parent ctx is cancelled
	}()

	return boundAddress, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/file", s.handleFile)
	mux.HandleFunc("/api/tree", s.handleTree)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/api/apply", s.handleApply)
	return mux
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type fileBody struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "missing path parameter")
			return
		}
		content, err := s.files.Read(r.Context(), path)
		if err != nil {
			if errors.Is(err, batch.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, fileBody{Path: path, Content: content})
	case http.MethodPost:
		var body fileBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		if err := s.files.Write(r.Context(), body.Path, body.Content); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": body.Path})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	node, err := workspace.Tree(s.root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actions, ok := s.decodeActions(w, r)
	if !ok {
		return
	}
	previews, err := s.previews.PreviewAll(r.Context(), actions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"previews": previews})
}

type applyResponse struct {
	BatchID string         `json:"batch_id,omitempty"`
	Results []batch.Result `json:"results"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actions, ok := s.decodeActions(w, r)
	if !ok {
		return
	}

	results := s.coord.Apply(r.Context(), actions)

	resp := applyResponse{Results: results}
	if s.store != nil {
		id, err := s.store.SaveBatch(r.Context(), s.root, results)
		if err != nil {
			// The batch already ran; losing the history row must not
			// turn a successful apply into an error response.
			s.logger.Warn("failed to record batch history", slog.String("error", err.Error()))
		} else {
			resp.BatchID = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeActions reads the request body as a wire-format action batch. On
// failure it writes the error response and returns ok=false.
func (s *Server) decodeActions(w http.ResponseWriter, r *http.Request) ([]edit.Action, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	actions, err := edit.DecodeActions(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return actions, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
