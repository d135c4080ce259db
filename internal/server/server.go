// Package server exposes a local directory through the file API that the
// include resolver's HTTP fetcher talks to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/example/pumlkit/internal/fetch"
	"github.com/go-logr/logr"
)

const maxRequestBytes = 64 << 10

type Server struct {
	addr string
	dir  fetch.Dir
	log  logr.Logger
}

func New(addr string, dir fetch.Dir, log logr.Logger) *Server {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":6806"
	}
	return &Server{addr: addr, dir: dir, log: log}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler returns the HTTP routes served by Run.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(fetch.GetFilePath, s.handleGetFile)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "ok")
	})
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("serving file API", "addr", s.addr, "root", s.dir.Root())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req fetch.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	content, err := s.dir.GetFile(r.Context(), req.Path)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, fetch.ErrOutsideRoot):
			status = http.StatusForbidden
		case errors.Is(err, fs.ErrNotExist):
			status = http.StatusNotFound
		case strings.TrimSpace(req.Path) == "":
			status = http.StatusBadRequest
		}
		s.log.V(1).Info("getFile failed", "path", req.Path, "status", status, "error", err.Error())
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, content)
}
