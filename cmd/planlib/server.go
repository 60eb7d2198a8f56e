package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type serverOption func(*server)

func withAddr(addr string) serverOption {
	return func(s *server) {
		s.addr = addr
	}
}

func withSource(src traceSource) serverOption {
	return func(s *server) {
		s.source = src
	}
}

// server serves saved traces as JSON.
type server struct {
	addr   string
	source traceSource
	mux    *http.ServeMux
}

func newServer(opts ...serverOption) *server {
	s := &server{
		addr: ":18900",
		mux:  http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/traces", s.handleListTraces)
	s.mux.HandleFunc("GET /api/traces/{id}", s.handleGetTrace)
	return s
}

func (s *server) handler() http.Handler {
	return s.mux
}

func (s *server) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return goerr.Wrap(err, "failed to listen", goerr.V("addr", s.addr))
	}
	slog.Info("starting trace server", slog.String("addr", listener.Addr().String()))

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return goerr.Wrap(err, "server error")
	}
	return nil
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type listTracesResponse struct {
	Traces        []traceSummary `json:"traces"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (s *server) handleListTraces(w http.ResponseWriter, r *http.Request) {
	pageSize := defaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size parameter")
			return
		}
		pageSize = n
	}

	resp, err := s.source.List(r.Context(), listRequest{
		pageSize:  pageSize,
		pageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		slog.Error("failed to list traces", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list traces")
		return
	}

	traces := resp.traces
	if traces == nil {
		traces = []traceSummary{}
	}
	writeJSON(w, http.StatusOK, listTracesResponse{
		Traces:        traces,
		NextPageToken: resp.nextPageToken,
	})
}

func (s *server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	traceID := r.PathValue("id")

	t, err := s.source.Get(r.Context(), traceID)
	if err != nil {
		slog.Error("failed to get trace", slog.Any("error", err), slog.String("traceID", traceID))
		writeError(w, http.StatusNotFound, "trace not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
