// Package server serves symbol documents over HTTP at /data/{symbol}.json,
// the layout HTTPFetcher reads from.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stock-replay/internal/catalog"
	"github.com/rxtech-lab/stock-replay/internal/logger"
	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// DataPrefix is the path below which documents are served.
const DataPrefix = "/data"

// DataServer serves the documents of a Fetcher.
type DataServer struct {
	fetcher    catalog.Fetcher
	log        *logger.Logger
	httpServer *http.Server
	listener   net.Listener
}

type errorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// NewDataServer creates a server for fetcher. A nil log discards entries.
func NewDataServer(fetcher catalog.Fetcher, log *logger.Logger) *DataServer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &DataServer{
		fetcher: fetcher,
		log:     log,
	}
}

// Handler returns the router of the server.
func (s *DataServer) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc(DataPrefix+"/{symbol}.json", s.handleDocument).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrCodeSymbolNotFound, "no such document: "+r.URL.Path)
	})

	return router
}

// Start listens on address and serves in the background.
// If address is empty or ":0", a random available port is used.
func (s *DataServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.log.Info("Serving data", zap.String("address", listener.Addr().String()))

	return nil
}

// Stop shuts the server down, waiting up to five seconds for in-flight requests.
func (s *DataServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *DataServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the URL HTTPFetcher should use for this server.
func (s *DataServer) BaseURL() string {
	return "http://" + s.Address() + DataPrefix
}

func (s *DataServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	data, err := s.fetcher.Fetch(r.Context(), symbol)
	if err != nil {
		code := errors.GetCode(err)
		status := http.StatusInternalServerError

		if code == errors.ErrCodeSymbolNotFound {
			status = http.StatusNotFound
		}

		s.log.Debug("Document unavailable", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, status, code, err.Error())

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func (s *DataServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, code errors.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}
