// Package web serves the timesheet entry form, the CSV download and a small
// JSON API on top of the timesheet service.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tiliavir/simple-timesheet/internal/model"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	tracerName        = "github.com/Tiliavir/simple-timesheet/internal/web"
)

// Timesheet is the service the handlers delegate to.
type Timesheet interface {
	AddEntry(user string, date civil.Date, project, description string, hours float64) (model.Entry, error)
	GetAllEntries() []model.Entry
	GenerateCsvOutput() string
}

// Config configures a Server.
type Config struct {
	Addr string
	// Location decides which date the entry form offers as today. Nil means time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Server is the HTTP front end of the timesheet.
type Server struct {
	router     *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
	timesheet  Timesheet
	tracer     trace.Tracer
	loc        *time.Location
	now        func() time.Time
	addr       string
}

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewServer builds a Server around ts.
func NewServer(ts Timesheet, cfg Config) *Server {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	s := &Server{
		router:    http.NewServeMux(),
		timesheet: ts,
		tracer:    tp.Tracer(tracerName),
		loc:       cfg.Location,
		now:       cfg.Now,
		addr:      cfg.Addr,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.routes()
	s.handler = s.instrument(s.router)
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)

	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("POST /entries", s.handleAddEntryForm)
	s.router.HandleFunc("GET /timesheet.csv", s.handleCSV)

	s.router.HandleFunc("GET /api/entries", s.handleListEntries)
	s.router.HandleFunc("POST /api/entries", s.handleCreateEntry)
}

// ServeHTTP makes Server an http.Handler, including request logging and tracing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("timesheet listening on %s", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeJSONError returns an error response in JSON form.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message, Code: statusCode}, statusCode)
}
