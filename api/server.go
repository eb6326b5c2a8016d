// Package api serves the finance operations over HTTP so a UI host can
// call them by name.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rustyeddy/finance/internal/logging"
	"github.com/rustyeddy/finance/service"
)

const maxArgs = 1 << 20

// Invoker runs a named operation. *service.Service implements it.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// Response wraps every reply. Exactly one of Data and Error is meaningful.
type Response struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type Server struct {
	Router  *chi.Mux
	invoker Invoker
	logger  *logging.Logger
}

func NewServer(invoker Invoker, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewSilent()
	}
	s := &Server{
		Router:  chi.NewRouter(),
		invoker: invoker,
		logger:  logger,
	}
	s.InitRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.Recoverer)

	s.Router.Get("/alive", s.alive)
	s.Router.Get("/commands", s.commands)
	s.Router.Post("/invoke/{command}", s.invoke)
}

func NewHTTPServer(addr string, server *Server) *http.Server {
	return &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// quote batches are sequential and rate limited
		WriteTimeout: 5 * time.Minute,
		Handler:      server,
	}
}

func (s *Server) alive(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, Response{OK: true, Data: "alive"}, http.StatusOK)
}

func (s *Server) commands(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, Response{OK: true, Data: service.Commands()}, http.StatusOK)
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	if service.IsUnknownCommand(name) {
		s.respond(w, r, Response{Error: "unknown command " + `"` + name + `"`}, http.StatusNotFound)
		return
	}

	args, err := io.ReadAll(io.LimitReader(r.Body, maxArgs))
	if err != nil {
		s.respond(w, r, Response{Error: err.Error()}, http.StatusBadRequest)
		return
	}

	data, err := s.invoker.Invoke(r.Context(), name, args)
	if err != nil {
		s.logger.Debug().Str("command", name).Err(err).Msg("invoke failed")
		s.respond(w, r, Response{Error: err.Error()}, http.StatusBadRequest)
		return
	}
	s.respond(w, r, Response{OK: true, Data: data}, http.StatusOK)
}

func (s *Server) respond(w http.ResponseWriter, _ *http.Request, data any, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}
