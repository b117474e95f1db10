// Package server exposes traced exchanges over HTTP together with
// prometheus metrics of their phases.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/tracehttp/internal/config"
	tracehttp "github.com/wesleyorama2/tracehttp/internal/http"
	"github.com/wesleyorama2/tracehttp/internal/output"
)

const (
	maxPayloadBytes = 10 << 20
	shutdownTimeout = 5 * time.Second
)

// Options configure a Server.
type Options struct {
	Addr     string
	User     string
	Password string
	Logger   *logrus.Logger
}

// Server runs exchanges on behalf of HTTP callers.
type Server struct {
	opts     Options
	client   *tracehttp.Client
	registry *prometheus.Registry
	metrics  *Metrics
}

// New creates a server. A nil client gets a default one logging to
// opts.Logger.
func New(opts Options, client *tracehttp.Client) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}
	if client == nil {
		client = tracehttp.NewClient(tracehttp.WithLogger(opts.Logger))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &Server{
		opts:     opts,
		client:   client,
		registry: reg,
		metrics:  NewMetrics(reg),
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/request", s.authMiddleware(http.HandlerFunc(s.handleRequest)))
	mux.Handle("/metrics", s.authMiddleware(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Write([]byte("ok"))
	})
	return mux
}

// Run listens on opts.Addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("can't start HTTP listener: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.opts.Logger.Infof("Listening at http://%s", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleRequest(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.Header().Set("Allow", http.MethodPost)
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, output.NewErrorData(fmt.Errorf("error reading payload: %w", err)))
		return
	}
	file, err := config.ParseRequestFile(data, config.FormatJSON)
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, output.NewErrorData(fmt.Errorf("error parsing payload: %w", err)))
		return
	}
	if errs := config.ValidateTimeout(file.Timeout); len(errs) > 0 {
		writeJSON(rw, http.StatusBadRequest, output.NewErrorData(fmt.Errorf("invalid payload: %w", errs)))
		return
	}

	spec := file.Resolve(nil)
	log := s.opts.Logger.WithFields(logrus.Fields{
		"method": tracehttp.ResolveMethod(spec.Method),
		"url":    spec.URL,
		"remote": r.RemoteAddr,
	})

	s.metrics.inflight.Inc()
	resp, err := s.client.Do(r.Context(), spec, file.Timeout)
	s.metrics.inflight.Dec()

	if err != nil {
		s.metrics.ObserveError(err)
		log.WithError(err).Warn("exchange failed")
		writeJSON(rw, errorStatus(err), output.NewErrorData(err))
		return
	}

	s.metrics.ObserveResponse(resp)
	log.WithFields(logrus.Fields{
		"status": resp.Status,
		"total":  resp.Stats.Total,
	}).Info("exchange done")
	writeJSON(rw, http.StatusOK, resp)
}

// errorStatus maps input errors to 400 and everything after the request
// left to 502.
func errorStatus(err error) int {
	switch tracehttp.KindOf(err) {
	case tracehttp.KindURL, tracehttp.KindHeader:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(v)
}
