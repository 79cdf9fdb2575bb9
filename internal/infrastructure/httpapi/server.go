package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"InsightsDashboard/internal/chart"
	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/infrastructure/render"
	"InsightsDashboard/internal/ports"
	"InsightsDashboard/internal/query"
	"InsightsDashboard/internal/usecase"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// modeParam selects the aggregation variant on the chart endpoints.
const modeParam = "mode"

// ServerOptions configures the HTTP surface.
type ServerOptions struct {
	Repository ports.RecordRepository
	Builder    *query.Builder
	Layout     domain.Layout
	Mode       domain.AggregationMode
	RateLimit  float64 // requests per second; zero disables limiting
	RateBurst  int
	Logger     *slog.Logger
}

// Server exposes the record repository the way the dashboard consumes it.
type Server struct {
	repo    ports.RecordRepository
	options *usecase.Fetcher
	builder *query.Builder
	layout  domain.Layout
	mode    domain.AggregationMode
	limiter *rate.Limiter
	logger  *slog.Logger
	handler http.Handler
}

// NewServer builds the handler tree.
func NewServer(opts ServerOptions) *Server {
	builder := opts.Builder
	if builder == nil {
		builder = query.NewBuilder(nil)
	}
	layout := opts.Layout
	if layout.Width == 0 || layout.Height == 0 {
		layout = domain.DefaultLayout()
	}
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModePerRecord
	}

	s := &Server{
		repo:    opts.Repository,
		options: usecase.NewFetcher(opts.Repository, opts.Logger),
		builder: builder,
		layout:  layout,
		mode:    mode,
		logger:  opts.Logger,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = int(opts.RateLimit)
			if burst < 1 {
				burst = 1
			}
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /api/chart.svg", s.handleChartSVG)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = s.withRequestID(s.withAccessLog(s.withCORS(s.withRateLimit(mux))))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve runs an http.Server on addr until ctx is done, then shuts it down gracefully.
func (s *Server) Serve(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	predicate := s.builder.Build(query.ParseValues(r.URL.Query(), modeParam))

	records, err := usecase.Query(r.Context(), s.repo, predicate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if err := s.options.Prime(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.options.Options())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view, ok := s.chartView(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	view, ok := s.chartView(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, render.FormatSVG, view.Result, view.Layout); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) chartView(w http.ResponseWriter, r *http.Request) (domain.ChartView, bool) {
	mode := s.mode
	if raw := r.URL.Query().Get(modeParam); raw != "" {
		parsed, err := chart.ParseMode(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return domain.ChartView{}, false
		}
		mode = parsed
	}

	predicate := s.builder.Build(query.ParseValues(r.URL.Query(), modeParam))
	records, err := usecase.Query(r.Context(), s.repo, predicate)
	if err != nil {
		s.fail(w, r, err)
		return domain.ChartView{}, false
	}

	result, err := chart.AggregateBy(records, mode)
	if err != nil {
		s.fail(w, r, err)
		return domain.ChartView{}, false
	}
	return chart.View(result, s.layout), true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.warn("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "error", err)
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		s.warn("encode response", "error", err)
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func (s *Server) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Server) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// requestIDFrom keeps a caller supplied id and mints one otherwise.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}
