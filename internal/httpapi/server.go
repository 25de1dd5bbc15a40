// Package httpapi serves the concert catalog, an iCalendar feed and the
// cron-triggered aggregation endpoint.
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pfrederiksen/concert-events/internal/calendar"
	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/filter"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/metrics"
	"github.com/pfrederiksen/concert-events/internal/pipeline"
	"github.com/pfrederiksen/concert-events/internal/storage"
)

const calendarName = "NYC Concerts"

// Catalog reads stored listings. Get returns an error wrapping
// storage.ErrNotFound for unknown ids.
type Catalog interface {
	List(ctx context.Context, f *filter.Filter) ([]*event.Canonical, error)
	Get(ctx context.Context, id string) (*event.Canonical, error)
}

// Aggregator runs one aggregation
type Aggregator interface {
	Run(ctx context.Context, dryRun bool) (*pipeline.Report, error)
}

type Options struct {
	Addr            string
	CronSecret      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	catalog    Catalog
	aggregator Aggregator
	metrics    *metrics.Metrics
	opts       Options
	now        func() time.Time
	echo       *echo.Echo

	// one aggregation at a time
	running sync.Mutex
}

type sourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type aggregateResponse struct {
	Success   bool                    `json:"success"`
	Timestamp time.Time               `json:"timestamp"`
	Sources   []sourceCount           `json:"sources"`
	Total     int                     `json:"total"`
	New       int                     `json:"new"`
	Errors    []*pipeline.SourceError `json:"errors,omitempty"`
}

// NewServer creates a server. m may be nil, in which case /metrics is not served.
func NewServer(catalog Catalog, aggregator Aggregator, m *metrics.Metrics, opts Options) *Server {
	if strings.TrimSpace(opts.Addr) == "" {
		opts.Addr = ":8080"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// aggregation runs inside the request
		opts.WriteTimeout = 5 * time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		catalog:    catalog,
		aggregator: aggregator,
		metrics:    m,
		opts:       opts,
		now:        time.Now,
	}
	s.echo = s.routes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := logger.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}
			if v.Error != nil {
				logger.Error("http request failed", fields, v.Error)
				return nil
			}
			logger.Debug("http request", fields)
			return nil
		},
	}))

	e.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	api := e.Group("/api")
	api.GET("/concerts", s.handleConcerts)
	api.GET("/concerts.ics", s.handleCalendar)
	api.GET("/concerts/:id", s.handleConcert)
	api.GET("/concerts/:id/ics", s.handleConcertCalendar)
	api.Match([]string{http.MethodGet, http.MethodPost}, "/cron/aggregate", s.handleAggregate)

	return e
}

// Start serves until ctx is canceled
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.echo,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", nil, err)
		}
	}()

	logger.Info("HTTP server started", logger.Fields{"addr": s.opts.Addr})
	if err := s.echo.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("starting server: %w", err)
	}
	logger.Info("HTTP server stopped", nil)
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok && strings.TrimSpace(m) != "" {
			message = m
		} else if text := http.StatusText(status); text != "" {
			message = text
		}
	}

	_ = c.JSON(status, map[string]string{"error": message})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   s.now().UTC(),
	})
}

// catalogFilter builds a filter from from, to, maxPrice (cents), tags
// (comma-separated) and venue. from defaults to today.
func (s *Server) catalogFilter(c echo.Context) (*filter.Filter, error) {
	f := filter.NewFilter()

	from := c.QueryParam("from")
	if from == "" {
		from = s.now().Format("2006-01-02")
	}
	day, err := filter.ParseDay(from)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid from: %v", err))
	}
	f.DateFrom = day

	if to := c.QueryParam("to"); to != "" {
		day, err := filter.ParseDay(to)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid to: %v", err))
		}
		f.DateTo = day
	}

	if raw := c.QueryParam("maxPrice"); raw != "" {
		cents, err := strconv.Atoi(raw)
		if err != nil || cents < 0 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "maxPrice must be a non-negative number of cents")
		}
		f.MaxPriceCents = &cents
	}

	f.Tags = filter.ParseTags(c.QueryParam("tags"))
	if venue := strings.TrimSpace(c.QueryParam("venue")); venue != "" {
		f.Venues = []string{venue}
	}
	return f, nil
}

func (s *Server) listConcerts(c echo.Context) ([]*event.Canonical, error) {
	f, err := s.catalogFilter(c)
	if err != nil {
		return nil, err
	}
	concerts, err := s.catalog.List(c.Request().Context(), f)
	if err != nil {
		logger.Error("Listing concerts failed", logger.Fields{"filter": f.String()}, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load concerts")
	}
	return concerts, nil
}

func (s *Server) handleConcerts(c echo.Context) error {
	concerts, err := s.listConcerts(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, concerts)
}

func (s *Server) handleCalendar(c echo.Context) error {
	concerts, err := s.listConcerts(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="concerts.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.GenerateBulkICS(concerts, calendarName)))
}

func (s *Server) getConcert(c echo.Context) (*event.Canonical, error) {
	concert, err := s.catalog.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Concert not found")
	}
	if err != nil {
		logger.Error("Loading concert failed", logger.Fields{"id": c.Param("id")}, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load concert")
	}
	return concert, nil
}

func (s *Server) handleConcert(c echo.Context) error {
	concert, err := s.getConcert(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, concert)
}

func (s *Server) handleConcertCalendar(c echo.Context) error {
	concert, err := s.getConcert(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="concert-%s.ics"`, concert.ID))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.GenerateICS(concert)))
}

func (s *Server) authorized(c echo.Context) bool {
	if s.opts.CronSecret == "" {
		return true
	}
	want := "Bearer " + s.opts.CronSecret
	got := c.Request().Header.Get(echo.HeaderAuthorization)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (s *Server) handleAggregate(c echo.Context) error {
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	if s.aggregator == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Aggregation is not configured")
	}
	if !s.running.TryLock() {
		return echo.NewHTTPError(http.StatusConflict, "Aggregation already running")
	}
	defer s.running.Unlock()

	report, err := s.aggregator.Run(c.Request().Context(), false)
	if err != nil {
		logger.Error("Aggregation failed", nil, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Aggregation failed")
	}

	resp := aggregateResponse{
		Success:   true,
		Timestamp: s.now().UTC(),
		Sources:   make([]sourceCount, 0, len(report.Sources)),
		Total:     report.Total,
		New:       report.New,
		Errors:    report.Errors,
	}
	for _, src := range report.Sources {
		resp.Sources = append(resp.Sources, sourceCount{Name: src.Name, Count: src.Count})
	}
	return c.JSON(http.StatusOK, resp)
}
