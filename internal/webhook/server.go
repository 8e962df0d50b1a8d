// Package webhook runs the receiver for monitor deliveries: CatchAll posts
// each scheduled run's results here, and the server renders and persists them
// as reports.
package webhook

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newscatcherapi/catchall-go/catchall"
	"github.com/newscatcherapi/catchall-go/internal/report"
)

var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catchall_webhook_deliveries_total",
	Help: "Monitor webhook deliveries received, by outcome.",
}, []string{"outcome"})

// Server receives monitor deliveries and persists them.
type Server struct {
	echo   *echo.Echo
	store  *report.Store
	logger *log.Logger
}

// New builds the server around a report store.
func New(store *report.Store) *Server {
	s := &Server{
		store:  store,
		logger: log.New(log.Writer(), "[WEBHOOK] ", log.LstdFlags),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/webhooks/catchall", s.handleDelivery)

	s.echo = e
	return s
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Printf("listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleDelivery(c echo.Context) error {
	var page catchall.PullResponse
	if err := c.Bind(&page); err != nil {
		deliveries.WithLabelValues("malformed").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "malformed delivery payload")
	}
	if page.JobID == "" {
		deliveries.WithLabelValues("malformed").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "delivery has no job_id")
	}

	title := page.Query
	if title == "" {
		title = "monitor " + page.JobID
	}
	path, err := s.store.Save(report.Report{
		Title:    title,
		Query:    page.Query,
		Markdown: report.FormatPage(&page),
		Data:     &page,
	})
	if err != nil {
		deliveries.WithLabelValues("error").Inc()
		return fmt.Errorf("persist delivery: %w", err)
	}
	deliveries.WithLabelValues("ok").Inc()
	s.logger.Printf("delivery for %s: %d record(s), saved %s", page.JobID, page.Count(), path)

	return c.JSON(http.StatusOK, map[string]any{"saved": path, "records": page.Count()})
}
