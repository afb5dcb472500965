package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
	"kalaghar.in/lokakala/internal/persist"
	"kalaghar.in/lokakala/internal/translation"
	"kalaghar.in/lokakala/internal/vision"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Resolver is the translation resolution the handlers depend on.
type Resolver interface {
	Resolve(ctx context.Context, english string, requested []language.Code, opts translation.ResolveOptions) (translation.Result, error)
}

// Persister schedules deferred record writes.
type Persister interface {
	Enqueue(req persist.SaveRequest) error
}

// RecordLister serves the history listing.
type RecordLister interface {
	List(ctx context.Context, offset, limit int) ([]db.Artwork, error)
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type Server struct {
	describer vision.Describer
	resolver  Resolver
	persister Persister
	records   RecordLister
	logger    zerolog.Logger
	opts      Options
}

func NewServer(
	describer vision.Describer,
	resolver Resolver,
	persister Persister,
	records RecordLister,
	logger zerolog.Logger,
	opts Options,
) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8080
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 120 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return &Server{
		describer: describer,
		resolver:  resolver,
		persister: persister,
		records:   records,
		logger:    logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  allowedOrigins,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.describer == nil || s.resolver == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("lokakala api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("lokakala api server stopped")
	return nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/", s.handleHome)
	e.GET("/healthz", s.handleHealth)
	e.POST("/generate/", s.handleGenerate)
	e.POST("/generate/history", s.handleGenerateHistory)
	e.GET("/history/", s.handleHistory)

	return e
}

func (s *Server) handleHome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Lokakala Tribal Arts API running",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "lokakala",
		"time":    time.Now().UTC(),
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	skip, err := parseBoundedInt(c.QueryParam("skip"), 0, 0, 1_000_000_000)
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, kindInvalidParameter,
			"Invalid skip parameter", map[string]any{"skip": err.Error()})
	}
	limit, err := parseBoundedInt(c.QueryParam("limit"), defaultHistoryLimit, 1, maxHistoryLimit)
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, kindInvalidParameter,
			"Invalid limit parameter", map[string]any{"limit": err.Error()})
	}

	rows, err := s.records.List(c.Request().Context(), skip, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query history failed")
		return internalError(c, "Failed to load history")
	}

	items := make([]historyItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, newHistoryItem(row))
	}
	return c.JSON(http.StatusOK, items)
}

type historyItem struct {
	ID       int64   `json:"id"`
	ArtName  string  `json:"art_name"`
	ArtStyle string  `json:"art_style"`
	Region   string  `json:"region"`
	Question *string `json:"question"`
	English  string  `json:"english"`
	Hindi    *string `json:"hindi"`
	Marathi  *string `json:"marathi"`
	Bengali  *string `json:"bengali"`
	Tamil    *string `json:"tamil"`
	Telugu   *string `json:"telugu"`
}

func newHistoryItem(row db.Artwork) historyItem {
	return historyItem{
		ID:       row.ID,
		ArtName:  row.ArtName,
		ArtStyle: row.ArtStyle,
		Region:   row.Region,
		Question: row.Question,
		English:  row.English,
		Hindi:    row.Hindi,
		Marathi:  row.Marathi,
		Bengali:  row.Bengali,
		Tamil:    row.Tamil,
		Telugu:   row.Telugu,
	}
}

func parseBoundedInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
