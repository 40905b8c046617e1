package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	alarmapp "monitoring-console/internal/alarms/application"
	alarmhttp "monitoring-console/internal/alarms/interfaces/http"
	apihttp "monitoring-console/internal/api/http"
	"monitoring-console/internal/audit"
	"monitoring-console/internal/auth"
	"monitoring-console/internal/charts"
	"monitoring-console/internal/config"
	dashboardapp "monitoring-console/internal/dashboard/application"
	layoutapp "monitoring-console/internal/layouts/application"
	layouthttp "monitoring-console/internal/layouts/interfaces/http"
	"monitoring-console/internal/observability/metrics"
	"monitoring-console/internal/refresh"
	"monitoring-console/internal/remote"
	reportapp "monitoring-console/internal/reports/application"
	reportinterfaces "monitoring-console/internal/reports/interfaces"
	ruleapp "monitoring-console/internal/rules/application"
	rulehttp "monitoring-console/internal/rules/interfaces/http"
	"monitoring-console/internal/store"
	"monitoring-console/internal/viewstate"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config error")
	}
	logger := newLogger(cfg)

	var db *sql.DB
	var auditLogger audit.Logger
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db open error")
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatal().Err(err).Msg("db ping error")
		}
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("audit schema error")
		}
		auditLogger = auditRepo
	} else {
		logger.Warn().Msg("DATABASE_URL not set, audit log disabled")
	}
	metrics.Init(db, logger)

	clientOpts := []remote.Option{
		remote.WithTimeout(cfg.BackendTimeout),
		remote.WithToken(cfg.BackendToken),
		remote.WithLogger(logger),
	}
	if cfg.RedisAddr != "" {
		redisClient, err := remote.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis error")
		}
		defer redisClient.Close()
		cache, err := remote.NewRedisCache(redisClient)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis cache error")
		}
		clientOpts = append(clientOpts, remote.WithCache(cache, cfg.SummaryCacheTTL))
	}
	client, err := remote.NewClient(cfg.BackendBaseURL, clientOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("backend client error")
	}

	broker := alarmhttp.NewSSEBroker()
	hub := store.NewHub(metrics.SliceObserver{}, broker, store.ObserverFunc(func(t store.Transition) {
		if t.Kind == store.KindRejected {
			logger.Warn().Str("slice", t.Slice).Str("track", t.Track).Str("error", t.Error).Msg("slice rejected")
			return
		}
		logger.Debug().Str("slice", t.Slice).Str("track", t.Track).Str("kind", string(t.Kind)).Uint64("seq", t.Seq).Msg("slice transition")
	}))

	alarmService, err := alarmapp.NewService(client, hub, alarmapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("alarms service error")
	}
	ruleService, err := ruleapp.NewService(client, hub, ruleapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("rules service error")
	}
	layoutService, err := layoutapp.NewService(client, hub, layoutapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("layouts service error")
	}
	dashboardService, err := dashboardapp.NewService(client, hub, dashboardapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("dashboard service error")
	}
	manualReports, err := reportapp.NewManualService(client, hub, reportapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("manual reports service error")
	}
	automatedReports, err := reportapp.NewAutomatedService(client, hub, reportapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("automated reports service error")
	}
	scheduledReports, err := reportapp.NewScheduledService(client, hub, reportapp.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduled reports service error")
	}

	deriver := charts.NewDeriver(
		charts.WithUnits(charts.DefaultUnits().Merge(cfg.File.Units)),
		charts.WithLocation(cfg.Location),
	)

	alarmHandler, err := alarmhttp.NewHandler(alarmService, auditLogger, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("alarms handler error")
	}
	ruleHandler, err := rulehttp.NewHandler(ruleService, client, auditLogger, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("rules handler error")
	}
	layoutHandler, err := layouthttp.NewHandler(layoutService, auditLogger, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("layouts handler error")
	}
	reportHandler, err := reportinterfaces.NewReportHandler(manualReports, automatedReports, scheduledReports, deriver, auditLogger, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("reports handler error")
	}
	viewStateHandler := apihttp.NewViewStateHandler(viewstate.NewStore(cfg.File.ViewState.SmallBreakpoint))

	scheduler := refresh.NewScheduler(refresh.WithLogger(logger), refresh.WithTimeout(cfg.BackendTimeout*3))
	jobs := []struct {
		name string
		spec string
		job  refresh.Job
	}{
		{"dashboard", cfg.File.Refresh.Dashboard, refresh.DashboardJob(dashboardService)},
		{"alarms", cfg.File.Refresh.Alarms, refresh.AlarmsJob(alarmService)},
		{"schedules", cfg.File.Refresh.Schedules, refresh.SchedulesJob(scheduledReports)},
	}
	for _, j := range jobs {
		if err := scheduler.Add(j.name, j.spec, j.job); err != nil {
			logger.Fatal().Err(err).Str("job", j.name).Msg("refresh schedule error")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy, logger).AllowQueryToken("/api/v1/alarms/stream")
	if authMiddleware == nil {
		logger.Warn().Msg("JWT secret not set, auth disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/alarms/stream", alarmhttp.NewStreamHandler(broker))
	mux.Handle("/api/v1/alarms", alarmHandler)
	mux.Handle("/api/v1/alarms/", alarmHandler)
	mux.Handle("/api/v1/rules", ruleHandler)
	mux.Handle("/api/v1/rules/", ruleHandler)
	mux.Handle("/api/v1/layouts", layoutHandler)
	mux.Handle("/api/v1/layouts/", layoutHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/api/v1/dashboard", apihttp.NewDashboardHandler(dashboardService))
	mux.Handle("/api/v1/charts/derive", apihttp.NewDeriveHandler(deriver, logger))
	mux.Handle("/api/v1/view-state", viewStateHandler)
	mux.Handle("/api/v1/view-state/", viewStateHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := corsMiddleware(authMiddleware.Wrap(mux), cfg.File.CORSOrigins)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown error")
		}
	}()

	// Warm the dashboard so the first GET is served from state.
	go dashboardService.FetchAll(ctx)

	logger.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendBaseURL).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server error")
	}
	logger.Info().Msg("http stopped")
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "monitoring-console").Logger()
}

func loggingMiddleware(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set("X-Request-ID", requestID)
		}
		w.Header().Set("X-Request-ID", requestID)
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", resp.status).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the alarm stream working behind the middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func corsMiddleware(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	_, wildcard := allowed["*"]
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || wildcard {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
