package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ItIsYeBananaduck/git-fit/internal/buffer"
	"github.com/ItIsYeBananaduck/git-fit/internal/config"
	"github.com/ItIsYeBananaduck/git-fit/internal/db"
	"github.com/ItIsYeBananaduck/git-fit/internal/healthmetrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/middleware"
	"github.com/ItIsYeBananaduck/git-fit/internal/scheduler"
	"github.com/ItIsYeBananaduck/git-fit/internal/syncer"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/metrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
	"github.com/ItIsYeBananaduck/git-fit/internal/weekly"
	"github.com/ItIsYeBananaduck/git-fit/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	appSecret         string // shared with the mobile client
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	sessionBuffer *buffer.Buffer
	batchRepo     *weekly.Repo
	triggerRepo   *weekly.TriggerRepo
	summaryCache  *weekly.SummaryCache
	processor     *weekly.Processor
	coordinator   *syncer.Coordinator
	weeklySched   *scheduler.Scheduler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	cancelBackground context.CancelFunc
}

type NewServerParams struct {
	Config                  *config.Config
	AppSecret               string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		// offline-first: the buffer keeps accepting sessions regardless
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": "git_fit_db"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("gitfit", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "git-fit-backend")
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	location, err := time.LoadLocation(params.Config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", params.Config.Timezone, err)
	}

	sessionBuffer, err := buffer.Open(params.Config.BufferPath)
	if err != nil {
		return nil, fmt.Errorf("open session buffer: %w", err)
	}

	batchRepo := weekly.NewRepo(dbPool)
	triggerRepo := weekly.NewTriggerRepo(dbPool)
	summaryCache := weekly.NewSummaryCache(rdb)

	processor := weekly.NewProcessor(
		batchRepo,
		sessionBuffer,
		summaryCache,
		healthmetrics.NewHTTPCollector(params.Config.HealthMetricsBaseURL, tracedHttpClient),
		metricsManager,
		location,
	)

	coordinator := syncer.NewCoordinator(
		batchRepo,
		triggerRepo,
		processor,
		sessionBuffer,
		metricsManager,
		time.Duration(params.Config.TriggerPollSeconds)*time.Second,
	)

	weeklySched := scheduler.New(
		processor,
		sessionBuffer,
		location,
		params.Config.WeeklyCronSpec,
	)

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		appSecret:   params.AppSecret,
		versionInfo: params.VersionInfo,
		redisClient: rdb,

		sessionBuffer: sessionBuffer,
		batchRepo:     batchRepo,
		triggerRepo:   triggerRepo,
		summaryCache:  summaryCache,
		processor:     processor,
		coordinator:   coordinator,
		weeklySched:   weeklySched,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks")
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	weeklyHandler := weekly.NewHandler(
		s.sessionBuffer,
		s.summaryCache,
		s.processor,
		s.coordinator.Connected,
	)

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	sessionsRouter := r.PathPrefix("/weekly/{userId}/sessions").Subrouter()
	sessionsRouter.Use(middleware.RateLimit(
		reqRateLimiter,
		"weekly-sessions",
		s.config.SubmitRateLimitAllowedPerMin,
		s.metricsManager,
	))
	sessionsRouter.HandleFunc("", weeklyHandler.HandleAddSession).
		Methods("POST", "OPTIONS").Name("new-session")
	sessionsRouter.HandleFunc("/{sessionId}/feedback", weeklyHandler.HandleAttachFeedback).
		Methods("POST", "OPTIONS").Name("attach-feedback")

	r.HandleFunc("/weekly/{userId}/summary", weeklyHandler.HandleGetSummary).
		Methods("GET", "OPTIONS").Name("get-summary")
	r.HandleFunc("/weekly/{userId}/sync/status", weeklyHandler.HandleSyncStatus).
		Methods("GET", "OPTIONS").Name("sync-status")
	r.HandleFunc("/weekly/{userId}/process", weeklyHandler.HandleProcessNow).
		Methods("POST", "OPTIONS").Name("process-now")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.appSecret)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	backgroundCtx, cancel := context.WithCancel(context.Background())
	s.cancelBackground = cancel
	go s.coordinator.Start(backgroundCtx)
	if err := s.weeklySched.Start(backgroundCtx); err != nil {
		log.Fatalf("failed to start weekly scheduler: %s", err)
	}
	go s.watchPendingSessions(backgroundCtx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// watchPendingSessions keeps the pending sessions gauge fresh.
func (s *Server) watchPendingSessions(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			users, err := s.sessionBuffer.Users()
			if err != nil {
				log.Errorf("pending sessions gauge, list users: %s", err)
				continue
			}
			var total int
			for _, userID := range users {
				count, err := s.sessionBuffer.PendingCount(userID)
				if err != nil {
					log.Errorf("pending sessions gauge for %s: %s", userID, err)
					continue
				}
				total += count
			}
			s.metricsManager.GaugePendingSessions.Set(float64(total))
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.cancelBackground != nil {
		s.cancelBackground()
	}
	s.weeklySched.Stop()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.sessionBuffer != nil {
		if err := s.sessionBuffer.Close(); err != nil {
			log.Errorf("failed to close session buffer: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
