package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/score-predictor/external/fixturefeed"
	"github.com/riskibarqy/score-predictor/internal/config"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/auth"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/score-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/score-predictor/internal/platform/cache"
	idgen "github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/platform/resilience"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

// NewHTTPServer builds the API server. The returned cleanup releases the
// database pool and must run after the server stops.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	units, cleanup, err := newUnitOfWorkFactory(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	verifier, err := auth.NewJWTVerifier(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build jwt verifier: %w", err)
	}

	var leaderboardCache *cache.Store
	if cfg.CacheEnabled {
		leaderboardCache = cache.NewStore(cfg.CacheTTL)
	}

	ids := idgen.NewUUIDGenerator()
	feed := fixturefeed.NewClient(fixturefeed.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.FixtureFeedTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxPages:   cfg.FixtureFeedMaxPages,
		MaxRetries: cfg.FixtureFeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.BreakerSettings{
			Enabled:          cfg.FixtureFeedCircuitEnabled,
			FailureThreshold: cfg.FixtureFeedCircuitFailureCount,
			OpenTimeout:      cfg.FixtureFeedCircuitOpenTimeout,
			HalfOpenProbes:   cfg.FixtureFeedCircuitHalfOpenMax,
		},
	})

	leaderboardSvc := usecase.NewLeaderboardService(units, leaderboardCache, cfg.LeagueRefreshWorkers, logger)
	fixtureSvc := usecase.NewFixtureService(units)
	predictionSvc := usecase.NewPredictionService(units, ids, leaderboardSvc, logger)
	leagueSvc := usecase.NewLeagueService(units, ids, idgen.NewInviteCodeGenerator(), leaderboardSvc, logger)
	syncSvc := usecase.NewFixtureSyncService(feed, units, ids, cfg.FixtureFeedURL, leaderboardSvc, logger)

	handler := httpapi.NewHandler(fixtureSvc, predictionSvc, leagueSvc, leaderboardSvc, syncSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.InternalJobToken)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, cleanup, nil
}

// newUnitOfWorkFactory opens Postgres when DB_URL is set and falls back to
// a seeded in-memory store otherwise.
func newUnitOfWorkFactory(ctx context.Context, cfg config.Config, logger *logging.Logger) (uow.Factory, func(), error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL not set, using in-memory store")
		return memory.NewSeededStore(memory.SeedFixtures(time.Now())), func() {}, nil
	}

	dbName := dbNameFromURL(cfg.DBURL)
	db, err := otelsqlx.Open("postgres", NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbName),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database failed", "error", err)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ping database %q: %w", dbName, err)
	}

	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(ctx, db, memory.SeedFixtures(time.Now())); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	logger.Info("database connected", "db_name", dbName)
	return postgres.NewUnitOfWorkFactory(db), cleanup, nil
}
