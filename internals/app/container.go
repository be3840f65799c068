package app

import (
	"context"
	"time"

	"apiwatch/config"
	middle "apiwatch/internals/middleware"
	"apiwatch/internals/modules/alert"
	"apiwatch/internals/modules/analytics"
	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/probe"
	"apiwatch/internals/modules/result"
	"apiwatch/internals/modules/scheduler"
	"apiwatch/internals/modules/user"
	"apiwatch/internals/modules/worker"
	"apiwatch/internals/security"
	"apiwatch/pkg/httpclient"
	"apiwatch/pkg/mailer"
	"apiwatch/pkg/rabbitmq"
	"apiwatch/pkg/redisstore"
	"apiwatch/pkg/report"
	"apiwatch/pkg/retry"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type Container struct {
	DB          *pgxpool.Pool
	RedisClient *redisstore.Client
	Logger      *zerolog.Logger
	Scheduler   *scheduler.Scheduler

	amqpConn  *amqp091.Connection
	publisher *rabbitmq.Publisher

	authMW           *middle.AuthMiddleware
	userHandler      *user.Handler
	monitorHandler   *monitor.Handler
	alertHandler     *alert.Handler
	analyticsHandler *analytics.Handler
}

func NewContainer(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, logger *zerolog.Logger) (*Container, error) {
	dbRetry := retry.Policy{
		Attempts: cfg.Worker.DBRetryAttempts,
		Delay:    cfg.Worker.DBRetryDelay,
	}

	validator := validator.New()

	userRepo := user.NewRepository(db, dbRetry, logger)
	monitorRepo := monitor.NewRepository(db, dbRetry, logger)
	resultRepo := result.NewRepository(db, dbRetry, logger)
	alertRepo := alert.NewRepository(db, dbRetry, logger)

	// status cache is optional, everything degrades to DB-only when absent
	var redisClient *redisstore.Client
	var statusCache monitor.StatusCache
	var workerCache worker.StatusCache
	if cfg.Redis != nil && cfg.Redis.Addr != "" {
		rc, err := redisstore.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		redisClient = rc
		statusCache = rc
		workerCache = rc
	}

	// alert-event fan-out is optional as well
	var amqpConn *amqp091.Connection
	var publisher *rabbitmq.Publisher
	var eventPublisher alert.EventPublisher
	if cfg.AMQP != nil && cfg.AMQP.URL != "" {
		conn, err := rabbitmq.NewConnection(cfg.AMQP, logger)
		if err != nil {
			return nil, err
		}
		if err := rabbitmq.SetupTopology(conn, cfg.AMQP); err != nil {
			conn.Close()
			return nil, err
		}
		pub, err := rabbitmq.NewPublisher(conn, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			conn.Close()
			return nil, err
		}
		amqpConn = conn
		publisher = pub
		eventPublisher = pub
	}

	tokenSvc := security.NewTokenService(cfg.Auth)
	authMW := middle.NewAuthMiddleware(tokenSvc)

	userSvc := user.NewService(userRepo, tokenSvc)
	monitorSvc := monitor.NewService(monitorRepo, statusCache)
	analyticsSvc := analytics.NewService(monitorRepo, resultRepo)

	dispatcher := alert.NewDispatcher(
		userRepo,
		mailer.New(cfg.SMTP),
		report.NewGenerator(cfg.Worker.ReportDir),
		alertRepo,
		monitorRepo,
		eventPublisher,
		logger,
	)

	prober := probe.NewProber(httpclient.NewHttpClient(), cfg.Worker.ProbeTimeout)
	limiter := worker.NewLimiter(cfg.Worker.Concurrency, logger)
	pollWorker := worker.New(
		monitorRepo,
		resultRepo,
		prober,
		dispatcher,
		workerCache,
		limiter,
		cfg.Worker.Cooldown,
		time.Duration(cfg.Worker.RetentionDays)*24*time.Hour,
		logger,
	)

	sch := scheduler.New(
		pollWorker,
		db,
		cfg.Worker.PollInterval,
		cfg.Worker.CleanupInterval,
		dbRetry,
		logger,
	)

	return &Container{
		DB:               db,
		RedisClient:      redisClient,
		Logger:           logger,
		Scheduler:        sch,
		amqpConn:         amqpConn,
		publisher:        publisher,
		authMW:           authMW,
		userHandler:      user.NewHandler(userSvc, validator),
		monitorHandler:   monitor.NewHandler(monitorSvc, validator),
		alertHandler:     alert.NewHandler(alertRepo),
		analyticsHandler: analytics.NewHandler(analyticsSvc),
	}, nil
}

func (c *Container) Shutdown() error {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("failed to close amqp publisher")
		}
	}
	if c.amqpConn != nil {
		if err := c.amqpConn.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("failed to close amqp connection")
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	return nil
}
