package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	otellib "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	servermiddleware "github.com/aixcyberchallenge/data-form/cmd/server/internal/middleware"
	"github.com/aixcyberchallenge/data-form/cmd/server/internal/ratelimit"
	"github.com/aixcyberchallenge/data-form/cmd/server/internal/routes/data"
	"github.com/aixcyberchallenge/data-form/internal/config"
	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/otel"
	"github.com/aixcyberchallenge/data-form/internal/queue"
	"github.com/aixcyberchallenge/data-form/internal/routes"
	"github.com/aixcyberchallenge/data-form/internal/upload"
)

const (
	name        string = "github.com/aixcyberchallenge/data-form/server"
	serviceName string = "dataform-server"
	redisPort   string = "6379"
)

var tracer = otellib.Tracer(name)

type server struct {
	router       *echo.Echo
	config       *config.Config
	redis        *redis.Client
	otelShutdown func(context.Context) error
}

func newStore(storage *config.StorageConfig) (upload.Uploader, error) {
	switch storage.Backend {
	case "azure":
		az := storage.Azure
		return upload.NewAzureUploader(az.Name, az.Key, az.BlobURL, az.Container)
	default:
		s3 := storage.S3
		return upload.NewMinioUploader(
			s3.Endpoint,
			s3.AccessKeyID,
			s3.SecretAccessKey,
			!s3.DisableSSL,
			s3.BucketName,
		)
	}
}

func newNotifier(cfg *config.ServerConfig) (queue.Queuer, error) {
	if cfg.Notifications == nil || !cfg.Notifications.Enabled {
		return nil, nil
	}

	az := cfg.Storage.Azure
	if az == nil {
		return nil, errors.New("notifications need the server.storage.azure section")
	}

	return queue.NewAzureQueuer(az.Name, az.Key, az.QueueURL, az.Queue)
}

func redisAddr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, redisPort)
}

// buildRouter wires the data API. `rdb` may be nil when rate limiting is off.
func buildRouter(
	cfg *config.ServerConfig,
	store upload.Uploader,
	notifier queue.Queuer,
	rdb redis.Cmdable,
	now func() time.Time,
) *echo.Echo {
	e := routes.BuildEcho(logger.Logger, serviceName)
	e.Use(servermiddleware.Time(now))

	if rdb != nil && cfg.RateLimit != nil && cfg.RateLimit.PerMinute > 0 {
		e.Use(middleware.RateLimiterWithConfig(
			ratelimit.NewRedisLimiter(
				rdb,
				"data",
				cfg.RateLimit.PerMinute,
				cfg.RateLimit.FailOpen,
				http.MethodPost,
			),
		))
	}

	data.NewHandler(store, notifier).AddRoutes(e, cfg.AllowOrigins)

	return e
}

func initServer(ctx context.Context) (*server, error) {
	server := new(server)

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server config: %w", err)
	}
	if err = cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	server.config = cfg

	logger.SetLevel(cfg.Logging.App.Level)

	shutdownOTel, err := otel.SetupOTelSDK(ctx, serviceName, cfg.Logging.UseOTLP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTEL SDK: %w", err)
	}
	defer func() {
		// Something failed to initialize, make sure everything gets flushed to the server
		if server.otelShutdown == nil {
			otelShutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				time.Second*time.Duration(cfg.GracefulShutdownSecs),
			)
			defer cancel()

			if err = shutdownOTel(otelShutdownCtx); err != nil {
				logger.Logger.Error("failed to flush otel data", "error", err)
			}
		}
	}()

	_, span := tracer.Start(ctx, "initServer")
	defer span.End()

	store, err := newStore(cfg.Server.Storage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct store")
		return nil, fmt.Errorf("failed to construct store: %w", err)
	}

	span.AddEvent("initialized store")

	notifier, err := newNotifier(cfg.Server)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct notifier")
		return nil, fmt.Errorf("failed to construct notifier: %w", err)
	}

	if notifier != nil {
		span.AddEvent("initialized notifier")
	}

	var rdb redis.Cmdable
	if cfg.Server.RateLimit != nil && cfg.Server.RateLimit.PerMinute > 0 {
		addr := redisAddr(cfg.Server.RateLimit.RedisHost)
		logger.Logger.Debug("setting up rate limiter with redis", "redis", addr)
		server.redis = redis.NewClient(&redis.Options{Addr: addr})
		rdb = server.redis

		span.AddEvent("initialized redis client")
	}

	server.router = buildRouter(cfg.Server, upload.NewRetryUploader(store), notifier, rdb, time.Now)

	span.AddEvent("created echo router")

	server.otelShutdown = shutdownOTel

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "initialized server")
	return server, nil
}

func (s *server) Start() error {
	logger.Logger.Info("starting data api", "address", s.config.Server.ListenAddress)

	err := s.router.Start(s.config.Server.ListenAddress)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *server) Shutdown() error {
	var errs error

	ctx, cancelTimeout := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(s.config.GracefulShutdownSecs),
	)
	defer cancelTimeout()

	if err := s.router.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if s.otelShutdown != nil {
		errs = errors.Join(errs, s.otelShutdown(ctx))
	}

	return errs
}

func main() {
	ctx, cancelSignal := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer cancelSignal()

	logger.InitSlog()

	server, err := initServer(ctx)
	if err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info("Got shutdown signal!")
		return server.Shutdown()
	})

	if err := g.Wait(); err != nil {
		logger.Logger.Error("server exited with error", "error", err)
		cancelSignal()
		os.Exit(1)
	}
}
