package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	incidentsport "alertaUtec/internal/modules/incidents/application/port"
	incidentsuc "alertaUtec/internal/modules/incidents/application/usecase"
	incidentsinfra "alertaUtec/internal/modules/incidents/infrastructure"
	incidentshttp "alertaUtec/internal/modules/incidents/interface"
	notifyinfra "alertaUtec/internal/modules/notifications/infrastructure"
	"alertaUtec/internal/modules/realtime/application/usecase"
	"alertaUtec/internal/modules/realtime/infrastructure"
	transport "alertaUtec/internal/modules/realtime/interface"

	"alertaUtec/internal/config"
	"alertaUtec/internal/platform/metrics"
	"alertaUtec/internal/platform/postgres"
	"alertaUtec/internal/platform/redis"
	"alertaUtec/internal/shared/auth"
	"alertaUtec/internal/shared/httputil"
	"alertaUtec/internal/shared/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, _, err := logging.Setup(cfg.Logging.Directory, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	if err := run(cfg); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	promRegistry := metrics.NewRegistry()
	realtimeMetrics := metrics.NewRealtime(promRegistry)
	clock := clockwork.NewRealClock()

	// Connection registry
	rdb, err := redis.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	registry := infrastructure.NewRedisRegistry(rdb, cfg.Redis.ConnectionsKey)
	liveness := infrastructure.NewRedisNodeLiveness(rdb, cfg.Redis.NodesPrefix, cfg.Redis.NodeTTL, clock)
	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		liveness.Run(heartbeatCtx, cfg.Server.NodeID)
	}()
	defer func() {
		stopHeartbeat()
		<-heartbeatDone
	}()

	// Delivery: local sockets through the hub, sockets on other nodes over their management API
	hub := infrastructure.NewHub(realtimeMetrics)
	channel := infrastructure.NewRoutingChannel(
		cfg.Server.NodeID,
		infrastructure.NewLocalChannel(hub),
		infrastructure.NewHTTPChannel(cfg.Broadcast.HTTPTimeout, cfg.Security.InternalToken, nil),
	).WithLiveness(liveness)
	broadcastUC := usecase.NewBroadcastUseCase(registry, channel, realtimeMetrics, usecase.BroadcastOptions{
		MaxConcurrency: cfg.Broadcast.MaxConcurrency,
		SendTimeout:    cfg.Broadcast.SendTimeout,
	})
	connectionUC := usecase.NewConnectionUseCase(registry, clock, cfg.Server.NodeID, cfg.Server.PublicEndpoint)

	// Incident store
	var store incidentsport.IncidentStore
	if cfg.Database.URL != "" {
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		store = incidentsinfra.NewPostgresStore(pool)
		slog.Info("incident store: postgres")
	} else {
		store = incidentsinfra.NewMemoryStore()
		slog.Warn("incident store: in-memory, DATABASE_URL not set")
	}

	publisher := notifyinfra.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.IncidentsTopic)
	defer publisher.Close()
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.IncidentsTopic), slog.Bool("enabled", publisher.Enabled()))

	// JWT validator guarding staff-only routes; nil when no key is configured
	var validator auth.TokenValidator
	if cfg.AuthEnabled() {
		v, err := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
		if err != nil {
			return fmt.Errorf("jwt validator: %w", err)
		}
		validator = v
	} else {
		slog.Warn("staff authentication disabled: JWT_SECRET and JWT_PUBLIC_KEY are empty")
	}

	mapper := httputil.NewErrorMapper()
	incidentHandlers := incidentshttp.NewHandlers(
		incidentsuc.NewCreateIncidentUseCase(store, broadcastUC, publisher, clock),
		incidentsuc.NewGetIncidentUseCase(store),
		incidentsuc.NewListIncidentsUseCase(store),
		incidentsuc.NewUpdateStatusUseCase(store, broadcastUC, clock, cfg.Incidents.StrictTransitions),
		mapper,
	)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	createLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.Incidents.CreateRatePerSec),
			Burst:     cfg.Incidents.CreateRateBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, httputil.ErrorEnvelope{Message: "Demasiadas solicitudes, intenta más tarde", Kind: "bad_input"})
		},
	})
	incidentHandlers.Register(e, createLimiter, auth.RequireRoles(validator, cfg.Security.StaffRoles))

	e.GET("/ws", transport.NewWebsocketHandler(hub, connectionUC))
	e.POST("/notify", transport.NewNotifyHTTPHandler(broadcastUC, mapper))
	if cfg.Security.InternalToken == "" {
		slog.Warn("INTERNAL_API_TOKEN not set: /@connections refuses every request, cross-node delivery is off")
	}
	transport.RegisterConnectionRoutes(e, hub, auth.RequireInternalToken(cfg.Security.InternalToken))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(promRegistry)))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "node": cfg.Server.NodeID, "connections": hub.Count()})
	})

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("port", cfg.Server.Port), slog.String("node", cfg.Server.NodeID))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// closing sockets fires their disconnect hooks, which unregister them while Redis is still up
	hub.CloseAll()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
	return nil
}
