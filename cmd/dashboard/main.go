package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/price-alerts-dashboard/internal/config"
	"github.com/iyhunko/price-alerts-dashboard/internal/dashboard"
	httpAPI "github.com/iyhunko/price-alerts-dashboard/internal/http"
	"github.com/iyhunko/price-alerts-dashboard/internal/http/controller"
	"github.com/iyhunko/price-alerts-dashboard/internal/logger"
	"github.com/iyhunko/price-alerts-dashboard/internal/metrics"
	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"github.com/iyhunko/price-alerts-dashboard/internal/offline"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository/sql"
	"github.com/iyhunko/price-alerts-dashboard/internal/session"
	sqspkg "github.com/iyhunko/price-alerts-dashboard/internal/sqs"
	"github.com/iyhunko/price-alerts-dashboard/internal/view"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	productRepository := sql.NewProductRepository(db)
	historyRepository := sql.NewPriceHistoryRepository(db)
	subscriptionRepository := sql.NewSubscriptionRepository(db)

	store := newSessionStore(ctx, conf)
	dashboardConf := dashboard.Config{
		HistoryLimit: conf.Dashboard.HistoryLimit,
		FetchTimeout: conf.Dashboard.FetchTimeout,
	}
	registry, err := dashboard.NewRegistry(dashboard.DefaultRegistrySize, store, func() *dashboard.Root {
		return dashboard.NewRoot(productRepository, historyRepository, dashboardConf)
	})
	handleErr("creating session registry", err)

	// Web Push is optional; without keys notifications are shown by the page only
	var broadcaster *notify.Broadcaster
	if conf.PushEnabled() {
		sender := notify.NewWebPushSender(conf.Push.VAPIDPublicKey, conf.Push.VAPIDPrivateKey, conf.Push.Subscriber)
		broadcaster = notify.NewBroadcaster(subscriptionRepository, sender)
	} else {
		slog.Warn("web push disabled", slog.String("missing", config.VAPIDPublicKeyEnv))
	}

	if conf.RelayEnabled() {
		startRelay(ctx, conf, broadcaster)
	}

	renderer, err := view.NewRenderer()
	handleErr("parsing templates", err)
	assets, err := controller.NewAssetController(offline.DefaultConfig(conf.Dashboard.CacheVersion))
	handleErr("rendering background script", err)

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAPI.InitRouter(gin.New(), conf.Redis.SessionTTL, httpAPI.Controllers{
		General:      controller.New(db),
		Dashboard:    controller.NewDashboardController(registry, renderer, conf.Push.VAPIDPublicKey),
		Products:     controller.NewProductController(productRepository, historyRepository, dashboardConf),
		Notification: controller.NewNotificationController(registry, renderer, subscriptionRepository, broadcaster, conf.Push.VAPIDPublicKey),
		Assets:       assets,
	})

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("dashboard server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	<-ctx.Done()
	slog.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop HTTP server", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop metrics server", slog.Any("err", err))
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("failed to close session store", slog.Any("err", err))
		}
	}
}

// newSessionStore returns the Redis store when configured, else an in-memory one.
func newSessionStore(ctx context.Context, conf *config.Config) session.Store {
	if conf.Redis.Addr != "" {
		store, err := session.NewRedisStore(ctx, conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB, conf.Redis.SessionTTL)
		handleErr("connecting to redis", err)
		return store
	}
	slog.Warn("session preferences kept in memory", slog.String("missing", config.RedisAddrEnv))
	store, err := session.NewMemoryStore(session.DefaultMemorySize)
	handleErr("creating session store", err)
	return store
}

func startRelay(ctx context.Context, conf *config.Config, broadcaster *notify.Broadcaster) {
	if broadcaster == nil {
		slog.Warn("price alert relay disabled: web push is not configured")
		return
	}
	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
	handleErr("creating SQS client", err)

	consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL, broadcaster)
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("price alert relay stopped", slog.Any("err", err))
		}
	}()
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
