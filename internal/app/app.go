// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/cart"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/checkout"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/notification"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/payment"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/wishlist"
	"github.com/Lizasatasiya/Zelie-web/internal/infrastructure/database/mongodb"
	"github.com/Lizasatasiya/Zelie-web/internal/infrastructure/database/postgres"
	redisdb "github.com/Lizasatasiya/Zelie-web/internal/infrastructure/database/redis"
	"github.com/Lizasatasiya/Zelie-web/internal/infrastructure/messaging"
	"github.com/Lizasatasiya/Zelie-web/internal/infrastructure/storage/leveldb"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/auth"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/pdf"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// App is the storefront's application state. Every service is built once
// from config here and handed to the HTTP layer.
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Registry *prometheus.Registry
	HTTP     *metrics.HTTP
	Metrics  *metrics.Business

	DB        *postgres.DB
	Redis     *redisdb.Client
	Mongo     *mongo.Database
	Local     *leveldb.Store
	Publisher *messaging.Publisher

	Catalog       *catalog.Catalog
	Notifications *notification.Service
	Carts         *cart.Service
	Wishlist      *wishlist.Service
	Identity      *identity.Service
	Orders        *order.Service
	Payments      *payment.RazorpayService
	Checkout      *checkout.Service

	unsubscribe func()
}

// New connects to every backing store and assembles the services. On error
// whatever was already opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	built := false
	defer func() {
		if !built {
			if err := a.Close(context.Background()); err != nil {
				logger.WithError(err).Warn("failed to close partially started application")
			}
		}
	}()

	var err error

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.HTTP = metrics.NewHTTP(a.Registry, cfg.Metrics.Namespace)
	a.Metrics = metrics.NewBusiness(a.Registry, cfg.Metrics.Namespace)

	if a.DB, err = postgres.NewConnection(cfg); err != nil {
		return nil, err
	}
	migration := postgres.NewMigration(a.DB.GetDB(), logger)
	if err = migration.RunAutoMigrations(); err != nil {
		return nil, err
	}
	if err = migration.CreateIndexes(); err != nil {
		return nil, err
	}
	logger.Info("Connected to PostgreSQL")

	if a.Redis, err = redisdb.NewConnection(ctx, cfg); err != nil {
		return nil, err
	}
	logger.Info("Connected to Redis")

	if a.Mongo, err = mongodb.NewConnection(ctx, cfg); err != nil {
		return nil, err
	}
	if err = mongodb.EnsureIndexes(ctx, a.Mongo, cfg); err != nil {
		return nil, err
	}
	logger.Info("Connected to MongoDB")

	if a.Local, err = leveldb.Open(cfg.LevelDB.Path); err != nil {
		return nil, err
	}

	var events checkout.EventPublisher
	if cfg.KafkaEnabled() {
		a.Publisher = messaging.NewPublisher(cfg)
		events = a.Publisher
		logger.WithField("topic", cfg.Kafka.OrderTopic).Info("Order events enabled")
	} else {
		logger.Warn("No Kafka brokers configured, order events are disabled")
	}

	images := catalog.NewImageResolver(os.DirFS(cfg.App.AssetsPath), "/assets")
	if a.Catalog, err = catalog.Default(images); err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	rdb := a.Redis.GetClient()
	profiles := mongodb.NewProfileRepository(a.Mongo.Collection(cfg.Mongo.ProfileCollection))
	orders := mongodb.NewOrderRepository(a.Mongo.Collection(cfg.Mongo.OrderCollection))

	a.Notifications = notification.NewService(rdb, cfg.Store.PopupTTL)
	a.Carts = cart.NewService(rdb, a.Catalog, a.Notifications, cfg, logger)
	a.Wishlist = wishlist.NewService(a.Local, profiles, a.Catalog, logger)

	a.Identity = identity.NewService(
		identity.NewGormUserStore(a.DB.GetDB()),
		profiles,
		identity.NewRedisRevoker(rdb),
		auth.NewJWTManager(cfg),
		auth.NewPasswordManager(cfg),
		identity.NewWatcher(),
		logger,
	)
	a.unsubscribe = a.Identity.Watcher().Subscribe(a.Wishlist.OnIdentityChanged)

	a.Orders = order.NewService(orders, pdf.NewService(cfg), logger)
	a.Payments = payment.NewRazorpayService(cfg, logger)

	a.Checkout = checkout.NewService(checkout.Dependencies{
		Redis:    rdb,
		Carts:    a.Carts,
		Gateway:  a.Payments,
		Orders:   a.Orders,
		Events:   events,
		Notifier: a.Notifications,
		Forms:    checkout.NewFormValidator(validation.New(), cfg.Store.RequireState),
		Metrics:  a.Metrics,
	}, cfg, logger)

	built = true
	return a, nil
}

// Health pings every backing store
func (a *App) Health(ctx context.Context) map[string]error {
	return map[string]error{
		"database": a.DB.Health(ctx),
		"redis":    a.Redis.Health(ctx),
		"mongodb":  mongodb.HealthCheck(ctx, a.Mongo),
	}
}

// Close releases every connection that was opened
func (a *App) Close(ctx context.Context) error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}

	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Local != nil {
		errs = append(errs, a.Local.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, mongodb.Close(ctx, a.Mongo))
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
