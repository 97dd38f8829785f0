package cmd

import (
	"database/sql"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/provider"
	"github.com/vibast-solutions/ms-go-checkout/app/repository"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

type application struct {
	cfg          *config.Config
	db           *sql.DB
	orderService *service.OrderService
	profileRepo  *repository.ProfileRepository
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := factory.ConfigureLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	return cfg
}

func mustOpenDB(cfg *config.Config) *sql.DB {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}
	return db
}

func mustCreateApplication() (*application, func()) {
	cfg := mustLoadConfig()
	db := mustOpenDB(cfg)

	gateway := provider.NewRazorpayGateway(provider.RazorpayConfig{
		KeyID:             cfg.Razorpay.KeyID,
		KeySecret:         cfg.Razorpay.KeySecret,
		WebhookSecret:     cfg.Razorpay.WebhookSecret,
		APIBaseURL:        cfg.Razorpay.APIBaseURL,
		HTTPTimeout:       cfg.Razorpay.HTTPTimeout,
		RequestsPerSecond: cfg.Razorpay.RequestsPerSecond,
	})

	orderService := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderEventRepository(db),
		repository.NewWebhookEventRepository(db),
		repository.NewProductVariantRepository(db),
		gateway,
		cfg.Orders,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return &application{
		cfg:          cfg,
		db:           db,
		orderService: orderService,
		profileRepo:  repository.NewProfileRepository(db),
	}, cleanup
}
