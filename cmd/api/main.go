package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tablemate-app/tablemate-backend/api/routes"
	"github.com/tablemate-app/tablemate-backend/internal/accounts"
	"github.com/tablemate-app/tablemate-backend/internal/customers"
	"github.com/tablemate-app/tablemate-backend/internal/otp"
	"github.com/tablemate-app/tablemate-backend/internal/owners"
	"github.com/tablemate-app/tablemate-backend/internal/restaurants"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	"github.com/tablemate-app/tablemate-backend/pkg/db"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/mailer"
	"github.com/tablemate-app/tablemate-backend/pkg/migrate"
	"github.com/tablemate-app/tablemate-backend/pkg/redis"
	"github.com/tablemate-app/tablemate-backend/pkg/storage/cloudinary"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	blobClient, err := cloudinary.NewClient(context.Background(), cfg.Cloudinary, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap blob store", err)
		os.Exit(1)
	}

	notifier, err := mailer.NewSMTPNotifier(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mail notifier", err)
		os.Exit(1)
	}

	accountRepo := accounts.NewRepository(dbClient.DB())
	challengeRepo := otp.NewRepository(dbClient.DB())
	ownerRepo := owners.NewRepository(dbClient.DB())
	customerRepo := customers.NewRepository(dbClient.DB())
	restaurantRepo := restaurants.NewRepository(dbClient.DB())

	accountService, err := accounts.NewService(accounts.ServiceParams{
		DB:             dbClient,
		Accounts:       accountRepo,
		Challenges:     challengeRepo,
		Engine:         otp.NewEngine(cfg.OTP),
		Notifier:       notifier,
		Logger:         logg,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
		OTPConfig:      cfg.OTP,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	ownerService, err := owners.NewService(owners.ServiceParams{
		DB:       dbClient,
		Owners:   ownerRepo,
		Accounts: accountRepo,
		Blobs:    blobClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create owner service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customers.ServiceParams{
		DB:        dbClient,
		Customers: customerRepo,
		Accounts:  accountRepo,
		Blobs:     blobClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	restaurantService, err := restaurants.NewService(restaurants.ServiceParams{
		Restaurants: restaurantRepo,
		Owners:      ownerRepo,
		Blobs:       blobClient,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create restaurant service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Blobs:       blobClient,
			Accounts:    accountService,
			AccountRepo: accountRepo,
			Owners:      ownerService,
			Customers:   customerService,
			Restaurants: restaurantService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
