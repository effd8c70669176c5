package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lotbridge/lotbridge-backend/api/routes"
	"github.com/lotbridge/lotbridge-backend/internal/auth"
	"github.com/lotbridge/lotbridge-backend/internal/buycodes"
	"github.com/lotbridge/lotbridge-backend/internal/dealers"
	"github.com/lotbridge/lotbridge-backend/internal/media"
	"github.com/lotbridge/lotbridge-backend/internal/offers"
	"github.com/lotbridge/lotbridge-backend/internal/redemption"
	"github.com/lotbridge/lotbridge-backend/internal/sheets"
	"github.com/lotbridge/lotbridge-backend/internal/transactions"
	"github.com/lotbridge/lotbridge-backend/internal/users"
	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/internal/vin"
	"github.com/lotbridge/lotbridge-backend/pkg/auth/session"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
	"github.com/lotbridge/lotbridge-backend/pkg/migrate"
	"github.com/lotbridge/lotbridge-backend/pkg/redis"
	"github.com/lotbridge/lotbridge-backend/pkg/storage/gcs"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	vinClient, err := vin.NewClient(cfg.VIN)
	if err != nil {
		logg.Error(context.Background(), "failed to create vin decoder", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	dealersRepo := dealers.NewRepository(dbClient.DB())
	vehiclesRepo := vehicles.NewRepository(dbClient.DB())
	offersRepo := offers.NewRepository(dbClient.DB())
	buyCodesRepo := buycodes.NewRepository(dbClient.DB())
	transactionsRepo := transactions.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		DealerRepo:     dealersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	vehicleService, err := vehicles.NewService(vehiclesRepo, vinClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicle service", err)
		os.Exit(1)
	}

	offerService, err := offers.NewService(offers.ServiceParams{
		TxRunner:        dbClient,
		OfferRepo:       offersRepo,
		VehicleRepo:     vehiclesRepo,
		TransactionRepo: transactionsRepo,
		Config:          cfg.Offers,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	buyCodeService, err := buycodes.NewService(buyCodesRepo, dealersRepo, cfg.BuyCodes)
	if err != nil {
		logg.Error(context.Background(), "failed to create buy code service", err)
		os.Exit(1)
	}

	dealerService, err := dealers.NewService(dealersRepo, usersRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create dealer service", err)
		os.Exit(1)
	}

	transactionService, err := transactions.NewService(transactionsRepo, gcsClient, cfg.GCS)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	redemptionService, err := redemption.NewService(redemption.ServiceParams{
		TxRunner:        dbClient,
		BuyCodeRepo:     buyCodesRepo,
		VehicleRepo:     vehiclesRepo,
		DealerRepo:      dealersRepo,
		TransactionRepo: transactionsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create redemption service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.GCS, cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	// Sheets import is optional; without a spreadsheet the endpoint reports
	// the importer as unavailable.
	var sheetsService sheets.Service
	if cfg.Sheets.SpreadsheetID != "" {
		reader, err := sheets.NewReader(context.Background(), cfg.GCP.CredentialsJSON)
		if err != nil {
			logg.Error(context.Background(), "failed to create sheets reader", err)
			os.Exit(1)
		}
		sheetsService, err = sheets.NewService(reader, vehicleService, cfg.Sheets)
		if err != nil {
			logg.Error(context.Background(), "failed to create sheets service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "sheets import disabled, no spreadsheet configured")
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:             cfg,
			Logger:             logg,
			DB:                 dbClient,
			Redis:              redisClient,
			GCS:                gcsClient,
			SessionManager:     sessionManager,
			AuthService:        authService,
			VehicleService:     vehicleService,
			OfferService:       offerService,
			BuyCodeService:     buyCodeService,
			DealerService:      dealerService,
			TransactionService: transactionService,
			RedemptionService:  redemptionService,
			MediaService:       mediaService,
			SheetsService:      sheetsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
