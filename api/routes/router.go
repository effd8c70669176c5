package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lotbridge/lotbridge-backend/api/controllers"
	"github.com/lotbridge/lotbridge-backend/api/middleware"
	"github.com/lotbridge/lotbridge-backend/internal/auth"
	"github.com/lotbridge/lotbridge-backend/internal/buycodes"
	"github.com/lotbridge/lotbridge-backend/internal/dealers"
	"github.com/lotbridge/lotbridge-backend/internal/media"
	"github.com/lotbridge/lotbridge-backend/internal/offers"
	"github.com/lotbridge/lotbridge-backend/internal/redemption"
	"github.com/lotbridge/lotbridge-backend/internal/sheets"
	"github.com/lotbridge/lotbridge-backend/internal/transactions"
	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/pkg/auth/session"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
	"github.com/lotbridge/lotbridge-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	GCS            controllers.Pinger
	SessionManager sessionManager

	AuthService        auth.Service
	VehicleService     vehicles.Service
	OfferService       offers.Service
	BuyCodeService     buycodes.Service
	DealerService      dealers.Service
	TransactionService transactions.Service
	RedemptionService  redemption.Service
	MediaService       media.Service
	SheetsService      sheets.Service
}

// NewRouter assembles the full route tree with its middleware stack.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	readyDeps := map[string]controllers.Pinger{
		"database": p.DB,
		"storage":  p.GCS,
	}
	if p.Redis != nil {
		readyDeps["redis"] = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AdminAuthLogin(p.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.RequireRole("dealer", logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.DealerListVehicles(p.VehicleService, logg))
			r.Get("/{id}", controllers.DealerGetVehicle(p.VehicleService, logg))
			r.Post("/{vehicleId}/offers", controllers.DealerSubmitOffer(p.OfferService, logg))
			r.Get("/{vehicleId}/offers", controllers.DealerListVehicleOffers(p.OfferService, logg))
		})
		r.Post("/offers/{offerId}/respond", controllers.DealerRespondOffer(p.OfferService, logg))
		r.Post("/verify-code", controllers.DealerVerifyCode(p.RedemptionService, logg))
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.DealerListTransactions(p.TransactionService, logg))
			r.Get("/{id}/bill-of-sale", controllers.DealerDownloadBillOfSale(p.TransactionService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", controllers.AdminIntakeVehicle(p.VehicleService, logg))
			r.Get("/", controllers.AdminListVehicles(p.VehicleService, logg))
			r.Post("/import", controllers.AdminImportVehicles(p.SheetsService, logg))
			r.Get("/{id}", controllers.AdminGetVehicle(p.VehicleService, logg))
			r.Patch("/{id}/pricing", controllers.AdminSetVehiclePricing(p.VehicleService, logg))
			r.Patch("/{id}", controllers.AdminCompleteVehicle(p.VehicleService, logg))
			r.Delete("/{id}", controllers.AdminRemoveVehicle(p.VehicleService, logg))
			r.Post("/{id}/reactivate", controllers.AdminReactivateVehicle(p.VehicleService, logg))
		})
		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.AdminListOffers(p.OfferService, logg))
			r.Post("/{offerId}/decision", controllers.AdminOfferDecision(p.OfferService, logg))
		})
		r.Route("/buy-codes", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateBuyCode(p.BuyCodeService, logg))
			r.Get("/", controllers.AdminListBuyCodes(p.BuyCodeService, logg))
			r.Post("/{id}/deactivate", controllers.AdminDeactivateBuyCode(p.BuyCodeService, logg))
		})
		r.Route("/dealers", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateDealer(p.DealerService, logg))
			r.Get("/", controllers.AdminListDealers(p.DealerService, logg))
			r.Patch("/{id}", controllers.AdminUpdateDealer(p.DealerService, logg))
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.AdminListTransactions(p.TransactionService, logg))
			r.Post("/{id}/mark-paid", controllers.AdminMarkTransactionPaid(p.TransactionService, logg))
			r.Post("/{id}/complete", controllers.AdminCompleteTransaction(p.TransactionService, logg))
			r.Post("/{id}/bill-of-sale", controllers.AdminAttachBillOfSale(p.TransactionService, logg))
		})
		r.Post("/media/presign", controllers.AdminPresignMedia(p.MediaService, logg))
	})

	return r
}
