package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkhaus-dev/linkhaus-backend/api/controllers"
	"github.com/linkhaus-dev/linkhaus-backend/api/middleware"
	"github.com/linkhaus-dev/linkhaus-backend/internal/disputes"
	"github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/internal/wallet"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/config"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/logger"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/redis"
)

const (
	apiRateLimit       = 120
	apiRateLimitWindow = time.Minute
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	ordersSvc orders.Service,
	walletSvc wallet.Service,
	disputesSvc disputes.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// interfaces built from possibly-nil pointers must stay nil themselves
	var dbPinger db.Pinger
	if dbClient != nil {
		dbPinger = dbClient
	}
	var redisPinger redis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	var walletTx controllers.TxRunner
	if dbClient != nil {
		walletTx = dbClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.RateLimit(redisClient, apiRateLimit, apiRateLimitWindow, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(ordersSvc, logg))
			r.Get("/", controllers.ListOrders(ordersSvc, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersSvc, logg))
				r.Patch("/status", controllers.TransitionOrder(ordersSvc, logg))
				r.Post("/confirm", controllers.ConfirmOrder(ordersSvc, logg))
				r.Post("/review", controllers.ReviewOrder(ordersSvc, logg))
				r.Post("/dispute", controllers.OpenDispute(disputesSvc, logg))
				r.Get("/dispute", controllers.OrderDispute(disputesSvc, logg))
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletSummary(walletSvc, logg))
			r.Post("/deposit", controllers.Deposit(walletSvc, walletTx, logg))
			r.Post("/withdraw", controllers.Withdraw(walletSvc, walletTx, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))
			r.Route("/disputes", func(r chi.Router) {
				r.Get("/", controllers.AdminListDisputes(disputesSvc, logg))
				r.Post("/{disputeId}/resolve", controllers.AdminResolveDispute(disputesSvc, logg))
			})
		})
	})

	return r
}
