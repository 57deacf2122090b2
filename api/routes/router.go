package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablemate-app/tablemate-backend/api/controllers"
	"github.com/tablemate-app/tablemate-backend/api/middleware"
	"github.com/tablemate-app/tablemate-backend/internal/accounts"
	"github.com/tablemate-app/tablemate-backend/internal/customers"
	"github.com/tablemate-app/tablemate-backend/internal/owners"
	"github.com/tablemate-app/tablemate-backend/internal/restaurants"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	"github.com/tablemate-app/tablemate-backend/pkg/enums"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/redis"
	"github.com/tablemate-app/tablemate-backend/pkg/storage/cloudinary"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Blobs       *cloudinary.Client
	Accounts    accounts.Service
	AccountRepo accounts.Repository
	Owners      owners.Service
	Customers   customers.Service
	Restaurants restaurants.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

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
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	var redisPinger, blobPinger controllers.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	if deps.Blobs != nil {
		blobPinger = deps.Blobs
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(deps.DB, redisPinger, blobPinger)))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, deps.Redis, logg)).Post("/signup", controllers.AuthSignup(deps.Accounts, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, deps.Redis, logg)).Post("/signup/resend", controllers.AuthSignupResend(deps.Accounts, logg))
		r.Post("/signup/confirm", controllers.AuthSignupConfirm(deps.Accounts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Accounts, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout())
		r.Post("/password/forgot", controllers.AuthPasswordForgot(deps.Accounts, logg))
		r.Post("/password/set", controllers.AuthPasswordSet(deps.Accounts, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/password/reset", controllers.AuthPasswordReset(deps.Accounts, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/owners", func(r chi.Router) {
			r.Post("/", controllers.OwnerCreate(deps.Owners, logg))
			r.Get("/{ownerId}", controllers.OwnerGet(deps.Owners, logg))
			r.Patch("/{ownerId}", controllers.OwnerUpdate(deps.Owners, logg))
			r.Delete("/{ownerId}", controllers.OwnerDelete(deps.Owners, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(deps.Customers, logg))
			r.Patch("/{customerId}", controllers.CustomerUpdate(deps.Customers, logg))
			r.Delete("/{customerId}", controllers.CustomerDelete(deps.Customers, logg))
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", controllers.RestaurantList(deps.Restaurants, logg))
			r.Get("/{restaurantId}", controllers.RestaurantGet(deps.Restaurants, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.AccountRoleOwner), logg))
				r.Post("/", controllers.RestaurantCreate(deps.Restaurants, deps.AccountRepo, logg))
				r.Patch("/{restaurantId}", controllers.RestaurantUpdate(deps.Restaurants, logg))
				r.Delete("/{restaurantId}", controllers.RestaurantDelete(deps.Restaurants, logg))
			})
		})

		r.Post("/media", controllers.MediaUpload(deps.Blobs, logg))
	})

	return r
}
