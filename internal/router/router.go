package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learnhub/internal/config"
	"learnhub/internal/handler"
	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Product       *handler.ProductHandler
	Course        *handler.CourseHandler
	Order         *handler.OrderHandler
	Notification  *handler.NotificationHandler
	Health        *handler.HealthHandler
	Stream        *handler.NotificationStreamHandler
	Media         http.Handler
	MetricsGather prometheus.Gatherer
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, metrics *middleware.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if metrics != nil {
		r.Use(metrics.Handler)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.BodyLimit(cfg.BodyLimit))

	r.NotFound(handler.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apierror.NotFound(fmt.Sprintf("Route %s not found", r.URL.Path))
	}))
	r.MethodNotAllowed(handler.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apierror.New("METHOD_NOT_ALLOWED", fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path), "", http.StatusMethodNotAllowed)
	}))

	r.Get("/test", handler.Handle(h.Health.Test))
	r.Get("/health", handler.Handle(h.Health.Health))
	if h.MetricsGather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.MetricsGather, promhttp.HandlerOpts{}))
	}
	if h.Media != nil {
		r.Handle(cfg.MediaPublicURL+"/*", http.StripPrefix(cfg.MediaPublicURL, h.Media))
	}

	requireAuth := authMiddleware.RequireAuth
	adminOnly := authMiddleware.RequireRoles(model.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		// The notification stream hijacks the connection, which
		// http.TimeoutHandler cannot do.
		if h.Stream != nil {
			api.With(requireAuth, adminOnly).Get("/ws/notifications", handler.Handle(h.Stream.Stream))
		}

		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))

			api.Post("/registration", handler.Handle(h.Auth.Register))
			api.Post("/activate-user", handler.Handle(h.Auth.Activate))
			api.Post("/login", handler.Handle(h.Auth.Login))
			api.Post("/social-auth", handler.Handle(h.Auth.SocialAuth))
			api.Get("/refresh", handler.Handle(h.Auth.Refresh))
			api.With(requireAuth).Get("/logout", handler.Handle(h.Auth.Logout))

			api.With(requireAuth).Get("/me", handler.Handle(h.User.Me))
			api.With(requireAuth).Put("/update-user-info", handler.Handle(h.User.UpdateInfo))
			api.With(requireAuth).Put("/update-user-password", handler.Handle(h.User.UpdatePassword))
			api.With(requireAuth).Put("/update-user-avatar", handler.Handle(h.User.UpdateAvatar))
			api.With(requireAuth, adminOnly).Get("/get-all-users", handler.Handle(h.User.List))
			api.With(requireAuth, adminOnly).Put("/update-user-role", handler.Handle(h.User.UpdateRole))
			api.With(requireAuth, adminOnly).Delete("/delete-user/{id}", handler.Handle(h.User.Delete))

			api.With(requireAuth, adminOnly).Post("/add-product", handler.Handle(h.Product.Create))
			api.With(requireAuth, adminOnly).Put("/edit-product/{id}", handler.Handle(h.Product.Update))
			api.Get("/get-product/{id}", handler.Handle(h.Product.Get))
			api.Get("/get-all-product", handler.Handle(h.Product.List))
			api.Get("/search-product", handler.Handle(h.Product.Search))
			api.With(requireAuth).Get("/get-product-user/{id}", handler.Handle(h.Product.GetOwned))

			api.With(requireAuth, adminOnly).Post("/create-course", handler.Handle(h.Course.Create))
			api.With(requireAuth, adminOnly).Put("/edit-course/{id}", handler.Handle(h.Course.Update))
			api.Get("/get-course/{id}", handler.Handle(h.Course.Get))
			api.Get("/courses", handler.Handle(h.Course.List))
			api.With(requireAuth).Get("/get-course-content/{id}", handler.Handle(h.Course.Content))
			api.With(requireAuth).Put("/add-question", handler.Handle(h.Course.AddQuestion))
			api.With(requireAuth).Put("/add-answer", handler.Handle(h.Course.AddAnswer))
			api.With(requireAuth, adminOnly).Get("/get-courses", handler.Handle(h.Course.ListAll))

			api.With(requireAuth).Post("/create-order", handler.Handle(h.Order.Create))
			api.With(requireAuth, adminOnly).Get("/get-orders", handler.Handle(h.Order.List))

			api.With(requireAuth, adminOnly).Get("/get-all-notification", handler.Handle(h.Notification.List))
			api.With(requireAuth, adminOnly).Put("/get-updated-notification/{id}", handler.Handle(h.Notification.MarkRead))
		})
	})

	return r
}
