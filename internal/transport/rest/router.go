package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/organization"
	"github.com/frahmantamala/identity-api/internal/registration"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/internal/transport/middleware"
	"github.com/frahmantamala/identity-api/internal/transport/swagger"
	"github.com/frahmantamala/identity-api/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Role sets of the gated route groups.
var (
	RestrictedUserRoles = []string{
		identity.RoleAdmin,
		identity.RoleGuest,
		identity.RoleSupplierEditor,
		identity.RoleProductEditor,
	}
	// guests and editors pass here, ownership is checked by the service
	RestrictedOrganizationRoles = []string{
		identity.RoleAdmin,
		identity.RoleGuest,
		identity.RoleSupplierEditor,
		identity.RoleProductEditor,
	}
	AdminRoles = []string{identity.RoleAdmin}
)

type mounter interface {
	Mount(r chi.Router)
}

type Handlers struct {
	Auth         *auth.Handler
	Registration *registration.Handler
	UserSelf     *user.Handler
	OrgSelf      *organization.Handler
	Health       *HealthHandler

	Users               *resource.Handler[*identity.User]
	Organizations       *resource.Handler[*identity.Organization]
	Roles               *resource.Handler[*identity.Role]
	Permissions         *resource.Handler[*identity.Permission]
	EmailVerifications  *resource.Handler[*identity.EmailVerification]
	PasswordResetTokens *resource.Handler[*identity.PasswordResetToken]
}

func (h Handlers) adminResources() []mounter {
	return []mounter{
		h.Users,
		h.Organizations,
		h.Roles,
		h.Permissions,
		h.EmailVerifications,
		h.PasswordResetTokens,
	}
}

// Options carries the optional surfaces; a nil field disables it.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins string
	ExposeErrors   bool
	Version        string
	// TrustProxy rewrites RemoteAddr from forwarding headers before the
	// rate limiter sees it.
	TrustProxy bool

	Metrics     *middleware.Metrics
	MetricsPath string
	RateLimiter *middleware.RateLimiter
	Definition  http.HandlerFunc
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	logger := opts.Logger

	if opts.TrustProxy {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.RecoveryMiddleware(logger, opts.ExposeErrors))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Instrument)
	}
	router.Use(middleware.LoggingMiddleware(logger))

	router.NotFound(notFound)

	if opts.Metrics != nil {
		router.Handle(opts.MetricsPath, opts.Metrics.Handler())
	}
	if h.Health != nil {
		router.Get("/healthcheck", h.Health.HealthCheck)
		router.Get("/ping", h.Health.Ping)
	}
	if opts.Definition != nil {
		router.Get(swagger.DefinitionPath, opts.Definition)
		router.Handle("/api-docs/*", swagger.Handler())
	}

	router.Route(resource.APIPrefix, func(r chi.Router) {
		r.Get("/", apiInfo(opts.Version))
		r.Post("/clientlogs", clientLogs(logger))

		// open, rate limited
		r.Group(func(pub chi.Router) {
			if opts.RateLimiter != nil {
				pub.Use(opts.RateLimiter.Handler)
			}
			pub.Post("/authenticate", h.Auth.Authenticate)
			pub.Post("/authenticate/refresh", h.Auth.Refresh)
			pub.Post("/register", h.Registration.Register)
			pub.Post("/password-reset-request", h.Registration.RequestPasswordReset)
		})
		r.Post("/validate-email", h.Registration.ValidateEmail)
		r.Post("/password-reset", h.Registration.ResetPassword)

		// everything below needs a verified token
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Authenticated)
			pr.Use(middleware.UserContext)

			pr.Group(func(ur chi.Router) {
				ur.Use(middleware.Permit(logger, RestrictedUserRoles...))
				h.UserSelf.MountRestricted(ur)
			})

			pr.Group(func(or chi.Router) {
				or.Use(middleware.Permit(logger, RestrictedOrganizationRoles...))
				h.OrgSelf.MountRestricted(or)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.Permit(logger, AdminRoles...))
				ar.Post(user.Path+"/upgrade", h.UserSelf.Upgrade)
				for _, m := range h.adminResources() {
					m.Mount(ar)
				}
			})
		})
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	appErr := internal.NewNotFoundError(
		"No router was found for your request, page not found. Requested Page: "+r.URL.Path,
		internal.ErrCodeNotFound,
	)
	writeJSON(w, appErr.StatusCode, appErr)
}
