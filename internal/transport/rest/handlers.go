package rest

import (
	"log/slog"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	authPostgres "github.com/frahmantamala/identity-api/internal/auth/postgres"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/core/events"
	"github.com/frahmantamala/identity-api/internal/organization"
	orgPostgres "github.com/frahmantamala/identity-api/internal/organization/postgres"
	"github.com/frahmantamala/identity-api/internal/permission"
	"github.com/frahmantamala/identity-api/internal/registration"
	registrationPostgres "github.com/frahmantamala/identity-api/internal/registration/postgres"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/internal/resource/postgres"
	"github.com/frahmantamala/identity-api/internal/role"
	rolePostgres "github.com/frahmantamala/identity-api/internal/role/postgres"
	"github.com/frahmantamala/identity-api/internal/transport"
	"github.com/frahmantamala/identity-api/internal/user"
	userPostgres "github.com/frahmantamala/identity-api/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Dependencies are the shared pieces every handler is built from.
type Dependencies struct {
	Config    *internal.Config
	DB        *gorm.DB
	SQL       *sqlx.DB
	Notifier  registration.Notifier
	Publisher events.Publisher
	Logger    *slog.Logger
}

// NewHandlers builds the repositories, resource pipelines and services and
// returns the handlers the router mounts.
func NewHandlers(deps Dependencies) Handlers {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg, cfg.Security.ReturnCallStackOnError)
	cost := cfg.Security.BCryptCost

	userRepo := userPostgres.NewUserRepository(deps.DB)
	orgRepo := orgPostgres.NewOrganizationRepository(deps.DB)
	roleRepo := rolePostgres.NewRoleRepository(deps.DB)

	users := resource.NewService(user.NewDefinition(
		postgres.NewStore(deps.DB, func() *identity.User { return &identity.User{} }),
		userRepo, cost), lg)
	orgs := resource.NewService(organization.NewDefinition(
		postgres.NewStore(deps.DB, func() *identity.Organization { return &identity.Organization{} }),
		orgRepo), lg)
	roles := resource.NewService(role.NewDefinition(
		postgres.NewStore(deps.DB, func() *identity.Role { return &identity.Role{} })), lg)
	permissions := resource.NewService(permission.NewDefinition(
		postgres.NewStore(deps.DB, func() *identity.Permission { return &identity.Permission{} })), lg)
	verifications := resource.NewService(registration.NewEmailVerificationDefinition(
		postgres.NewStore(deps.DB, func() *identity.EmailVerification { return &identity.EmailVerification{} })), lg)
	resetTokens := resource.NewService(registration.NewPasswordResetTokenDefinition(
		postgres.NewStore(deps.DB, func() *identity.PasswordResetToken { return &identity.PasswordResetToken{} })), lg)

	authSvc := auth.NewService(
		authPostgres.NewRepository(deps.DB),
		auth.NewTokenCodec(cfg.Security.JWTSecret),
		auth.ExpiryPolicy{Soft: cfg.Security.SoftTokenExpiry, Hard: cfg.Security.HardTokenExpiry},
		lg,
	)
	userSvc := user.NewService(users, userRepo, orgRepo, roleRepo, deps.Publisher, cost, lg)
	orgSvc := organization.NewService(orgs, lg)
	registrationSvc := registration.NewService(
		registrationPostgres.NewRegistrationRepository(deps.DB),
		deps.Notifier,
		deps.Publisher,
		registration.Settings{
			BCryptCost:                cost,
			EmailVerificationValidity: cfg.Security.EmailVerificationValidity,
			PasswordResetValidity:     cfg.Security.PasswordResetValidity,
		},
		lg,
	)

	var health *HealthHandler
	if deps.SQL != nil {
		health = NewHealthHandler(deps.SQL)
	}

	return Handlers{
		Auth:         auth.NewHandler(base, authSvc),
		Registration: registration.NewHandler(base, registrationSvc),
		UserSelf:     user.NewHandler(base, userSvc),
		OrgSelf:      organization.NewHandler(base, orgSvc),
		Health:       health,

		Users:               resource.NewHandler(base, users),
		Organizations:       resource.NewHandler(base, orgs),
		Roles:               resource.NewHandler(base, roles),
		Permissions:         resource.NewHandler(base, permissions),
		EmailVerifications:  resource.NewHandler(base, verifications),
		PasswordResetTokens: resource.NewHandler(base, resetTokens),
	}
}
