// Package notification sends the transactional emails of the registration
// and password recovery workflows.
package notification

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
)

const (
	VerificationLinkVar  = "USER_VERIFICATION_LINK"
	PasswordResetLinkVar = "PASSWORD_RESET_LINK"
)

// Dispatcher is awaited by its callers; a failed send is returned as a 502
// AppError carrying the upstream response.
type Dispatcher interface {
	SendVerificationEmail(ctx context.Context, address, id string) error
	SendPasswordResetEmail(ctx context.Context, address, id string) error
}

// New returns the Mandrill client, or a LogNotifier when no API key is set.
func New(cfg internal.NotificationConfig, logger *slog.Logger) Dispatcher {
	if cfg.MandrillAPIKey == "" {
		logger.Warn("mandrill api key not configured, notification links will only be logged")
		return NewLogNotifier(cfg, logger)
	}
	return NewMandrillClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// LogNotifier writes the links to the log instead of mailing them. Used in
// development and tests.
type LogNotifier struct {
	cfg    internal.NotificationConfig
	logger *slog.Logger
}

func NewLogNotifier(cfg internal.NotificationConfig, logger *slog.Logger) *LogNotifier {
	return &LogNotifier{cfg: cfg, logger: logger}
}

func (n *LogNotifier) SendVerificationEmail(ctx context.Context, address, id string) error {
	n.log(ctx, n.cfg.VerificationTemplate, address, n.cfg.VerifyEmailLink+id)
	return nil
}

func (n *LogNotifier) SendPasswordResetEmail(ctx context.Context, address, id string) error {
	n.log(ctx, n.cfg.PasswordResetTemplate, address, n.cfg.PasswordResetLink+id)
	return nil
}

// The link is a live credential, so it only goes out at debug level.
func (n *LogNotifier) log(ctx context.Context, template, address, link string) {
	n.logger.InfoContext(ctx, "notification: email not sent, no Mandrill key",
		"template", template,
		"to", address)
	n.logger.DebugContext(ctx, "notification: link", "template", template, "link", link)
}
