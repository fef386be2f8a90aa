package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/identity-api/internal"
)

const maxUpstreamBody = 64 << 10

type recipient struct {
	Email string `json:"email"`
}

type mergeVar struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type templateContent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type message struct {
	FromEmail       string            `json:"from_email"`
	To              []recipient       `json:"to"`
	Headers         map[string]string `json:"headers,omitempty"`
	GlobalMergeVars []mergeVar        `json:"global_merge_vars"`
	Merge           bool              `json:"merge"`
	MergeLanguage   string            `json:"merge_language"`
}

type sendTemplateRequest struct {
	Key             string            `json:"key"`
	TemplateName    string            `json:"template_name"`
	TemplateContent []templateContent `json:"template_content"`
	Message         message           `json:"message"`
	Async           bool              `json:"async"`
}

type sendResult struct {
	Email        string `json:"email"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason,omitempty"`
}

// MandrillClient calls the Mandrill send-template API.
type MandrillClient struct {
	cfg        internal.NotificationConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewMandrillClient(cfg internal.NotificationConfig, httpClient *http.Client, logger *slog.Logger) *MandrillClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &MandrillClient{cfg: cfg, httpClient: httpClient, logger: logger}
}

func (c *MandrillClient) SendVerificationEmail(ctx context.Context, address, id string) error {
	err := c.sendTemplate(ctx, c.cfg.VerificationTemplate, address, mergeVar{
		Name:    VerificationLinkVar,
		Content: c.cfg.VerifyEmailLink + id,
	})
	if err != nil {
		return internal.NewUpstreamError("There was a problem sending the email verification", upstreamBody(err), err)
	}
	return nil
}

func (c *MandrillClient) SendPasswordResetEmail(ctx context.Context, address, id string) error {
	err := c.sendTemplate(ctx, c.cfg.PasswordResetTemplate, address, mergeVar{
		Name:    PasswordResetLinkVar,
		Content: c.cfg.PasswordResetLink + id,
	})
	if err != nil {
		return internal.NewUpstreamError("There was a problem sending the password reset email", upstreamBody(err), err)
	}
	return nil
}

// upstreamError keeps the decoded Mandrill response for the error body.
type upstreamError struct {
	status int
	body   interface{}
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("mandrill returned status %d", e.status)
}

func upstreamBody(err error) interface{} {
	if ue, ok := err.(*upstreamError); ok {
		return ue.body
	}
	return err.Error()
}

func (c *MandrillClient) sendTemplate(ctx context.Context, template, address string, vars ...mergeVar) error {
	payload := sendTemplateRequest{
		Key:             c.cfg.MandrillAPIKey,
		TemplateName:    template,
		TemplateContent: []templateContent{},
		Message: message{
			FromEmail:       c.cfg.FromEmail,
			To:              []recipient{{Email: address}},
			Headers:         map[string]string{"Reply-To": c.cfg.FromEmail},
			GlobalMergeVars: vars,
			Merge:           true,
			MergeLanguage:   "mailchimp",
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mandrill request: %w", err)
	}

	ctx, cancel := internal.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MandrillAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "mandrill: request failed", "template", template, "error", err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return fmt.Errorf("failed to read mandrill response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.ErrorContext(ctx, "mandrill: send rejected",
			"template", template,
			"status", resp.StatusCode,
			"body", string(raw))
		return &upstreamError{status: resp.StatusCode, body: decodeBody(raw)}
	}

	var results []sendResult
	if err := json.Unmarshal(raw, &results); err == nil {
		for _, r := range results {
			if r.Status == "rejected" || r.Status == "invalid" {
				c.logger.ErrorContext(ctx, "mandrill: recipient rejected",
					"template", template,
					"status", r.Status,
					"reason", r.RejectReason)
				return &upstreamError{status: resp.StatusCode, body: results}
			}
		}
	}

	c.logger.InfoContext(ctx, "mandrill: email sent",
		"template", template,
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}

func decodeBody(raw []byte) interface{} {
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body
}
