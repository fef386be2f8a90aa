package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/pkg/logger"
)

const (
	ApplicationName = "identity-api"
	maxClientLog    = 16 << 10
)

type APIInfo struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	APIVersion             string `json:"APIVersion"`
	DocumentationLocation  string `json:"DocumentationLocation"`
	APILocation            string `json:"APILocation"`
	AuthenticationEndpoint string `json:"AuthenticationEndpoint"`
	RegisterEndpoint       string `json:"RegisterEndpoint"`
	Healthcheck            string `json:"Healthcheck"`
}

func apiInfo(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		host := scheme + "://" + r.Host

		writeJSON(w, http.StatusOK, APIInfo{
			Name:                   ApplicationName,
			Description:            "An identity api: authentication, registration and role based access control",
			APIVersion:             version,
			DocumentationLocation:  host + "/api-docs/index.html",
			APILocation:            host + resource.APIPrefix,
			AuthenticationEndpoint: host + resource.APIPrefix + "/authenticate",
			RegisterEndpoint:       host + resource.APIPrefix + "/register",
			Healthcheck:            host + "/healthcheck",
		})
	}
}

// ClientLog is what browser clients post when they hit an error.
type ClientLog struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

func clientLogs(base *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry ClientLog
		r.Body = http.MaxBytesReader(w, r.Body, maxClientLog)
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			appErr := internal.NewValidationError("invalid client log", internal.ErrCodeValidationFailed)
			writeJSON(w, appErr.StatusCode, appErr)
			return
		}

		lg := logger.FromOr(r.Context(), base)
		level := slog.LevelError
		switch entry.Level {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		}
		lg.Log(r.Context(), level, "client log",
			"source", "client",
			"message", entry.Message,
			"meta", entry.Meta,
			"user_agent", r.UserAgent())

		writeJSON(w, http.StatusOK, map[string]string{"message": "logged"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
