package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/identity-api/internal"
)

func writeError(w http.ResponseWriter, appErr *internal.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(appErr)
}
