// Package handler is the HTTP layer. Handlers decode the request, resolve
// the caller from the context, call one service method and write the
// result in the standard envelope.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/model"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Response is the envelope every API endpoint returns. Code is 0 on
// success and one of the apperror codes otherwise.
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Code: apperror.CodeSuccess, Data: data, Message: "ok"})
}

// writeError maps err to an HTTP status and envelope code. Errors without
// an apperror sentinel are logged and reported with a generic message so
// driver details never reach the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := apperror.Code(err)

	status := http.StatusInternalServerError
	switch code {
	case apperror.CodeParams:
		status = http.StatusBadRequest
	case apperror.CodeNotLogin:
		status = http.StatusUnauthorized
	case apperror.CodeNoAuth:
		status = http.StatusForbidden
	case apperror.CodeNotFound:
		status = http.StatusNotFound
	case apperror.CodeConflict:
		status = http.StatusConflict
	}

	message := "system error"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if code == apperror.CodeSystem || code == apperror.CodeOperation {
		logger.Error("request failed", slog.Int("code", code), slog.String("error", err.Error()))
	}

	writeJSON(w, status, Response{Code: code, Data: nil, Message: message})
}

// decodeJSON reads a JSON body into dst. An empty body is a parameter
// error, as is malformed JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		return apperror.ValidationFailed("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// caller returns the authenticated user or nil for anonymous requests.
func caller(r *http.Request) *model.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}
