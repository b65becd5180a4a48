package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"secure-login/internal/observability"
	"secure-login/internal/precheck"
	"secure-login/internal/resilience"
)

const maxJSONBodyBytes = 1 << 20

// Handler exposes the auth service over HTTP. The login path runs through
// the resilience gate (rate limiter, then circuit breaker around the
// dependent pre-check) before the credential store is ever consulted.
type Handler struct {
	service  *Service
	gate     *resilience.Gate
	precheck precheck.Client
	logger   *observability.Logger
}

func NewHandler(service *Service, gate *resilience.Gate, pre precheck.Client, logger *observability.Logger) *Handler {
	return &Handler{
		service:  service,
		gate:     gate,
		precheck: pre,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	body.Username = strings.TrimSpace(body.Username)
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	// Admission control first: a rate-limited or short-circuited request
	// must not consume a login attempt against the credential store.
	err := h.gate.Execute(r.Context(), func(ctx context.Context) error {
		return h.precheck.Check(ctx, body.Username)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrRateLimited) {
			h.logger.Warn("login_rate_limited", map[string]any{"username": body.Username})
			writeError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
		// Breaker open or the dependency itself failed; either way the
		// login service is unavailable, and the breaker has recorded it.
		h.logger.Error("login_dependency_unavailable", map[string]any{
			"username": body.Username,
			"error":    err.Error(),
		})
		writeError(w, http.StatusServiceUnavailable, "login service temporarily unavailable")
		return
	}

	token, err := h.service.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	username, err := h.service.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid or missing token")
		return
	}

	if err := h.service.Logout(token); err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Protected is a demo resource; Middleware has already validated the
// token and attached the identity.
func (h *Handler) Protected(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("welcome to the secured area, %s", username),
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
