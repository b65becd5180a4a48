package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"secure-login/internal/auth"
	"secure-login/internal/observability"
	"secure-login/internal/precheck"
	"secure-login/internal/resilience"
)

type Options struct {
	LoadDotEnv bool
}

// Runtime holds the wired service. Everything in it is constructed once
// here and lives for the process lifetime; there are no package-level
// singletons to reach for.
type Runtime struct {
	Handler http.Handler
	Logger  *observability.Logger
	Close   func() error
}

// Build parses configuration and wires the service. Configuration
// problems (missing signing key, unreadable or malformed user store,
// under-cost hashes) fail here, before any request is served.
func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := observability.NewLogger(observability.ParseLevel(os.Getenv("LOG_LEVEL")))

	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	if err := observability.InitSentry(os.Getenv("SENTRY_DSN"), envOrDefault("APP_ENV", "development")); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	repo, err := auth.LoadRepository(
		envOrDefault("USER_DATA_FILE", "users.json"),
		envIntOrDefault("BCRYPT_MIN_COST", 10),
	)
	if err != nil {
		return nil, fmt.Errorf("load user repository: %w", err)
	}
	logger.Info("users_loaded", map[string]any{"count": repo.Len()})

	codec, err := auth.NewTokenCodec(
		[]byte(jwtSecret),
		envMinutesOrDefault("TOKEN_TTL_MINUTES", 15),
	)
	if err != nil {
		return nil, fmt.Errorf("configure token codec: %w", err)
	}

	store := auth.NewMemoryTokenStore()
	service := auth.NewService(repo, codec, store, logger)

	limiter := resilience.NewRateLimiter(
		envIntOrDefault("LOGIN_RATE_LIMIT_MAX", 10),
		envSecondsOrDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),
	)
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		WindowSize:   envIntOrDefault("BREAKER_WINDOW_SIZE", 10),
		FailureRatio: envFloatOrDefault("BREAKER_FAILURE_RATIO", 0.5),
		Cooldown:     envSecondsOrDefault("BREAKER_COOLDOWN_SECONDS", 30),
		TrialCalls:   envIntOrDefault("BREAKER_TRIAL_CALLS", 1),
		OnStateChange: func(from, to resilience.State) {
			logger.Warn("login_breaker_state_change", map[string]any{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})
	gate := resilience.NewGate(limiter, breaker)

	var pre precheck.Client = precheck.Noop{}
	if rawURL := strings.TrimSpace(os.Getenv("PRECHECK_URL")); rawURL != "" {
		pre, err = precheck.NewHTTPClient(rawURL, envSecondsOrDefault("PRECHECK_TIMEOUT_SECONDS", 3))
		if err != nil {
			return nil, fmt.Errorf("configure pre-check client: %w", err)
		}
	}

	handler := auth.NewHandler(service, gate, pre, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", handler.Login)
	mux.HandleFunc("GET /api/auth/validate", handler.Validate)
	mux.HandleFunc("POST /api/auth/logout", handler.Logout)
	mux.Handle("GET /api/auth/protected", auth.Middleware(service, http.HandlerFunc(handler.Protected)))
	mux.HandleFunc("GET /health", healthHandler(service, gate))

	wrapped := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	return &Runtime{
		Handler: wrapped,
		Logger:  logger,
		Close: func() error {
			observability.FlushSentry()
			return nil
		},
	}, nil
}

func healthHandler(service *auth.Service, gate *resilience.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"active_tokens": service.TokenCount(),
			"login_breaker": gate.BreakerState().String(),
			"time":          time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envFloatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 || parsed > 1 {
		return fallback
	}
	return parsed
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}
