package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"shopos/backend/internal/domain"
	"shopos/backend/internal/export"
	"shopos/backend/internal/service"
	"shopos/backend/internal/session"
	"shopos/backend/internal/store"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 8 << 20
	requestTimeout   = 30 * time.Second
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	log           *zap.Logger
	allowedOrigin string
	meta          export.Meta
	sessionLimit  *attemptLimiter
	pinLimiter    *attemptLimiter
}

type Options struct {
	AllowedOrigin string
	Meta          export.Meta
}

func New(svc *service.Service, auth *AuthManager, log *zap.Logger, opts Options) *API {
	if log == nil {
		log = zap.NewNop()
	}
	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return &API{
		service:       svc,
		auth:          auth,
		log:           log.Named("http"),
		allowedOrigin: origin,
		meta:          opts.Meta,
		sessionLimit:  newAttemptLimiter(30, time.Minute),
		pinLimiter:    newAttemptLimiter(8, time.Minute),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(a.securityHeaders)
	r.Use(a.requestLog)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", a.handleOpenSession)

		r.Group(func(r chi.Router) {
			r.Use(a.requireSession)

			r.Get("/session", a.handleGetSession)
			r.Post("/session/elevate", a.handleElevate)
			r.Post("/session/demote", a.handleDemote)
			r.Post("/session/navigate", a.handleNavigate)

			r.Get("/products", a.handleListProducts)
			r.Get("/products/{id}", a.handleGetProduct)
			r.Get("/customers", a.handleListCustomers)
			r.Post("/customers/import", a.handleImportCustomers)

			r.Get("/cart", a.handleGetCart)
			r.Delete("/cart", a.handleClearCart)
			r.Post("/cart/lines", a.handleAddLine)
			r.Patch("/cart/lines/{lineID}", a.handleChangeQuantity)
			r.Post("/checkout", a.handleCheckout)

			r.Get("/debtors", a.handleListDebtors)
			r.Get("/debtors/{id}", a.handleGetDebtor)
			r.Post("/debtors/{id}/payments", a.handleRecordPayment)
			r.Put("/debtors/{id}/mobile", a.handleSetMobile)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(domain.RoleSuperAdmin))

				r.Post("/products", a.handleAddProduct)
				r.Patch("/products/{id}", a.handleSetField)
				r.Get("/sales", a.handleListSales)
				r.Get("/reports/summary", a.handleSummary)
				r.Get("/reports/trend", a.handleTrend)
				r.Get("/reports/daily", a.handleDailyReport)
				r.Get("/reports/products/{name}", a.handleProductReport)
			})
		})
	})

	return r
}

type sessionKey struct{}

func sessionFromContext(r *http.Request) Session {
	s, _ := r.Context().Value(sessionKey{}).(Session)
	return s
}

func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		s, err := a.auth.ParseToken(strings.TrimSpace(authorization[len("Bearer "):]))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		ctx := service.WithActor(r.Context(), s.Actor())
		ctx = context.WithValue(ctx, sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := sessionFromContext(r).State.Role
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, session.ErrForbidden)
		})
	}
}

func (a *API) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut:
			contentType := strings.ToLower(r.Header.Get("Content-Type"))
			if strings.HasPrefix(contentType, "multipart/") {
				r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
			} else {
				r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(startedAt)),
		)
	})
}

// statusFor maps engine errors onto HTTP statuses. Anything unrecognised is a
// rejected operation rather than a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrForbidden), errors.Is(err, session.ErrIncorrectPIN):
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}

func (a *API) fail(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func (a *API) internalError(w http.ResponseWriter, r *http.Request, err error) {
	a.log.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies never carry internal detail.
	msg := err.Error()
	if status >= 500 {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
