package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"momentary/internal/security"
	"momentary/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const TelegramIDContextKey ContextKey = "telegram_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	limiter      *security.RateLimiter
	allowOrigins map[string]bool
	cookieSecure bool
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, allowOrigins []string, cookieSecure bool) *Middleware {
	origins := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		origins[o] = true
	}
	return &Middleware{
		authService:  authService,
		limiter:      security.NewRateLimiter(10, time.Minute),
		allowOrigins: origins,
		cookieSecure: cookieSecure,
	}
}

// RequireSession is middleware that requires a valid session cookie
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		telegramID, ok := m.authService.VerifySession(cookie.Value)
		if !ok {
			// Clear the invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(m.cookieSecure))
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), TelegramIDContextKey, telegramID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// CORS sets cross-origin headers for configured origins
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (m.allowOrigins["*"] || m.allowOrigins[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetTelegramIDFromContext retrieves the session's Telegram id from the
// request context
func GetTelegramIDFromContext(ctx context.Context) (int64, bool) {
	telegramID, ok := ctx.Value(TelegramIDContextKey).(int64)
	return telegramID, ok
}
