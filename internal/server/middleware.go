package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"foodshare/internal/metrics"
	"foodshare/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyAccount   contextKey = "account"
	contextKeyRequestID contextKey = "request_id"
)

const headerRequestID = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	unmatched  bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		done := s.metrics.RequestStarted()
		next.ServeHTTP(rw, r)
		done()

		elapsed := time.Since(started)
		route := r.URL.Path
		if rw.unmatched {
			route = metrics.UnmatchedRoute
		}
		s.metrics.ObserveRequest(r.Method, route, rw.statusCode, elapsed)

		requestID, _ := r.Context().Value(contextKeyRequestID).(string)
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
			"request_id":  requestID,
		}).Info("http request")
	})
}

// RequireAuth loads the account behind the session cookie and adds it to the
// request context. Requests without a usable session get a 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ctx = r.Context()

		accountID, err := s.sessionAccountID(r)
		if err != nil {
			s.logger.WithError(err).Debug("no valid session")

			s.setRedirectCookie(w, r.URL.RequestURI(), time.Minute*5)
			s.writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		account, err := s.accounts.Account(ctx, accountID)
		if err != nil {
			if errors.Is(err, types.ErrAccountNotFound) {
				s.clearSession(w)
				s.writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			s.logger.WithError(err).WithField("account_id", accountID).Error("failed to load session account")
			s.internalServerError(w)
			return
		}

		if !account.IsActive {
			s.clearSession(w)
			s.writeError(w, http.StatusForbidden, "Your account has been disabled")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"account_id": account.ID,
			"staff":      account.IsStaff,
		}).Debug("authenticated account")

		ctx = context.WithValue(ctx, contextKeyAccount, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff must run after RequireAuth.
func (s *Service) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := accountFromContext(r.Context())
		if account == nil || !account.IsStaff {
			s.writeError(w, http.StatusForbidden, "Staff access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleNotFound answers requests that matched no route.
func (s *Service) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if rw, ok := w.(*responseWriter); ok {
		rw.unmatched = true
	}
	s.writeError(w, http.StatusNotFound, "Not found")
}

// noSniff stops browsers from guessing a content type for stored uploads.
func noSniff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") && !strings.HasPrefix(path, "/media/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// 308 keeps the method and body of POSTs
			http.Redirect(w, r, newURL.String(), http.StatusPermanentRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func accountFromContext(ctx context.Context) *types.Account {
	account, _ := ctx.Value(contextKeyAccount).(*types.Account)
	return account
}
