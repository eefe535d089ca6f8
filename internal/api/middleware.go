package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"kaizen-online/internal/activity"
	"kaizen-online/internal/auth"
	"kaizen-online/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type contextKey string

const claimsContextKey = contextKey("claims")

// liveClient resolves the client named by the token and reports whether
// its current session is the one the token was issued for and still valid.
// A client that was released is not brought back. Must run on the event
// loop.
func (s *Server) liveClient(claims *auth.AppClaims) (*session.Client, bool) {
	c, ok := s.sessions.Resume(claims.ClientID)
	if !ok {
		return nil, false
	}
	sess := c.Manager.GetCurrentSession()
	if sess == nil || sess.ID.String() != claims.SessionID {
		return c, false
	}
	return c, c.Manager.IsSessionValid()
}

func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}

	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", "Invalid Authorization header format"
	}

	return headerParts[1], ""
}

func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, problem := bearerToken(r)
		if problem != "" {
			writeError(w, http.StatusUnauthorized, problem, false)
			return
		}

		claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", true)
			return
		}

		var live bool
		if err := s.onLoop(r, func() { _, live = s.liveClient(claims) }); err != nil {
			writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
			return
		}
		if !live {
			writeError(w, http.StatusUnauthorized, "session expired", true)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TrackRequests counts an authenticated request as user activity. It must
// run after AuthMiddleware.
func (s *Server) TrackRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := GetClaimsFromContext(r.Context()); claims != nil {
			err := s.onLoop(r, func() {
				if c, ok := s.sessions.Lookup(claims.ClientID); ok {
					c.Tracker.Track(activity.SignalRequest)
				}
			})
			if err != nil {
				s.log.Debug().Err(err).Msg("request activity not recorded")
			}
		}
		next.ServeHTTP(w, r)
	})
}

func GetClaimsFromContext(ctx context.Context) *auth.AppClaims {
	if claims, ok := ctx.Value(claimsContextKey).(*auth.AppClaims); ok {
		return claims
	}
	return nil
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
