package server

import (
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/coopfoods/ajomart/internal/auth/domain"
	"go.uber.org/zap"
)

const (
	// SessionCookieName carries the opaque session token. HttpOnly always;
	// Secure follows AUTH_COOKIE_SECURE.
	SessionCookieName = "ajomart_session"

	sessionContextKey = "ajomart.session"
)

// RequestLogger logs one line per request after the handler chain runs.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// AuthRequired resolves the session cookie and stores the session on the
// gin context. Requests without a live session are rejected.
func AuthRequired(auth authdomain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// AdminRequired gates admin routes. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !session.HasRole(authdomain.RoleAdmin) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func SessionFromContext(c *gin.Context) (authdomain.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return authdomain.Session{}, false
	}
	session, ok := value.(authdomain.Session)
	return session, ok
}
