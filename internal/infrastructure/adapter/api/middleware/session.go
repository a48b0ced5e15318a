package middleware

import (
	"net/http"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// SessionCookie describes the browser cookie that carries the session token
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration // Absolute session lifetime
}

// Set writes the session token cookie
func (sc SessionCookie) Set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sc.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session token cookie
func (sc SessionCookie) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token returns the token presented by the browser, if any
func (sc SessionCookie) Token(c *gin.Context) string {
	token, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return token
}

// LoadSession resolves the session cookie and stores the live session in the
// gin context. Unknown or expired tokens are cleared and the request continues
// anonymously.
func LoadSession(sessions usecase.SessionUseCase, cookie SessionCookie, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Token(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(sessionKey, session)
		case errs.IsSessionError(err):
			logger.Debug("Discarding stale session cookie", map[string]any{
				"request_id": GetRequestID(c),
				"reason":     err.Error(),
			})
			cookie.Clear(c)
		default:
			RenderError(c, logger, "Failed to resolve session", err)
			return
		}

		c.Next()
	}
}

// RequireSession redirects to the entry page unless LoadSession found a live session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session resolved for this request
func CurrentSession(c *gin.Context) (*entity.Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*entity.Session)
	return session, ok && session != nil
}

// ForgetSession drops the session from the request, e.g. after logout
func ForgetSession(c *gin.Context) {
	c.Set(sessionKey, (*entity.Session)(nil))
}
