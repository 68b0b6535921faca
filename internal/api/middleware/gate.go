package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sessionauth/gatekeeper/internal/api/metrics"
	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

const (
	ctxSession = "session"
	ctxToken   = "session_token"
)

// Gate decides whether a request carries a valid session.
type Gate struct {
	sessions ports.SessionManager
	cookies  *CookieCodec
	// refresh re-issues the cookie on every authenticated request, for
	// sliding sessions.
	refresh bool
}

func NewGate(sessions ports.SessionManager, cookies *CookieCodec, refresh bool) *Gate {
	return &Gate{sessions: sessions, cookies: cookies, refresh: refresh}
}

// Authenticated resolves the session cookie of c. When it reports true the
// session is attached to c (see SessionFrom). The error is non-nil only when
// the session store failed.
func (g *Gate) Authenticated(c echo.Context) (bool, error) {
	token := g.cookies.Token(c)
	if token == "" {
		return false, nil
	}
	c.Set(ctxToken, token)

	sess, err := g.sessions.Resolve(c.Request().Context(), token)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	WithSession(c, sess)

	if g.refresh {
		if err := g.cookies.Set(c, token); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Require lets authenticated requests through and redirects the rest to
// redirectTo before the handler runs.
func (g *Gate) Require(redirectTo string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := g.Authenticated(c)
			if err != nil {
				return err
			}
			if !ok {
				metrics.GateRedirectsTotal.WithLabelValues(c.Path()).Inc()
				return c.Redirect(http.StatusFound, redirectTo)
			}
			return next(c)
		}
	}
}

// Optional attaches the session when there is one and never redirects.
func (g *Gate) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := g.Authenticated(c); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// WithSession attaches sess to c for SessionFrom.
func WithSession(c echo.Context, sess *domain.Session) {
	c.Set(ctxSession, sess)
}

// SessionFrom returns the session attached by the gate, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(ctxSession).(*domain.Session)
	return sess
}

// TokenFrom returns the verified session token of the request, or "".
// The token may no longer resolve to a session.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(ctxToken).(string)
	return token
}
