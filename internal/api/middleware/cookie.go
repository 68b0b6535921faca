package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const DefaultCookieName = "sid"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secret string
	TTL    time.Duration
	// Secure must be true when the app is served over HTTPS.
	Secure bool
}

// CookieCodec carries the opaque session token to the client as an HS256
// JWT whose jti is the token, signed with the session secret. Tampered or
// expired cookies decode to no token.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewCookieCodec(cfg CookieConfig) *CookieCodec {
	name := cfg.Name
	if name == "" {
		name = DefaultCookieName
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CookieCodec{
		name:   name,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		secure: cfg.Secure,
		now:    time.Now,
	}
}

// Name is the cookie name.
func (cc *CookieCodec) Name() string {
	return cc.name
}

// Encode signs token into a cookie value.
func (cc *CookieCodec) Encode(token string) (string, error) {
	if token == "" {
		return "", errors.New("empty session token")
	}
	now := cc.now()
	claims := jwt.RegisteredClaims{
		ID:        token,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cc.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.secret)
}

// Decode verifies value and returns the session token it carries.
func (cc *CookieCodec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return cc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(cc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.ID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.ID, nil
}

// Token returns the session token of the request, or "" when the cookie is
// absent or does not verify.
func (cc *CookieCodec) Token(c echo.Context) string {
	cookie, err := c.Cookie(cc.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, err := cc.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return token
}

// Set writes the session cookie for token.
func (cc *CookieCodec) Set(c echo.Context, token string) error {
	value, err := cc.Encode(token)
	if err != nil {
		return err
	}
	c.SetCookie(cc.cookie(value, int(cc.ttl.Seconds()), cc.now().Add(cc.ttl)))
	return nil
}

// Clear expires the session cookie on the client.
func (cc *CookieCodec) Clear(c echo.Context) {
	c.SetCookie(cc.cookie("", -1, time.Unix(0, 0)))
}

func (cc *CookieCodec) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cc.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
