package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sessionauth/gatekeeper/internal/api/metrics"
	"github.com/sessionauth/gatekeeper/internal/api/middleware"
	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

// SessionCookies writes and clears the session cookie.
type SessionCookies interface {
	Set(c echo.Context, token string) error
	Clear(c echo.Context)
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     SessionCookies
}

func NewAuthHandler(authService ports.AuthService, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Register creates a new user account and sends the browser to the login page.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Accept       json
// @Produce      plain
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      302
// @Failure      400   {string}  string  "User already exists"
// @Failure      429   {string}  string
// @Failure      500   {string}  string
// @Router       /register-user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	_, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		PasswordRepeat: req.PasswordRepeat,
		RemoteIP:       c.RealIP(),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.Redirect(http.StatusFound, "/login")
}

// Login checks the credentials, starts a session and sends the browser to
// the entry point.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Accept       json
// @Produce      plain
// @Param        body  body      loginRequest  true  "Login form"
// @Success      302
// @Failure      401   {string}  string  "Username or Password might be wrong"
// @Failure      429   {string}  string
// @Failure      500   {string}  string
// @Router       /login-user [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.ErrInvalidCredentials
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.ErrInvalidCredentials
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, c.RealIP())
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidCredentials) {
			result = "invalid_credentials"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}

	if err := h.cookies.Set(c, res.Token); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect(http.StatusFound, "/")
}

// Logout destroys the current session, if any, and sends the browser to the
// entry point.
//
// @Summary      Logout
// @Tags         auth
// @Produce      plain
// @Success      302
// @Failure      500   {string}  string  "Error during logout"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	err := h.authService.Logout(c.Request().Context(), middleware.TokenFrom(c), middleware.SessionFrom(c), c.RealIP())
	if err != nil {
		metrics.LogoutsTotal.WithLabelValues("error").Inc()
		return err
	}

	h.cookies.Clear(c)
	metrics.LogoutsTotal.WithLabelValues("ok").Inc()
	return c.Redirect(http.StatusFound, "/")
}

func registerResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return "duplicate"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
