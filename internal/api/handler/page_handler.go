package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sessionauth/gatekeeper/internal/api/middleware"
	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

const joinDateLayout = "1/2/2006"

// PageData is handed to every page template.
type PageData struct {
	Title    string
	Username string
	Email    string
	Joined   string
}

// PageHandler renders the HTML pages.
type PageHandler struct {
	authService ports.AuthService
}

func NewPageHandler(authService ports.AuthService) *PageHandler {
	return &PageHandler{authService: authService}
}

// Index sends the browser to the dashboard; the gate in front of it takes
// care of anonymous visitors.
func (h *PageHandler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/dashboard")
}

func (h *PageHandler) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login", PageData{Title: "Login"})
}

func (h *PageHandler) Register(c echo.Context) error {
	return c.Render(http.StatusOK, "register", PageData{Title: "Register"})
}

func (h *PageHandler) Dashboard(c echo.Context) error {
	return c.Render(http.StatusOK, "dashboard", PageData{Title: "Dashboard", Username: sessionUsername(c)})
}

func (h *PageHandler) Forum(c echo.Context) error {
	return c.Render(http.StatusOK, "forum", PageData{Title: "Forum", Username: sessionUsername(c)})
}

// Profile shows the account of the signed-in user. A session whose user no
// longer exists is sent back to the login page.
func (h *PageHandler) Profile(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	user, err := h.authService.Profile(c.Request().Context(), sess.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return c.Redirect(http.StatusFound, "/login")
	}
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "profile", PageData{
		Title:    "Profile",
		Username: user.Username,
		Email:    user.Email,
		Joined:   FormatJoinDate(user.CreatedAt),
	})
}

// FormatJoinDate renders t as month/day/year, or "Unknown" for the zero time.
func FormatJoinDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format(joinDateLayout)
}

func sessionUsername(c echo.Context) string {
	if sess := middleware.SessionFrom(c); sess != nil {
		return sess.Username
	}
	return ""
}
