package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password, remoteIP string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, token string, sess *domain.Session, remoteIP string) error
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password, remoteIP string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password, remoteIP)
}

func (s *stubAuthService) Logout(ctx context.Context, token string, sess *domain.Session, remoteIP string) error {
	return s.logoutFn(ctx, token, sess, remoteIP)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

type stubCookies struct {
	set     string
	cleared bool
	setErr  error
}

func (s *stubCookies) Set(_ echo.Context, token string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.set = token
	return nil
}

func (s *stubCookies) Clear(echo.Context) {
	s.cleared = true
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "Bob" || in.Email != "a@x.com" || in.PasswordRepeat != "secret" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{Username: "bob"}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubCookies{})

	req := formRequest("/register-user", url.Values{
		"email":     {"a@x.com"},
		"username":  {"Bob"},
		"password":  {"secret"},
		"pswrepeat": {"secret"},
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestAuthHandler_Register_JSONBody(t *testing.T) {
	e := newTestEcho()
	called := false
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			called = true
			if in.PasswordRepeat != "secret" {
				t.Fatalf("pswrepeat not bound: %+v", in)
			}
			return &domain.User{}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubCookies{})

	body := `{"email":"a@x.com","username":"bob","password":"secret","pswrepeat":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/register-user", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("service not called")
	}
}

func TestAuthHandler_Register_MissingField(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubCookies{})

	req := formRequest("/register-user", url.Values{"username": {"bob"}, "password": {"secret"}})
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Register(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "pswrepeat is required") {
		t.Fatalf("expected form field name in message, got %q", err.Error())
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, &stubCookies{})

	req := formRequest("/register-user", url.Values{
		"email": {"a@x.com"}, "username": {"bob"}, "password": {"secret"}, "pswrepeat": {"secret"},
	})
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	cookies := &stubCookies{}
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password, _ string) (*ports.LoginResult, error) {
			if username != "bob" || password != "secret" {
				t.Fatalf("unexpected credentials: %s %s", username, password)
			}
			return &ports.LoginResult{Token: "tok-1", User: &domain.User{Username: "bob"}}, nil
		},
	}
	handler := NewAuthHandler(stub, cookies)

	req := formRequest("/login-user", url.Values{"username": {"bob"}, "password": {"secret"}})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	if cookies.set != "tok-1" {
		t.Fatalf("expected session cookie for tok-1, got %q", cookies.set)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	e := newTestEcho()
	cookies := &stubCookies{}
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, cookies)

	req := formRequest("/login-user", url.Values{"username": {"ghost"}, "password": {"secret"}})
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if cookies.set != "" {
		t.Fatalf("no cookie expected on failed login")
	}
}

func TestAuthHandler_Login_EmptyFormIsBadCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, string) (*ports.LoginResult, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubCookies{})

	c := e.NewContext(formRequest("/login-user", url.Values{}), httptest.NewRecorder())

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Logout_WithoutSession(t *testing.T) {
	e := newTestEcho()
	cookies := &stubCookies{}
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, token string, sess *domain.Session, _ string) error {
			if token != "" || sess != nil {
				t.Fatalf("expected no session, got %q %+v", token, sess)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub, cookies)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 302 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if !cookies.cleared {
		t.Fatalf("expected cookie to be cleared")
	}
}

func TestAuthHandler_Logout_DestroyFailure(t *testing.T) {
	e := newTestEcho()
	cookies := &stubCookies{}
	stub := &stubAuthService{
		logoutFn: func(context.Context, string, *domain.Session, string) error {
			return domain.ErrSessionDestroy
		},
	}
	handler := NewAuthHandler(stub, cookies)

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), httptest.NewRecorder())

	if err := handler.Logout(c); !errors.Is(err, domain.ErrSessionDestroy) {
		t.Fatalf("expected ErrSessionDestroy, got %v", err)
	}
	if cookies.cleared {
		t.Fatalf("cookie should survive a failed logout")
	}
}
