package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/customs-tracking/internal/api/middleware"
	"github.com/99minutos/customs-tracking/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email, role string) (*domain.Operator, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.Operator, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
	return s.registerFn(ctx, username, password, email, role)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.Operator, error) {
	return s.loginFn(ctx, username, password)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
			if username != "alice" || role != domain.RoleOperator || email != "a@example.com" {
				t.Fatalf("unexpected args: %s %s %s", username, role, email)
			}
			return &domain.Operator{ID: "op-1", Username: username, Role: role, PasswordHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/auth/register", `{"username":"alice","password":"secret-pw","email":"a@example.com","role":"operator"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	op, ok := resp["operator"].(map[string]any)
	if !ok {
		t.Fatalf("expected operator in response")
	}
	if op["username"] != "alice" || op["role"] != "operator" {
		t.Fatalf("unexpected operator payload: %+v", op)
	}
	if _, leaked := op["password_hash"]; leaked {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_OperatorExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
			return nil, domain.ErrOperatorExists
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/auth/register", `{"username":"bob","password":"long-enough","role":"operator"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.Register(c); !errors.Is(err, domain.ErrOperatorExists) {
		t.Fatalf("expected ErrOperatorExists, got %v", err)
	}
}

func TestAuthHandler_Register_SelfServiceAdminRejected(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
			t.Fatalf("admin must not be created without operators:manage")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/auth/register", `{"username":"mallory","password":"long-enough","role":"admin"}`)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := handler.Register(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// An operator token does not carry operators:manage either.
	c = e.NewContext(jsonRequest(http.MethodPost, "/v1/operators", `{"username":"mallory","password":"long-enough","role":"admin"}`), httptest.NewRecorder())
	c.Set(middleware.CtxRole, domain.RoleOperator)
	c.Set(middleware.CtxPerms, domain.PermissionsFor(domain.RoleOperator))
	if err := handler.Register(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthHandler_Register_AdminByManager(t *testing.T) {
	e := newEcho()
	var gotRole string
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
			gotRole = role
			return &domain.Operator{ID: "op-9", Username: username, Role: role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/operators", `{"username":"dana","password":"long-enough","role":"admin"}`), rec)
	c.Set(middleware.CtxRole, domain.RoleAdmin)
	c.Set(middleware.CtxPerms, domain.PermissionsFor(domain.RoleAdmin))
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || gotRole != domain.RoleAdmin {
		t.Fatalf("unexpected result: %d role=%q", rec.Code, gotRole)
	}
}

func TestAuthHandler_Register_DefaultsToOperator(t *testing.T) {
	e := newEcho()
	var gotRole string
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
			gotRole = role
			return &domain.Operator{ID: "op-3", Username: username, Role: role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"username":"erin","password":"long-enough"}`), httptest.NewRecorder())
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotRole != domain.RoleOperator {
		t.Fatalf("expected operator role, got %q", gotRole)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"username":`, http.StatusBadRequest},
		{"short password", `{"username":"bob","password":"x","role":"admin"}`, http.StatusUnprocessableEntity},
		{"unknown role", `{"username":"bob","password":"long-enough","role":"client"}`, http.StatusUnprocessableEntity},
		{"bad email", `{"username":"bob","password":"long-enough","role":"admin","email":"nope"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", tt.body), httptest.NewRecorder())
			if got := httpCode(t, handler.Register(c)); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.Operator, error) {
			if username != "alice" || password != "secret-pw" {
				t.Fatalf("unexpected credentials: %s/%s", username, password)
			}
			return "token-123", &domain.Operator{Username: "alice", Role: domain.RoleAdmin}, nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret-pw"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token-123" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.Operator, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`), httptest.NewRecorder())
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice"}`), httptest.NewRecorder())
	if got := httpCode(t, handler.Login(c)); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", got)
	}
}
