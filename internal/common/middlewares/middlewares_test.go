package middlewares

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/pkg/utils"
)

var testSecret = []byte("middleware-secret")

func newEcho(revoked *utils.RevocationList) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.Nop())
	e.Use(Session(SessionConfig{Secret: testSecret, Revoked: revoked}))
	e.GET("/whoami", func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, claims.UserID)
	})
	e.GET("/private", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireSession())
	e.GET("/staff", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireSession(), RequireUserType("staff"))
	return e
}

func token(t *testing.T, userType string) (string, *utils.Claims) {
	t.Helper()
	tok, claims, err := utils.GenerateJWTToken(testSecret, "user-1", userType, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	return tok, claims
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionSources(t *testing.T) {
	e := newEcho(nil)
	tok, _ := token(t, "patient")

	tests := []struct {
		name    string
		prepare func(*http.Request)
		want    string
	}{
		{"none", func(*http.Request) {}, "anonymous"},
		{"bearer", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }, "user-1"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "bearer "+tok) }, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok}) }, "user-1"},
		{"garbage", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt") }, "anonymous"},
		{"basic auth", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic Zm9vOmJhcg==") }, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.prepare(req)
			if got := serve(e, req).Body.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionIgnoresRevokedToken(t *testing.T) {
	revoked := utils.NewRevocationList()
	e := newEcho(revoked)
	tok, claims := token(t, "patient")
	revoked.Revoke(claims.ID, claims.ExpiresAt.Time)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	if got := serve(e, req).Body.String(); got != "anonymous" {
		t.Errorf("revoked token accepted: %q", got)
	}
}

func TestRequireSessionAndUserType(t *testing.T) {
	e := newEcho(nil)
	patient, _ := token(t, "patient")
	staff, _ := token(t, "staff")

	tests := []struct {
		path  string
		token string
		code  int
	}{
		{"/private", "", http.StatusUnauthorized},
		{"/private", patient, http.StatusNoContent},
		{"/staff", "", http.StatusUnauthorized},
		{"/staff", patient, http.StatusForbidden},
		{"/staff", staff, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
		}
		if rec := serve(e, req); rec.Code != tt.code {
			t.Errorf("%s with token=%v: status %d, want %d", tt.path, tt.token != "", rec.Code, tt.code)
		}
	}
}

func TestHTTPErrorHandlerRecoversPanics(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.Nop())
	e.Use(echomw.Recover())
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status  int     `json:"status"`
		Message string  `json:"message"`
		Data    *string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != 500 || body.Message != "Internal server error" || body.Data != nil {
		t.Errorf("body = %+v", body)
	}
}

func TestRequestLoggerWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(ContextLogger(logger))
	e.Use(RequestLogger(logger))
	e.GET("/ping", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("inside")
		return c.NoContent(http.StatusNoContent)
	})

	serve(e, httptest.NewRequest(http.MethodGet, "/ping", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %q", lines)
	}
	var inside, request map[string]any
	json.Unmarshal([]byte(lines[0]), &inside)
	json.Unmarshal([]byte(lines[1]), &request)
	if inside["request_id"] == "" || inside["request_id"] != request["request_id"] {
		t.Errorf("request ids differ: %v vs %v", inside["request_id"], request["request_id"])
	}
	if request["uri"] != "/ping" || request["status"] != float64(204) || request["method"] != "GET" {
		t.Errorf("request line = %v", request)
	}
}
