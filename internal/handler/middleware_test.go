package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/service"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()

	svc, err := service.NewAuthService(nil, config.AuthConfig{
		JWTSecret:     testSecret,
		JWTAccessTTL:  "15m",
		JWTRefreshTTL: "720h",
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func signTestToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"loginId": "alice",
		"sub":     subject,
		"iat":     jwt.NewNumericDate(time.Now()),
		"exp":     jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestRouter(authSvc *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(authSvc), func(c *gin.Context) {
		user := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"userId": user.ID, "loginId": user.LoginID})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(newTestAuthService(t))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + signTestToken(t, "7", -time.Minute), http.StatusUnauthorized},
		{"valid token", "Bearer " + signTestToken(t, "7", 15*time.Minute), http.StatusOK},
		{"non-numeric subject", "Bearer " + signTestToken(t, "alice", 15*time.Minute), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestWriteIssueErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{service.ErrNoWorkspace, http.StatusBadRequest},
		{fmt.Errorf("%w: token missing", service.ErrNotConfigured), http.StatusBadRequest},
		{service.ErrIssueNotFound, http.StatusNotFound},
		{service.ErrAlreadyAnalyzing, http.StatusConflict},
		{fmt.Errorf("%w: connection refused", service.ErrTrackerUnavailable), http.StatusBadGateway},
		{fmt.Errorf("some db failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		writeIssueError(c, tt.err)

		if rec.Code != tt.wantStatus {
			t.Errorf("writeIssueError(%v) = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:3000"}, true))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin %q for unlisted origin", got)
	}
}
