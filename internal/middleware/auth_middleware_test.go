package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	authed := engine.Group("", AuthMiddleware())
	authed.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("userID"),
			"role":    c.GetString("userRole"),
		})
	})
	authed.GET("/admin-only", RoleAuthMiddleware("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func doRequest(engine *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	utils.InitJWT("middleware-test-secret", time.Hour)
	engine := newTestRouter()

	token, err := utils.GenerateAccessToken(7, "mary", "cashier")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	cases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(engine, "/whoami", tc.header)
			if w.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tc.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	utils.InitJWT("middleware-test-secret", time.Hour)
	engine := newTestRouter()

	cashierToken, err := utils.GenerateAccessToken(7, "mary", "cashier")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	adminToken, err := utils.GenerateAccessToken(1, "boss", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if w := doRequest(engine, "/admin-only", "Bearer "+cashierToken); w.Code != http.StatusForbidden {
		t.Errorf("cashier must get 403 on admin route, got %d", w.Code)
	}
	if w := doRequest(engine, "/admin-only", "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Errorf("admin must get 200 on admin route, got %d", w.Code)
	}
}
