package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bakery-service/logger"
	"bakery-service/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func authRouter() *gin.Engine {
	a := NewAuthenticator(testSecret, zap.NewNop())
	r := gin.New()
	r.GET("/me", a.AuthRequired(), func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user": p.UserID, "role": p.Role, "name": p.Name})
	})
	r.GET("/admin", a.AuthRequired(), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_BearerToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":  "user-42",
		"role": "customer",
		"name": "Asha",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := do(authRouter(), "/me", map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-42", body["user"])
	assert.Equal(t, "customer", body["role"])
	assert.Equal(t, "Asha", body["name"])
}

func TestAuthRequired_UserIDClaimFallback(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": "user-7"})

	w := do(authRouter(), "/me", map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-7")
}

func TestAuthRequired_Rejections(t *testing.T) {
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "user-42", "exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-42"})
	noSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"role": "admin"})

	cases := map[string]map[string]string{
		"no credentials": {},
		"expired":        {"Authorization": "Bearer " + expired},
		"wrong key":      {"Authorization": "Bearer " + wrongKey},
		"no subject":     {"Authorization": "Bearer " + noSubject},
		"not bearer":     {"Authorization": "Basic dXNlcjpwYXNz"},
	}
	for name, headers := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(authRouter(), "/me", headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRequired_GatewayHeaders(t *testing.T) {
	w := do(authRouter(), "/me", map[string]string{"X-User-ID": "user-9", "X-User-Role": "admin"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestAdminOnly(t *testing.T) {
	r := authRouter()

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", map[string]string{"X-User-ID": "u1"}).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", map[string]string{"X-User-ID": "u1", "X-User-Role": models.RoleAdmin}).Code)
}

func TestRequestID_PropagatesToContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	w := do(r, "/", map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	w = do(r, "/", nil)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/", nil).Code)

	assert.Equal(t, 1, rl.Sweep(time.Now()))
	assert.Equal(t, 0, rl.Sweep(time.Now().Add(2*time.Minute)))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, "/", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example.com/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, "/", map[string]string{"Origin": "https://shop.example.com"})
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, "/", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := do(r, "/", nil)
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}

func TestStatusRange(t *testing.T) {
	assert.Equal(t, "2xx", statusRange(201))
	assert.Equal(t, "4xx", statusRange(404))
	assert.Equal(t, "5xx", statusRange(503))
	assert.Equal(t, "unknown", statusRange(0))
}
