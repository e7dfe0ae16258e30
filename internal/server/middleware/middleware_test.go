package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/service/auth"
)

type fakeAuth map[string]models.User

func (f fakeAuth) Verify(_ context.Context, token string) (*auth.Claims, error) {
	if _, ok := f[token]; !ok {
		return nil, apperr.Auth("invalid token")
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: token}}, nil
}

func (f fakeAuth) CurrentUser(claims *auth.Claims) (models.User, error) {
	return f[claims.Subject], nil
}

func newEngine(authn Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ZapLogger(nil), ErrorHandler(nil))
	r.NoRoute(NotFound())

	r.GET("/open", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": GetRequestID(c)}) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("driver: bad connection")) })

	secured := r.Group("/", Auth(authn))
	secured.GET("/me", func(c *gin.Context) {
		actor, _ := Actor(c)
		claims, _ := Claims(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "sub": claims.Subject})
	})
	secured.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newEngine(fakeAuth{})

	w := do(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{"id":"req-42"}`, w.Body.String())
}

func TestAuthAndRoles(t *testing.T) {
	r := newEngine(fakeAuth{
		"user-token":  {ID: 1, Role: models.RoleUser},
		"admin-token": {ID: 11, Role: models.RoleAdmin},
	})

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "unauthorized", body.Code)
	assert.NotEmpty(t, body.Timestamp)

	w = do(r, "/me", "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", "user-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"sub":"user-token"}`, w.Body.String())

	w = do(r, "/admin", "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeError(t, w).Code)

	w = do(r, "/admin", "admin-token")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	r := newEngine(fakeAuth{})

	w := do(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "internal_error", body.Code)

	w = do(r, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://dashboard.printrun.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://dashboard.printrun.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://dashboard.printrun.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
