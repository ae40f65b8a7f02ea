package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
		field   string
	}{
		{"validation", apperrors.NewValidationError("responses.3", "Required field 3 is missing"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Required field 3 is missing", "responses.3"},
		{"bad request", apperrors.NewBadRequestError("bad id"), http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "bad id", ""},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", ""},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", ""},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", ""},
		{"forbidden", apperrors.NewForbiddenError("You do not have permission to perform this action"), http.StatusForbidden, dto.ErrorCodeForbidden, "You do not have permission to perform this action", ""},
		{"not found", apperrors.ErrBookNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "book not found", ""},
		{"conflict", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "email already exists", "email"},
		{"wrapped not found", errors.Join(errors.New("ctx"), apperrors.ErrResourceNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, tt.field, resp.Error.Field)
		})
	}
}

type fakeAuthenticator struct {
	actor *appauth.Actor
	err   error
	token string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*appauth.Actor, error) {
	f.token = token
	return f.actor, f.err
}

type fakeChecker struct {
	allow bool
}

func (f fakeChecker) Authorize(_ context.Context, actor *appauth.Actor, _ appauth.Resource, _ appauth.Action, _ *int64) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	if !f.allow {
		return apperrors.NewForbiddenError("You do not have permission to perform this action")
	}
	return nil
}

func newAuthRouter(authn Authenticator, checker PermissionChecker) *gin.Engine {
	m := NewAuthMiddleware(authn, checker)
	r := gin.New()
	r.GET("/secure", m.JWTAuth(), m.RequirePermission(appauth.ResourceBooks, appauth.ActionList), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userID": actor.UserID})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	actor := &appauth.Actor{UserID: 7, Role: models.RoleStudent}

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		newAuthRouter(&fakeAuthenticator{actor: actor}, fakeChecker{allow: true}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Token abc")
		newAuthRouter(&fakeAuthenticator{actor: actor}, fakeChecker{allow: true}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer old")
		newAuthRouter(&fakeAuthenticator{err: apperrors.ErrTokenExpired}, fakeChecker{allow: true}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		authn := &fakeAuthenticator{actor: actor}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "bearer good")
		newAuthRouter(authn, fakeChecker{allow: true}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "good", authn.token)
		assert.JSONEq(t, `{"userID":7}`, w.Body.String())
	})

	t.Run("permission denied", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer good")
		newAuthRouter(&fakeAuthenticator{actor: actor}, fakeChecker{allow: false}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)
	})
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Error.Code)
}
