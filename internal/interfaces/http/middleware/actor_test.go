package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActorRouter(cfg ActorConfig, seen *shared.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Actor(cfg))
	handler := func(c *gin.Context) {
		*seen = GetActor(c)
		c.Status(http.StatusOK)
	}
	router.GET("/api/v1/health", handler)
	router.GET("/api/v1/products", handler)
	return router
}

func TestActor(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: "test-secret", Issuer: "pos"})
	cashier := shared.Actor{UserID: "u-17", UserName: "cashier17"}

	valid, err := verifier.Sign(cashier, time.Hour)
	require.NoError(t, err)
	expired, err := verifier.Sign(cashier, -time.Hour)
	require.NoError(t, err)

	get := func(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if authHeader != "" {
			req.Header.Set(AuthHeaderKey, authHeader)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("optional tokens: anonymous without header", func(t *testing.T) {
		var seen shared.Actor
		w := get(newActorRouter(ActorConfig{Verifier: verifier}, &seen), "/api/v1/products", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, seen.IsAnonymous())
	})

	t.Run("valid token sets the actor", func(t *testing.T) {
		var seen shared.Actor
		w := get(newActorRouter(ActorConfig{Verifier: verifier}, &seen), "/api/v1/products", BearerPrefix+valid)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, cashier, seen)
	})

	t.Run("presented bad token is rejected even when optional", func(t *testing.T) {
		var seen shared.Actor
		w := get(newActorRouter(ActorConfig{Verifier: verifier}, &seen), "/api/v1/products", BearerPrefix+"garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		var seen shared.Actor
		w := get(newActorRouter(ActorConfig{Verifier: verifier}, &seen), "/api/v1/products", BearerPrefix+expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeTokenExpired)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		var seen shared.Actor
		w := get(newActorRouter(ActorConfig{Verifier: verifier}, &seen), "/api/v1/products", "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("required tokens", func(t *testing.T) {
		var seen shared.Actor
		router := newActorRouter(ActorConfig{Verifier: verifier, Required: true, SkipPaths: []string{"/api/v1/health"}}, &seen)

		w := get(router, "/api/v1/products", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeUnauthorized)
		assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))

		w = get(router, "/api/v1/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no verifier ignores tokens", func(t *testing.T) {
		var seen shared.Actor
		w := get(newActorRouter(ActorConfig{}, &seen), "/api/v1/products", BearerPrefix+valid)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, seen.IsAnonymous())
	})
}
