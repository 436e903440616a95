package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Actor context keys
const (
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// ActorConfig configures the actor middleware
type ActorConfig struct {
	// Verifier checks bearer tokens. Nil disables token parsing and every
	// request runs as the anonymous actor.
	Verifier *auth.TokenVerifier
	// Required rejects requests that carry no token
	Required bool
	// SkipPaths never require a token
	SkipPaths []string
	Logger    *zap.Logger
}

// Actor resolves the acting user from a bearer token. A presented token must
// be valid even when tokens are optional.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)

		if header == "" || cfg.Verifier == nil {
			_, skipped := skip[c.Request.URL.Path]
			if cfg.Required && !skipped {
				abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
				return
			}
			c.Set(ActorKey, shared.Actor{})
			c.Next()
			return
		}

		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Verifier.Verify(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			logger.Enrich(c.Request.Context(), log).Debug("bearer token rejected", zap.Error(err))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		actor := claims.Actor()
		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), actor.UserID))
		c.Next()
	}
}

// GetActor returns the actor resolved for this request; anonymous if none
func GetActor(c *gin.Context) shared.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(shared.Actor); ok {
			return actor
		}
	}
	return shared.Actor{}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
