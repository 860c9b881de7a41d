package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/auth"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/utils"
)

// ContextKeyPrincipal holds the principal name in the gin context.
const ContextKeyPrincipal = constants.ContextKeyPrincipal

// AuthMiddleware authenticates bearer tokens and attaches the resolved
// principal, with its permissions, to the request context.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	resolver   permission.Resolver
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, resolver permission.Resolver, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		resolver:   resolver,
		logger:     logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			if stderrors.Is(err, jwt.ErrTokenExpired) {
				utils.ErrorResponseWithError(c, errors.NewTokenExpiredError())
			} else {
				utils.ErrorResponseWithError(c, errors.NewTokenInvalidError())
			}
			c.Abort()
			return
		}

		principal, err := m.resolver.Resolve(c.Request.Context(), claims.Principal)
		if err != nil {
			m.logger.Errorw("failed to resolve principal", "principal", claims.Principal, "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextKeyPrincipal, principal.Name)
		c.Request = c.Request.WithContext(permission.WithPrincipal(c.Request.Context(), principal))

		c.Next()
	}
}
