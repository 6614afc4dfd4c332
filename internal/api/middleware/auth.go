package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/service"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

const (
	UserIDContextKey = "user_id"
	UserContextKey   = "user"
)

// Permission names checked on routes
const (
	PermOrdersRead  = "orders.read"
	PermOrdersWrite = "orders.write"
	PermVendorItems = "vendor.line_items"
	PermAccess      = "access.manage"
)

// Claims is the bearer token payload; id is the user id
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

var (
	errInvalidToken = stderrors.New("invalid token")
	errNoSecret     = stderrors.New("token secret not configured")
)

// ParseToken verifies an HS256 token and returns its claims. Tokens must carry an expiry.
func ParseToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, errNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// AuthMiddleware authenticates requests with a bearer JWT
func AuthMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	if secret == "" {
		logger.Error("JWT secret is empty, rejecting all authenticated requests")
	}
	return func(c *gin.Context) {
		if secret == "" {
			abort(c, http.StatusServiceUnavailable, errors.KindInternal, "authentication is not configured")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			logger.Debug("Rejected bearer token", zap.Error(err))
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "invalid or expired token")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "invalid token subject")
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// RequirePermission lets the request through when the authenticated user's role grants
// permission. Must run after AuthMiddleware.
func RequirePermission(access service.AccessControl, permission string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			abort(c, http.StatusUnauthorized, errors.KindUnauthorized, "unauthenticated")
			return
		}

		user, err := access.Authorize(c.Request.Context(), userID, permission)
		if err != nil {
			switch errors.KindOf(err) {
			case errors.KindUnauthorized:
				abort(c, http.StatusUnauthorized, errors.KindUnauthorized, err.Error())
			case errors.KindForbidden:
				abort(c, http.StatusForbidden, errors.KindForbidden, err.Error())
			default:
				logger.Error("Permission check failed", zap.String("user_id", userID.String()), zap.Error(err))
				abort(c, http.StatusInternalServerError, errors.KindInternal, "internal server error")
			}
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// GetUserIDFromContext returns the user id AuthMiddleware extracted from the token
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(UserIDContextKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// GetUserFromContext retrieves the authorized user from the Gin context
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	user, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*domain.User)
	return u, ok
}

// Actor names who performed a request in the order timeline
func Actor(c *gin.Context) string {
	if user, ok := GetUserFromContext(c); ok && user.Email != "" {
		return user.Email
	}
	return domain.DefaultActor
}

func abort(c *gin.Context, status int, kind errors.Kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"kind":    kind,
		"message": message,
	})
}
