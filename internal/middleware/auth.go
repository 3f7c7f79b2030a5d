package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"portfolio/internal/config"
	apperrors "portfolio/internal/errors"
)

const tokenExpiry = 24 * time.Hour

// Context keys set by AuthMiddleware.
const (
	ContextTenantID = "tenantID"
	ContextActorID  = "actorID"
	contextPerms    = "permissions"
)

// Permission claims checked per route.
const (
	PermAssetsCreate = "assets.create"
	PermAssetsView   = "assets.view"
	PermAssetsUpdate = "assets.update"
	PermAssetsDelete = "assets.delete"
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// Claims represents the claims in the JWT: the tenant the request is scoped
// to, the acting user, and the permissions granted to them.
type Claims struct {
	TenantID    string   `json:"tenant_id"`
	ActorID     string   `json:"actor_id"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given tenant, actor, and permissions.
// Identity management itself lives outside this service; tokens are issued
// by the platform's auth module and only validated here.
func GenerateToken(tenantID, actorID string, permissions []string) (string, error) {
	claims := &Claims{
		TenantID:    tenantID,
		ActorID:     actorID,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "portfolio-api",
			Subject:   actorID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// parseToken validates the signature and expiry of a bearer token.
func parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TenantID == "" {
		return nil, fmt.Errorf("token missing tenant")
	}
	return claims, nil
}

// AuthMiddleware verifies the bearer token and stores tenant, actor, and
// permissions on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := parseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextTenantID, claims.TenantID)
		c.Set(ContextActorID, claims.ActorID)
		c.Set(contextPerms, claims.Permissions)
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the token carries the given
// permission claim.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, exists := c.Get(contextPerms)
		if !exists {
			c.JSON(apperrors.ErrUnauthorized.StatusCode, gin.H{
				"error": gin.H{"code": apperrors.ErrUnauthorized.Code, "message": apperrors.ErrUnauthorized.Message},
			})
			c.Abort()
			return
		}
		for _, p := range perms.([]string) {
			if p == permission {
				c.Next()
				return
			}
		}
		c.JSON(apperrors.ErrForbidden.StatusCode, gin.H{
			"error": gin.H{"code": apperrors.ErrForbidden.Code, "message": apperrors.ErrForbidden.Message},
		})
		c.Abort()
	}
}
