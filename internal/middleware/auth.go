package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fieldserve/marketplace-core/internal/config"
)

const (
	ContextActorID   = "actorID"
	ContextCompanyID = "companyID"
	ContextActorRole = "actorRole"
)

// AuthMiddleware verifies the bearer token and exposes the actor to the
// handlers. The core trusts the actor it is handed.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_claims"})
			return
		}

		actorID, ok := claims["sub"].(string)
		if !ok || actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}
		companyID, _ := claims["companyId"].(string)
		role, _ := claims["role"].(string)

		c.Set(ContextActorID, actorID)
		c.Set(ContextCompanyID, companyID)
		c.Set(ContextActorRole, role)

		c.Next()
	}
}

// ActorID reads the authenticated actor set by AuthMiddleware.
func ActorID(c *gin.Context) string {
	return c.GetString(ContextActorID)
}
