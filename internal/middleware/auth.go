package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/marketgo/storefront-api/internal/model"
)

const principalKey = "principal"

// AuthMiddleware verifies the bearer token and resolves the caller into a
// model.Principal exactly once; downstream handlers read it via GetPrincipal.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid user id"})
			return
		}

		role, _ := claims["role"].(string)
		c.Set(principalKey, model.Principal{UserID: userID, Role: model.Role(role)})
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin only"})
			return
		}
		c.Next()
	}
}

func SellerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).IsSeller() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "seller only"})
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) model.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(model.Principal)
	return p
}
