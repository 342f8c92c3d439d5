package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/utils"
)

// AuthRequired exige un Bearer token valide et place user_id, email et
// role dans le context Gin.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token manquant"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Printf("❌ Format Authorization invalide: %d parties", len(parts))
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Format Authorization invalide"})
			c.Abort()
			return
		}

		claims, err := utils.ParseJWT(parts[1], secret)
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token invalide"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			log.Printf("❌ user_id manquant dans claims: %+v", claims)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token invalide"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("email", claims["email"])
		c.Set("role", claims["role"])

		c.Next()
	}
}

// OptionalAuth décode le token s'il est présent mais laisse passer les
// requêtes anonymes. Utilisé pour la création de commande invité.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := utils.ParseJWT(parts[1], secret)
		if err != nil {
			// Token présent mais invalide : on traite la requête en invité.
			log.Printf("⚠️ Token optionnel invalide, requête traitée en invité: %v", err)
			c.Next()
			return
		}

		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			c.Set("user_id", userID)
			c.Set("email", claims["email"])
			c.Set("role", claims["role"])
		}

		c.Next()
	}
}
