package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// WebSocket upgrade requests (alert stream) carry the token in a
		// query parameter or the subprotocol header instead of Authorization.
		if c.GetHeader("Upgrade") == "websocket" {
			token := c.Query("token")
			if token == "" {
				// Format: "authorization.bearer.<token>"
				subprotocols := c.GetHeader("Sec-WebSocket-Protocol")
				parts := strings.Split(subprotocols, ".")
				if len(parts) >= 3 && parts[0] == "authorization" && parts[1] == "bearer" {
					token = parts[2]
				}
			}

			if token == "" {
				// Abort without writing a response; the websocket handler
				// owns the error reply.
				c.Abort()
				return
			}

			jwtToken, err := parseToken(token, secret)
			if err != nil || !jwtToken.Valid {
				c.Abort()
				return
			}

			setClaims(c, jwtToken)
			c.Next()
			return
		}

		// Regular HTTP request - Authorization header, query param fallback
		var tokenString string
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		token, err := parseToken(tokenString, secret)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		setClaims(c, token)
		c.Next()
	}
}

func parseToken(tokenString, secret string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
}

func setClaims(c *gin.Context, token *jwt.Token) {
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		c.Set("user_id", uint(claims["user_id"].(float64)))
		c.Set("email", claims["email"].(string))
		c.Set("role", claims["role"].(string))
	}
}
