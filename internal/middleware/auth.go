package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the operator session token.
const SessionCookie = "reports_session"

type Claims struct {
	OperatorID string `json:"oid"`
	AdminID    string `json:"aid"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// Middleware accepts the session cookie or a bearer token.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearer(c)
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(SessionCookie)
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		claims, err := Parse(secret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set("oid", claims.OperatorID)
		c.Set("aid", claims.AdminID)
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func Issue(secret, operatorID, adminID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		OperatorID: operatorID,
		AdminID:    adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return token.Claims.(*Claims), nil
}
