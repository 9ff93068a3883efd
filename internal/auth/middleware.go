package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"asset_tracker/internal/models"
)

const actorKey = "actor"

// Claims is issued by the external identity provider.
type Claims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// JWT validates a bearer token from the Authorization header or the "token"
// cookie and stores the acting user on the request context.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parse(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		name := claims.Name
		if name == "" {
			name = claims.Email
		}
		c.Set(actorKey, models.Actor{
			ID:        claims.UserID,
			Name:      name,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Next()
	}
}

func parse(c *gin.Context, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	if tokenStr == "" {
		if cookie, err := c.Cookie("token"); err == nil {
			tokenStr = cookie
		}
	}
	if tokenStr == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.UserID <= 0 {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// ActorFrom returns the user resolved by JWT. ok is false on routes that did
// not run the middleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// SetActor is used by tests and internal callers that resolve identity elsewhere.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}
