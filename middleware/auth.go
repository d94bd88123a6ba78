package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"bakery-service/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// PrincipalKey is the gin context key holding the authenticated models.Principal.
const PrincipalKey = "principal"

// Authenticator resolves the caller from a bearer token or, behind the API
// gateway, from the X-User-* headers it injects.
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthenticator(jwtSecret string, logger *zap.Logger) *Authenticator {
	a := &Authenticator{logger: logger}
	if s := strings.TrimSpace(jwtSecret); s != "" {
		a.secret = []byte(s)
	}
	return a
}

// AuthRequired rejects requests without a resolvable principal.
func (a *Authenticator) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := a.resolve(c)
		if err != nil {
			a.logger.Debug("Authentication failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "Unauthorized"})
			return
		}
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

func (a *Authenticator) resolve(c *gin.Context) (models.Principal, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return models.Principal{}, fmt.Errorf("malformed authorization header")
		}
		return a.parseToken(strings.TrimSpace(token))
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		return models.Principal{}, fmt.Errorf("no credentials")
	}
	return models.Principal{
		UserID: userID,
		Role:   c.GetHeader("X-User-Role"),
		Name:   c.GetHeader("X-User-Name"),
	}, nil
}

func (a *Authenticator) parseToken(tokenStr string) (models.Principal, error) {
	if a.secret == nil {
		return models.Principal{}, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return models.Principal{}, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, fmt.Errorf("invalid token claims")
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return models.Principal{}, fmt.Errorf("token has no subject")
	}
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)
	return models.Principal{UserID: userID, Role: role, Name: name}, nil
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok || !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required", "code": "Forbidden"})
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	val, ok := c.Get(PrincipalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := val.(models.Principal)
	return p, ok && p.UserID != ""
}
