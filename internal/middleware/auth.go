package middleware

import (
	"net/http"
	"strings"

	"inventapro/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "auth.claims"

// Roles issued by the admin backend. Imports need admin; reads accept all three.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

// JWTClaims is the payload of an admin backend access token.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// bearerToken pulls the token out of "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	scheme, tok, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", false
	}
	return tok, true
}

// JWTAuth accepts HS256 tokens signed with secret and stores their claims
// for RequireRole and GetClaims.
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}
		claims := &JWTClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cl := GetClaims(c); cl != nil {
			for _, r := range roles {
				if cl.Role == r {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
	}
}

func GetClaims(c *gin.Context) *JWTClaims {
	v, _ := c.Get(claimsKey)
	cl, _ := v.(*JWTClaims)
	return cl
}
