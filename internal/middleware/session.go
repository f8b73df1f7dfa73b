package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stem-workshop/certificates/internal/auth"
	"github.com/stem-workshop/certificates/pkg/response"
)

// ContextClaims is the gin context key holding the verified session claims.
const ContextClaims = "session_claims"

// SessionVerifier validates session tokens.
type SessionVerifier interface {
	VerifySession(token string) (*auth.Claims, error)
}

// Session returns a middleware that requires a valid session cookie and stores its claims in context.
func Session(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.SessionCookie)
		claims, err := verifier.VerifySession(token)
		if err != nil {
			response.Error(c, nil, err)
			c.Abort()
			return
		}
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// SessionClaims returns the claims stored by Session, or nil.
func SessionClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
