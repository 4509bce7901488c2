package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
)

const ctxUserClaims = "board_user_claims"

// RequireUser returns a Gin middleware that enforces a valid session Bearer
// token. On success the *UserTokenClaims are stored in the Gin context.
func RequireUser(tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer user token required",
			})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid user token: " + err.Error(),
			})
			return
		}

		c.Set(ctxUserClaims, claims)
		c.Next()
	}
}

// UserClaimsFromCtx retrieves the claims injected by RequireUser, or nil.
func UserClaimsFromCtx(c *gin.Context) *UserTokenClaims {
	v, _ := c.Get(ctxUserClaims)
	claims, _ := v.(*UserTokenClaims)
	return claims
}

// PrincipalFromCtx returns the caller resolved by RequireUser. Without a
// token the zero Principal is returned, which the policy gate rejects.
func PrincipalFromCtx(c *gin.Context) policy.Principal {
	claims := UserClaimsFromCtx(c)
	if claims == nil {
		return policy.Principal{}
	}
	return claims.Principal()
}
