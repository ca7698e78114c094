package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/pkg/jwthelper"
)

const ClaimsKey = "claims"

type Authenticator struct {
	signingKey string
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: signingKey,
	}
}

// VerifyJWT authenticates the request from its Bearer token and stores the
// claims on the context. The token is rejected when presented from a
// different user agent than it was issued to.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := jwthelper.ParseToken([]byte(a.signingKey), parts[1])
		if err != nil {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if claims.UserAgent != ctx.Request.UserAgent() {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Set(ClaimsKey, claims)
		ctx.Next()
	}
}

// RequireAdmin allows only admin accounts through. Must run after
// VerifyJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := GetClaims(ctx)
		if err != nil || claims.Role != domain.RoleAdmin {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}

func GetClaims(ctx *gin.Context) (*jwthelper.UserClaims, error) {
	value, exists := ctx.Get(ClaimsKey)
	if !exists {
		return nil, errors.New("no claims on context")
	}

	claims, ok := value.(*jwthelper.UserClaims)
	if !ok {
		return nil, errors.New("malformed claims on context")
	}

	return claims, nil
}
