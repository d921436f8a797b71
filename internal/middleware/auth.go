package middleware

import (
	"context"
	"strings"

	"gosshub/auth"
	"gosshub/internal/domain"
	"gosshub/internal/errors"

	"github.com/gin-gonic/gin"
)

const (
	actorKey  = "actor"
	claimsKey = "jwt_claims"
)

type UserProvider interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Auth struct {
	Issuer      *auth.Issuer
	UserService UserProvider
	Revocations RevocationChecker
}

// RequireActor rejects requests without a valid bearer token.
func (m *Auth) RequireActor() gin.HandlerFunc {
	return m.handle(true)
}

// OptionalActor resolves the actor when a token is present and lets
// anonymous requests through. A token that is present but invalid is still
// rejected.
func (m *Auth) OptionalActor() gin.HandlerFunc {
	return m.handle(false)
}

func (m *Auth) handle(required bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
				ctx.Abort()
				return
			}
			ctx.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := m.Issuer.VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		if m.Revocations != nil {
			revoked, err := m.Revocations.IsRevoked(ctx.Request.Context(), claims.ID)
			if err != nil {
				ctx.Error(errors.Internal(err))
				ctx.Abort()
				return
			}
			if revoked {
				ctx.Error(errors.Unauthorized("Token expired or not found", nil))
				ctx.Abort()
				return
			}
		}

		user, err := m.UserService.GetUserByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid User ID!", err))
			ctx.Abort()
			return
		}

		ctx.Set(actorKey, user)
		ctx.Set(claimsKey, claims)
		ctx.Next()
	}
}

// RequireAdmin must run after RequireActor.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := Actor(ctx)
		if actor == nil || !actor.IsAdmin {
			ctx.Error(errors.Unauthorized("Not authorized to access this API.", nil))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// Actor returns the authenticated user, nil for anonymous requests.
func Actor(ctx *gin.Context) *domain.User {
	v, ok := ctx.Get(actorKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// Claims returns the verified token claims of the request, if any.
func Claims(ctx *gin.Context) *auth.Claims {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
