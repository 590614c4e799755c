package middlewares

import (
	"net/http"
	"strings"

	"github.com/HarryWebAI/myerp/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationMiddleware attaches a correlation id to every request context so
// log lines from one request can be stitched together.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// AuthMiddleware validates the bearer token when one is present and loads the
// operator identity into the request context. Requests without a token pass
// through; RequireLogin is the gate.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if strings.HasPrefix(auth, bearer) {
			auth = auth[len(bearer):]
		}

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), auth)
		ctx = utils.SetUserUidInContext(ctx, claim.Uid)
		ctx = utils.SetUserNameInContext(ctx, claim.Name)
		ctx = utils.SetIsBossInContext(ctx, claim.IsBoss)
		ctx = utils.SetIsManagerInContext(ctx, claim.IsManager)
		ctx = utils.SetIsStorekeeperInContext(ctx, claim.IsStorekeeper)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := utils.GetUserUidFromContext(c.Request.Context())
		if !ok || uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireBoss() gin.HandlerFunc {
	return func(c *gin.Context) {
		isBoss := utils.GetIsBossFromContext(c.Request.Context())
		if !isBoss {
			c.JSON(http.StatusForbidden, gin.H{"error": "boss only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStorekeeper also lets the boss through; the boss can do everything.
func RequireStorekeeper() gin.HandlerFunc {
	return func(c *gin.Context) {
		isBoss := utils.GetIsBossFromContext(c.Request.Context())
		isStorekeeper := utils.GetIsStorekeeperFromContext(c.Request.Context())
		if !isBoss && !isStorekeeper {
			c.JSON(http.StatusForbidden, gin.H{"error": "storekeeper only"})
			c.Abort()
			return
		}
		c.Next()
	}
}
