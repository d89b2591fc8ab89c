package middleware

import (
	"net/http"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/identity"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/gin-gonic/gin"
)

// AccountMiddleware resolves the calling account from X-Account-ID and stores it with its
// role in the request context. Authentication happens upstream; requests without the
// header continue anonymously.
func AccountMiddleware(directory identity.Directory, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader(types.HeaderAccountID)
		if accountID == "" {
			c.Next()
			return
		}

		role, err := directory.GetAccountRole(c.Request.Context(), accountID)
		if err != nil {
			logger.Errorw("failed to resolve account role", "error", err, "account_id", accountID)
			c.Error(err)
			c.Abort()
			return
		}

		ctx := types.SetAccountID(c.Request.Context(), accountID)
		ctx = types.SetRole(ctx, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireOperator rejects callers that are not operators
func RequireOperator(c *gin.Context) {
	ctx := c.Request.Context()
	if types.GetAccountID(ctx) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if types.GetRole(ctx) != types.RoleOperator {
		c.Error(ierr.NewError("operator role required").
			WithHint("This action is restricted to operators").
			WithReportableDetails(map[string]any{
				"account_id": types.GetAccountID(ctx),
			}).
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}
	c.Next()
}

// RequireSelfOrOperator lets an account reach routes about itself, keyed by the path
// parameter param. Operators reach every account.
func RequireSelfOrOperator(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		caller := types.GetAccountID(ctx)
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if caller != c.Param(param) && types.GetRole(ctx) != types.RoleOperator {
			c.Error(ierr.NewError("account mismatch").
				WithHint("You can only access your own subscription").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAccount rejects anonymous callers
func RequireAccount(c *gin.Context) {
	if types.GetAccountID(c.Request.Context()) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}
