package middleware

import (
	"github.com/flexprice/recurring/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware propagates X-Request-ID, generating one when the caller sent none
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), requestID))
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
