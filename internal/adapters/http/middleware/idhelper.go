package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIDLength bounds caller-supplied ids. They are echoed in responses,
// written to every log line and forwarded to the remote.
const maxIDLength = 128

type idMiddlewareConfig struct {
	headerName string
	ginKey     string
	enrich     func(ctx context.Context, id string) context.Context
}

// acceptableID reports whether a caller-supplied id can be propagated as is.
// Only visible ASCII is allowed.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := range len(id) {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}

	return true
}

// createIDMiddleware reuses the inbound header when acceptable and mints a
// UUID otherwise. The id lands on the gin context, the response header and,
// through enrich, the request context.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if !acceptableID(id) {
			id = uuid.New().String()
		}

		c.Set(cfg.ginKey, id)
		c.Header(cfg.headerName, id)

		if cfg.enrich != nil {
			c.Request = c.Request.WithContext(cfg.enrich(c.Request.Context(), id))
		}

		c.Next()
	}
}

func getIDFromContext(c *gin.Context, key string) string {
	return c.GetString(key)
}
