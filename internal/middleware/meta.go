package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/pkg/middleware/requestid"
)

const requestStartKey = "request_start"

// WithResponseMeta records when the request started so handlers can report
// processing time in the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// ResponseMeta builds the meta block of a response envelope.
func ResponseMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	meta := make(map[string]interface{}, len(extra)+2)
	for k, v := range extra {
		meta[k] = v
	}
	if id := requestid.Value(c); id != "" {
		meta["request_id"] = id
	}
	if v, ok := c.Get(requestStartKey); ok {
		if start, ok := v.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
	return meta
}
