package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// CORS allows the listed origins, or any origin when the list is empty.
func CORS(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Requested-With", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

// RequestID reuses the caller's X-Request-ID or assigns a new one, and puts
// it on the request context for log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info(c.Request.Context(), "%s %s %d %s", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
