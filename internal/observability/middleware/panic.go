package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PanicRecoveryGin logs a handler panic with the request context, answers
// 500 and re-panics so an outer gin.Recovery keeps the stack trace.
func PanicRecoveryGin() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(c.Request.Context(), "panic recovered",
					slog.String("event", "app.panic"),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.Any("error", rec),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "internal server error",
				})

				panic(rec)
			}
		}()

		c.Next()
	}
}
