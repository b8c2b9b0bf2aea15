package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Logger writes one structured line per request through the process-wide
// slog handler. The authenticated user id is attached once RequireAuth has
// populated the context, so staff actions on the counter endpoints stay
// attributable.
func Logger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		attrs := []any{
			slog.String("method", param.Method),
			slog.String("path", param.Path),
			slog.Int("status", param.StatusCode),
			slog.Duration("latency", param.Latency),
			slog.String("client_ip", param.ClientIP),
			slog.Int("body_size", param.BodySize),
		}
		if userID, ok := param.Keys["user_id"].(int64); ok {
			attrs = append(attrs, slog.Int64("user_id", userID))
		}
		if param.ErrorMessage != "" {
			attrs = append(attrs, slog.String("errors", param.ErrorMessage))
		}

		logger := slog.Default()
		if param.StatusCode >= http.StatusInternalServerError {
			logger.Error("http request", attrs...)
		} else {
			logger.Info("http request", attrs...)
		}
		return ""
	})
}

// Recovery converts panics into the API's standard error envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Default().Error("panic recovered",
			slog.Any("error", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "internal server error",
			},
		})
	})
}
