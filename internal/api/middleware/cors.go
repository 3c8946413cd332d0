package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS allows browser wallets on allowedOrigins, or on any origin when the list is empty.
// Credentials are never allowed; wallets authenticate with a bearer token.
func SetupCORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", CALLER_HEADER, REQUEST_ID_HEADER, "Last-Event-ID"},
		ExposeHeaders: []string{"Content-Length", REQUEST_ID_HEADER, "Retry-After", "X-RateLimit-Remaining"},
		MaxAge:        time.Hour,
	}
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return cors.New(config)
}
