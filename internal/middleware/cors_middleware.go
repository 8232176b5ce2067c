package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Defaults cover local development setups when ALLOWED_ORIGINS is not set.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

// CORS configures cross-origin access from the configured browser origins.
// Requests without an Origin header (curl, server-to-server, the Stripe
// webhook) are unaffected by CORS and always pass through.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
