package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ConfigCORS allows the comma-separated domains from the config, plus
// localhost in any form for development.
func ConfigCORS(allowedDomains string) gin.HandlerFunc {
	domains := strings.Split(allowedDomains, ",")

	return cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
				return true
			}
			for _, domain := range domains {
				if domain != "" && strings.HasSuffix(origin, strings.TrimSpace(domain)) {
					return true
				}
			}
			return false
		},
		MaxAge: 12 * time.Hour,
	})
}
