package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// CORS allows the configured origins, or the local dev servers when none are set.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	cc := cors.DefaultConfig()
	cc.AllowOrigins = origins
	cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "Accept", "X-Request-ID")
	cc.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	cc.AllowCredentials = true
	cc.MaxAge = 24 * time.Hour
	return cors.New(cc)
}
