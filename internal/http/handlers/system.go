package handlers

import (
	"database/sql"
	"net/http"

	intconfig "railway/internal/config"
	intdb "railway/internal/db"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	DB     *sql.DB
	Engine *gin.Engine
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "railway reservation service is running"})
}

// DBCheck pings MySQL and reports which reservation tables exist.
func (h SystemHandler) DBCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if err := intconfig.EnsureDB(ctx, h.DB); err != nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", "database not reachable: "+err.Error(), nil)
		return
	}
	tables := gin.H{}
	for _, t := range []string{"trains", "tickets", "operators"} {
		tables[t] = intdb.HasTable(ctx, h.DB, t)
	}
	legacy := !intdb.HasColumn(ctx, h.DB, "tickets", "pnr_number")
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "tables": tables, "legacy_tickets_schema": legacy})
}

func (h SystemHandler) Routes(c *gin.Context) {
	if h.Engine == nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", "router not ready", nil)
		return
	}
	routes := h.Engine.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
