package api

import (
	"database/sql"
	stdhttp "net/http"

	"railway/internal/domain"
	h "railway/internal/http/handlers"
	"railway/internal/http/middleware"
	"railway/internal/services"
	"railway/internal/utils"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	DB           *sql.DB
	Reservations *services.ReservationService
	Auth         services.AuthService
	Audit        services.AuditService
	CORSOrigins  []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(d.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogWarn("", "http", "trusted_proxies", err.Error())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	system := h.SystemHandler{DB: d.DB, Engine: r}
	trains := h.TrainHandler{Reservations: d.Reservations}
	tickets := h.TicketHandler{Reservations: d.Reservations}
	auth := h.AuthHandler{Auth: d.Auth}
	audit := h.AuditHandler{Audit: d.Audit}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", system.DBCheck)
		api.GET("/routes", system.Routes)

		api.GET("/trains", trains.Search)
		api.GET("/trains/:id", trains.Get)

		t := api.Group("/tickets")
		t.POST("", tickets.Book)
		t.GET("/:id", tickets.Get)
		t.GET("/:id/slip", tickets.Slip)
		t.POST("/:id/cancel", tickets.Cancel)
		t.PUT("/:id/contact", tickets.UpdateContact)

		api.GET("/passengers/:email/tickets", tickets.ForPassenger)

		api.POST("/auth/login", auth.Login)

		admin := api.Group("/admin", middleware.RequireAuth(d.Auth), middleware.RequireRoles(domain.RoleAdmin))
		admin.GET("/audit", audit.Seats)
	}

	return r
}
