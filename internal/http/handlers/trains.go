package handlers

import (
	"net/http"
	"strings"

	"railway/internal/services"

	"github.com/gin-gonic/gin"
)

type TrainHandler struct {
	Reservations *services.ReservationService
}

// GET /api/trains?source=&destination=
// Without both query params the whole catalog is returned.
func (h TrainHandler) Search(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	destination := strings.TrimSpace(c.Query("destination"))
	ctx := c.Request.Context()

	if source == "" && destination == "" {
		trains, err := h.Reservations.ListTrains(ctx)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trains": trains})
		return
	}
	trains, err := h.Reservations.SearchTrains(ctx, source, destination)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trains": trains})
}

// GET /api/trains/:id
func (h TrainHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	train, err := h.Reservations.GetTrain(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, train)
}
