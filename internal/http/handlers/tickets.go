package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/services"
	"railway/internal/utils"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	Reservations *services.ReservationService
}

type bookTicketRequest struct {
	TrainID        int64  `json:"train_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email"`
	PassengerPhone string `json:"passenger_phone"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	IDProofType    string `json:"id_proof_type"`
	IDProofNumber  string `json:"id_proof_number"`
	Class          string `json:"ticket_class"`
	JourneyDate    string `json:"journey_date"`
	BookingSource  string `json:"booking_source"`
	PaymentMode    string `json:"payment_mode"`
}

func (r bookTicketRequest) toDomain() (models.BookingRequest, error) {
	var journey time.Time
	if strings.TrimSpace(r.JourneyDate) != "" {
		d, err := utils.ParseJourneyDate(r.JourneyDate)
		if err != nil {
			return models.BookingRequest{}, domain.ValidationError{Field: "journey_date", Msg: "use dd-MM-yyyy or YYYY-MM-DD", Err: err}
		}
		journey = d
	}
	return models.BookingRequest{
		TrainID:        r.TrainID,
		PassengerName:  r.PassengerName,
		PassengerEmail: r.PassengerEmail,
		PassengerPhone: r.PassengerPhone,
		Age:            r.Age,
		Gender:         r.Gender,
		IDProofType:    r.IDProofType,
		IDProofNumber:  r.IDProofNumber,
		Class:          r.Class,
		JourneyDate:    journey,
		BookingSource:  r.BookingSource,
		PaymentMode:    r.PaymentMode,
	}, nil
}

// POST /api/tickets
func (h TicketHandler) Book(c *gin.Context) {
	var body bookTicketRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	req, err := body.toDomain()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	ticket, err := h.Reservations.Book(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// GET /api/tickets/:id
func (h TicketHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.Reservations.GetTicket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /api/tickets/:id/cancel
func (h TicketHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.Reservations.Cancel(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PUT /api/tickets/:id/contact
func (h TicketHandler) UpdateContact(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body contactRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	ticket, err := h.Reservations.UpdateContact(c.Request.Context(), id, models.ContactUpdate{
		Name:  body.Name,
		Email: body.Email,
		Phone: body.Phone,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GET /api/tickets/:id/slip?format=pdf|txt
func (h TicketHandler) Slip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	renderer, err := services.RendererFor(c.DefaultQuery("format", "pdf"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	payload, err := h.Reservations.RenderPayload(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	data, filename, err := renderer.Render(payload)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "could not render slip", Err: err})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, renderer.ContentType(), data)
}

// GET /api/passengers/:email/tickets
func (h TicketHandler) ForPassenger(c *gin.Context) {
	tickets, err := h.Reservations.TicketsForPassenger(c.Request.Context(), c.Param("email"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}
