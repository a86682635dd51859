package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"railway/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondDomainError(c, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondDomainErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"validation", domain.ValidationError{Field: "email", Msg: "is required"}, http.StatusBadRequest, "validation_error"},
		{"not found", domain.NotFoundError{Resource: "ticket", ID: 9}, http.StatusNotFound, "not_found"},
		{"conflict", domain.ConflictError{Resource: "ticket", Err: domain.ErrInvalidState}, http.StatusConflict, "conflict"},
		{"booking failed", domain.BookingFailedError{TrainID: 1, Err: errors.New("disk full")}, http.StatusInternalServerError, "booking_failed"},
		{"cancel failed", domain.CancelFailedError{TicketID: 1, Err: errors.New("disk full")}, http.StatusInternalServerError, "cancel_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := respond(t, tc.err)
			assert.Equal(t, tc.code, status)
			assert.Equal(t, tc.kind, body.Code)
		})
	}
}

func TestRespondDomainErrorInternalShowsMessageNotCause(t *testing.T) {
	status, body := respond(t, domain.InternalError{Msg: "could not render slip", Err: errors.New("font cache corrupt")})

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", body.Code)
	assert.Equal(t, "could not render slip", body.Error)
	assert.NotContains(t, body.Error, "font cache")
}
