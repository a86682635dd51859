package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type TicketStatus string

const (
	StatusBooked    TicketStatus = "BOOKED"
	StatusCancelled TicketStatus = "CANCELLED"
	// Stored values only; booking and cancellation never produce them.
	StatusConfirmed TicketStatus = "CONFIRMED"
	StatusWaiting   TicketStatus = "WAITING"
	StatusRAC       TicketStatus = "RAC"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusConfirmed, StatusWaiting, StatusRAC:
		return true
	}
	return false
}

type TicketClass string

const (
	ClassGeneral TicketClass = "GENERAL"
	ClassSleeper TicketClass = "SLEEPER"
	ClassAC3Tier TicketClass = "AC_3_TIER"
	ClassAC2Tier TicketClass = "AC_2_TIER"
	ClassAC1Tier TicketClass = "AC_1_TIER"
)

// TicketClasses lists the classes in menu order.
var TicketClasses = []TicketClass{ClassGeneral, ClassSleeper, ClassAC3Tier, ClassAC2Tier, ClassAC1Tier}

// ParseTicketClass normalises "ac 3 tier", "AC-3-TIER" and friends. ok is false for unknown input.
func ParseTicketClass(s string) (TicketClass, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, c := range TicketClasses {
		if string(c) == norm {
			return c, true
		}
	}
	return "", false
}

// Label is the human form used on printed slips.
func (c TicketClass) Label() string {
	switch c {
	case ClassGeneral:
		return "General"
	case ClassSleeper:
		return "Sleeper"
	case ClassAC3Tier:
		return "AC 3 Tier"
	case ClassAC2Tier:
		return "AC 2 Tier"
	case ClassAC1Tier:
		return "AC First Class"
	}
	return string(c)
}

type BerthType string

const (
	BerthLower     BerthType = "LOWER"
	BerthMiddle    BerthType = "MIDDLE"
	BerthUpper     BerthType = "UPPER"
	BerthSideLower BerthType = "SIDE_LOWER"
	BerthSideUpper BerthType = "SIDE_UPPER"
)

// Defaults applied to legacy rows and to requests that leave these fields empty.
const (
	DefaultIDProof     = "AADHAR"
	DefaultSource      = "ONLINE"
	DefaultPaymentMode = "CARD"
)

// SeatID is a coach code plus seat number, rendered as "S2-14".
// Legacy rows carry no coach and render as the bare number.
type SeatID struct {
	Coach  string `json:"coach"`
	Number int    `json:"number"`
}

func (s SeatID) String() string {
	if s.Coach == "" {
		return strconv.Itoa(s.Number)
	}
	return fmt.Sprintf("%s-%d", s.Coach, s.Number)
}

// ParseSeatID accepts "S2-14", "s2-14" and plain "14".
func ParseSeatID(raw string) (SeatID, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return SeatID{}, fmt.Errorf("empty seat identifier")
	}
	coach, num := "", raw
	if i := strings.LastIndex(raw, "-"); i >= 0 {
		coach, num = raw[:i], raw[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return SeatID{}, fmt.Errorf("invalid seat identifier %q", raw)
	}
	return SeatID{Coach: coach, Number: n}, nil
}

// Fare keeps Total == Base + Tax.
type Fare struct {
	Base  float64 `json:"base_fare"`
	Tax   float64 `json:"taxes"`
	Total float64 `json:"total_fare"`
}

type Passenger struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type IDProof struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type Ticket struct {
	ID            int64        `json:"ticket_id"`
	TrainID       int64        `json:"train_id"`
	Passenger     Passenger    `json:"passenger"`
	IDProof       IDProof      `json:"id_proof"`
	Seat          SeatID       `json:"seat"`
	Berth         BerthType    `json:"berth_type"`
	Class         TicketClass  `json:"ticket_class"`
	Fare          Fare         `json:"fare"`
	BookedAt      time.Time    `json:"booking_time"`
	JourneyDate   time.Time    `json:"journey_date"`
	Status        TicketStatus `json:"status"`
	PNR           string       `json:"pnr"`
	BookingSource string       `json:"booking_source"`
	PaymentMode   string       `json:"payment_mode"`
	TransactionID string       `json:"transaction_id"`
}

// Active reports whether the ticket still holds a seat.
func (t Ticket) Active() bool { return t.Status == StatusBooked }

// BookingRequest carries validated primitive input for the booking workflow.
type BookingRequest struct {
	TrainID        int64     `validate:"required,gt=0"`
	PassengerName  string    `validate:"required,max=100"`
	PassengerEmail string    `validate:"required,email,max=100"`
	PassengerPhone string    `validate:"omitempty,max=20"`
	Age            int       `validate:"gte=0,lte=125"`
	Gender         string    `validate:"omitempty,oneof=M F O"`
	IDProofType    string    `validate:"omitempty,oneof=AADHAR PAN PASSPORT DRIVING_LICENSE"`
	IDProofNumber  string    `validate:"omitempty,max=30"`
	Class          string
	JourneyDate    time.Time
	BookingSource  string `validate:"omitempty,oneof=ONLINE COUNTER MOBILE_APP"`
	PaymentMode    string `validate:"omitempty,oneof=CARD UPI NET_BANKING CASH"`
}

// ContactUpdate is the mutable subset of passenger data.
type ContactUpdate struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"required,email,max=100"`
	Phone string `validate:"omitempty,max=20"`
}

// CancelResult is returned by a successful cancellation. Warning is set when the seat
// could not be returned to the train; the ticket is cancelled regardless.
type CancelResult struct {
	Ticket  Ticket `json:"ticket"`
	Warning string `json:"warning,omitempty"`
}

// RenderPayload is the read-only view handed to ticket renderers. Train is nil when the
// referenced train no longer resolves.
type RenderPayload struct {
	Ticket Ticket `json:"ticket"`
	Train  *Train `json:"train,omitempty"`
}
