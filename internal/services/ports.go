package services

import (
	"context"

	"railway/internal/domain/models"
)

// Catalog is the train store. ReserveSeats is the only admission-control point.
type Catalog interface {
	FindByRoute(ctx context.Context, source, destination string) ([]models.Train, error)
	FindByID(ctx context.Context, id int64) (models.Train, error)
	List(ctx context.Context) ([]models.Train, error)
	ReserveSeats(ctx context.Context, id int64, count int) error
	ReleaseSeats(ctx context.Context, id int64, count int) error
}

// SeatLister reports the seat numbers held by BOOKED tickets of a train.
type SeatLister interface {
	BookedSeatNumbers(ctx context.Context, trainID int64) ([]int, error)
}

// Ledger is the ticket store.
type Ledger interface {
	SeatLister
	Create(ctx context.Context, t models.Ticket) (int64, error)
	Get(ctx context.Context, id int64) (models.Ticket, error)
	ListByPassengerEmail(ctx context.Context, email string) ([]models.Ticket, error)
	Cancel(ctx context.Context, id int64) error
	UpdateContact(ctx context.Context, id int64, name, email, phone string) error
	CountBooked(ctx context.Context, trainID int64) (int, error)
}

// Notifier is told about confirmed bookings. Failures never undo a booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, p models.RenderPayload) error
}
