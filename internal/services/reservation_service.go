package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"

	"github.com/google/uuid"
)

// maxPNRAttempts bounds the retries on a PNR collision.
const maxPNRAttempts = 5

// ReservationService runs the booking and cancellation workflows. Every collaborator is
// injected; there is no package-level state.
type ReservationService struct {
	Catalog   Catalog
	Ledger    Ledger
	Allocator *Allocator
	Notifier  Notifier

	Now           func() time.Time
	TransactionID func() string

	seatLocks     trainLocks
	notifications sync.WaitGroup
}

// trainLocks hands out one mutex per train. Seat selection and the ticket insert run
// under it, so two bookings on a train in this process never pick the same seat.
type trainLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *trainLocks) forTrain(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = map[int64]*sync.Mutex{}
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

func NewReservationService(catalog Catalog, ledger Ledger, allocator *Allocator) *ReservationService {
	if allocator == nil {
		allocator = NewAllocator(ledger)
	}
	return &ReservationService{
		Catalog:       catalog,
		Ledger:        ledger,
		Allocator:     allocator,
		Now:           time.Now,
		TransactionID: newTransactionID,
	}
}

func newTransactionID() string {
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func (s *ReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ReservationService) transactionID() string {
	if s.TransactionID != nil {
		return s.TransactionID()
	}
	return newTransactionID()
}

// SearchTrains lists trains on the route that still have seats.
func (s *ReservationService) SearchTrains(ctx context.Context, source, destination string) ([]models.Train, error) {
	source, destination = utils.NormalizeSpace(source), utils.NormalizeSpace(destination)
	if source == "" {
		return nil, domain.ValidationError{Field: "source", Msg: "is required"}
	}
	if destination == "" {
		return nil, domain.ValidationError{Field: "destination", Msg: "is required"}
	}
	return s.Catalog.FindByRoute(ctx, source, destination)
}

// ListTrains returns the whole catalog, full trains included.
func (s *ReservationService) ListTrains(ctx context.Context) ([]models.Train, error) {
	return s.Catalog.List(ctx)
}

func (s *ReservationService) GetTrain(ctx context.Context, id int64) (models.Train, error) {
	return s.Catalog.FindByID(ctx, id)
}

// Book issues one ticket. On success exactly one seat has been taken from the train.
func (s *ReservationService) Book(ctx context.Context, req models.BookingRequest) (models.Ticket, error) {
	rid := utils.RequestID(ctx)
	req = normalizeBooking(req)
	if err := validateStruct(req); err != nil {
		return models.Ticket{}, err
	}
	class := models.ClassGeneral
	if req.Class != "" {
		c, ok := models.ParseTicketClass(req.Class)
		if !ok {
			return models.Ticket{}, domain.ValidationError{Field: "class", Msg: fmt.Sprintf("unknown ticket class %q", req.Class)}
		}
		class = c
	}

	train, err := s.Catalog.FindByID(ctx, req.TrainID)
	if err != nil {
		return models.Ticket{}, err
	}
	if train.AvailableSeats <= 0 {
		return models.Ticket{}, domain.ConflictError{
			Resource: "train",
			Msg:      fmt.Sprintf("train %d has no seats available", train.ID),
			Err:      domain.ErrCapacityExceeded,
		}
	}

	now := s.now()
	journey := req.JourneyDate
	if journey.IsZero() {
		journey = utils.DateOnly(now)
	}
	ticket := models.Ticket{
		TrainID: train.ID,
		Passenger: models.Passenger{
			Name:   req.PassengerName,
			Email:  req.PassengerEmail,
			Phone:  req.PassengerPhone,
			Age:    req.Age,
			Gender: req.Gender,
		},
		IDProof:       models.IDProof{Type: utils.FirstNonEmpty(req.IDProofType, models.DefaultIDProof), Number: req.IDProofNumber},
		Class:         class,
		Fare:          ComputeFare(train.Fare, class),
		BookedAt:      now,
		JourneyDate:   journey,
		Status:        models.StatusBooked,
		BookingSource: utils.FirstNonEmpty(req.BookingSource, models.DefaultSource),
		PaymentMode:   utils.FirstNonEmpty(req.PaymentMode, models.DefaultPaymentMode),
		TransactionID: s.transactionID(),
	}

	id, err := s.placeTicket(ctx, &ticket)
	if err != nil {
		utils.LogError(rid, "reservation", "book", err)
		return models.Ticket{}, domain.BookingFailedError{TrainID: train.ID, Err: err}
	}
	ticket.ID = id

	if err := s.Catalog.ReserveSeats(ctx, train.ID, 1); err != nil {
		conflict := domain.SeatConflictError{TicketID: id, TrainID: train.ID, Err: err}
		if cerr := s.Ledger.Cancel(ctx, id); cerr != nil {
			utils.LogError(rid, "reservation", "void_ticket", cerr)
		} else {
			conflict.Compensated = true
		}
		utils.LogError(rid, "reservation", "reserve_seat", conflict)
		return models.Ticket{}, conflict
	}

	utils.LogEvent(rid, "reservation", "book",
		fmt.Sprintf("ticket_id=%d train_id=%d seat=%s class=%s pnr=%s", id, train.ID, ticket.Seat, class, ticket.PNR))
	s.notify(ctx, ticket, train)
	return ticket, nil
}

// placeTicket picks the lowest free seat and persists the ticket while holding the
// train's lock.
func (s *ReservationService) placeTicket(ctx context.Context, t *models.Ticket) (int64, error) {
	lock := s.seatLocks.forTrain(t.TrainID)
	lock.Lock()
	defer lock.Unlock()

	seatNo, err := s.Allocator.NextSeatNumber(ctx, t.TrainID)
	if err != nil {
		return 0, err
	}
	t.Seat = models.SeatID{Coach: s.Allocator.AssignCoach(t.Class), Number: seatNo}
	t.Berth = AssignBerth(seatNo)
	return s.createWithPNR(ctx, t)
}

// createWithPNR persists the ticket, drawing a fresh PNR on every collision.
func (s *ReservationService) createWithPNR(ctx context.Context, t *models.Ticket) (int64, error) {
	var err error
	for attempt := 1; attempt <= maxPNRAttempts; attempt++ {
		t.PNR = s.Allocator.GeneratePNR()
		var id int64
		id, err = s.Ledger.Create(ctx, *t)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrDuplicatePNR) {
			return 0, err
		}
		utils.LogWarn(utils.RequestID(ctx), "reservation", "pnr_collision", fmt.Sprintf("attempt=%d pnr=%s", attempt, t.PNR))
	}
	return 0, fmt.Errorf("no unique pnr after %d attempts: %w", maxPNRAttempts, err)
}

func (s *ReservationService) notify(ctx context.Context, t models.Ticket, train models.Train) {
	if s.Notifier == nil {
		return
	}
	rid := utils.RequestID(ctx)
	payload := models.RenderPayload{Ticket: t, Train: &train}
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.Notifier.BookingConfirmed(nctx, payload); err != nil {
			utils.LogError(rid, "reservation", "notify", err)
		}
	}()
}

// Drain waits for confirmation messages still being sent, or until ctx is done.
func (s *ReservationService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel flips a BOOKED ticket to CANCELLED and returns its seat. A seat that cannot be
// returned is reported as a warning; the cancellation still stands.
func (s *ReservationService) Cancel(ctx context.Context, ticketID int64) (models.CancelResult, error) {
	rid := utils.RequestID(ctx)
	t, err := s.Ledger.Get(ctx, ticketID)
	if err != nil {
		return models.CancelResult{}, err
	}
	if !t.Active() {
		return models.CancelResult{}, domain.ConflictError{
			Resource: "ticket",
			Msg:      fmt.Sprintf("ticket %d is %s", t.ID, t.Status),
			Err:      domain.ErrInvalidState,
		}
	}
	if err := s.Ledger.Cancel(ctx, ticketID); err != nil {
		if domain.IsNotFound(err) || errors.Is(err, domain.ErrInvalidState) {
			return models.CancelResult{}, err
		}
		utils.LogError(rid, "reservation", "cancel", err)
		return models.CancelResult{}, domain.CancelFailedError{TicketID: ticketID, Err: err}
	}
	t.Status = models.StatusCancelled

	out := models.CancelResult{Ticket: t}
	if err := s.Catalog.ReleaseSeats(ctx, t.TrainID, 1); err != nil {
		out.Warning = fmt.Sprintf("ticket cancelled but seat was not returned to train %d: %v", t.TrainID, err)
		utils.LogWarn(rid, "reservation", "release_seat", out.Warning)
	}
	utils.LogEvent(rid, "reservation", "cancel", fmt.Sprintf("ticket_id=%d train_id=%d", t.ID, t.TrainID))
	return out, nil
}

func (s *ReservationService) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	return s.Ledger.Get(ctx, id)
}

// TicketsForPassenger lists a passenger's tickets, newest first.
func (s *ReservationService) TicketsForPassenger(ctx context.Context, email string) ([]models.Ticket, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "is required"}
	}
	return s.Ledger.ListByPassengerEmail(ctx, email)
}

// UpdateContact rewrites the passenger's contact fields while the ticket is BOOKED.
func (s *ReservationService) UpdateContact(ctx context.Context, ticketID int64, in models.ContactUpdate) (models.Ticket, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = utils.NormalizePhone(in.Phone)
	if err := validateStruct(in); err != nil {
		return models.Ticket{}, err
	}
	if err := s.Ledger.UpdateContact(ctx, ticketID, in.Name, in.Email, in.Phone); err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "reservation", "update_contact", fmt.Sprintf("ticket_id=%d", ticketID))
	return s.Ledger.Get(ctx, ticketID)
}

// RenderPayload joins a ticket with its train for printing. Train is nil when the train
// no longer resolves.
func (s *ReservationService) RenderPayload(ctx context.Context, ticketID int64) (models.RenderPayload, error) {
	t, err := s.Ledger.Get(ctx, ticketID)
	if err != nil {
		return models.RenderPayload{}, err
	}
	out := models.RenderPayload{Ticket: t}
	train, err := s.Catalog.FindByID(ctx, t.TrainID)
	switch {
	case err == nil:
		out.Train = &train
	case domain.IsNotFound(err):
	default:
		return models.RenderPayload{}, err
	}
	return out, nil
}

func normalizeBooking(req models.BookingRequest) models.BookingRequest {
	req.PassengerName = utils.NormalizeSpace(req.PassengerName)
	req.PassengerEmail = strings.TrimSpace(req.PassengerEmail)
	req.PassengerPhone = utils.NormalizePhone(req.PassengerPhone)
	req.Gender = strings.ToUpper(strings.TrimSpace(req.Gender))
	req.IDProofType = strings.ToUpper(strings.TrimSpace(req.IDProofType))
	req.IDProofNumber = strings.ToUpper(strings.TrimSpace(req.IDProofNumber))
	req.Class = strings.TrimSpace(req.Class)
	req.BookingSource = strings.ToUpper(strings.TrimSpace(req.BookingSource))
	req.PaymentMode = strings.ToUpper(strings.TrimSpace(req.PaymentMode))
	return req
}
