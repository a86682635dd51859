package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"
)

// MemoryStore is an in-process train catalog and ticket ledger. It mirrors the MySQL
// repositories error for error and backs the console demo mode and service tests.
// One mutex guards every train, so reserve and release are compare-and-swap operations.
type MemoryStore struct {
	mu      sync.Mutex
	trains  map[int64]models.Train
	tickets map[int64]models.Ticket
	pnrs    map[string]int64
	nextID  int64

	// FailCreate, when set, is returned by Create instead of persisting.
	FailCreate error
	// FailReserve / FailRelease are returned by the seat operations.
	FailReserve error
	FailRelease error
}

func NewMemoryStore(trains ...models.Train) *MemoryStore {
	m := &MemoryStore{
		trains:  map[int64]models.Train{},
		tickets: map[int64]models.Ticket{},
		pnrs:    map[string]int64{},
	}
	for _, t := range trains {
		m.trains[t.ID] = t
	}
	return m
}

// SampleTrains is the demo timetable loaded by the console in memory mode.
func SampleTrains() []models.Train {
	return []models.Train{
		{ID: 12951, Name: "Mumbai Rajdhani", Source: "Mumbai", Destination: "Delhi", DepartureTime: "16:35", ArrivalTime: "08:35", TotalSeats: 72, AvailableSeats: 72, Fare: 1450},
		{ID: 12002, Name: "Shatabdi Express", Source: "Delhi", Destination: "Bhopal", DepartureTime: "06:00", ArrivalTime: "14:25", TotalSeats: 64, AvailableSeats: 64, Fare: 895},
		{ID: 12627, Name: "Karnataka Express", Source: "Bangalore", Destination: "Delhi", DepartureTime: "19:20", ArrivalTime: "09:00", TotalSeats: 80, AvailableSeats: 80, Fare: 1120},
		{ID: 12841, Name: "Coromandel Express", Source: "Kolkata", Destination: "Chennai", DepartureTime: "15:20", ArrivalTime: "17:00", TotalSeats: 72, AvailableSeats: 72, Fare: 980},
		{ID: 22691, Name: "Bangalore Rajdhani", Source: "Bangalore", Destination: "Delhi", DepartureTime: "20:00", ArrivalTime: "05:30", TotalSeats: 48, AvailableSeats: 48, Fare: 1680},
	}
}

func (m *MemoryStore) FindByRoute(_ context.Context, source, destination string) ([]models.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, destination = strings.TrimSpace(source), strings.TrimSpace(destination)
	out := []models.Train{}
	for _, t := range m.trains {
		if t.Source == source && t.Destination == destination && t.AvailableSeats > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime != out[j].DepartureTime {
			return out[i].DepartureTime < out[j].DepartureTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) List(_ context.Context) ([]models.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Train, 0, len(m.trains))
	for _, t := range m.trains {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id int64) (models.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trains[id]
	if !ok {
		return models.Train{}, domain.NotFoundError{Resource: "train", ID: id}
	}
	return t, nil
}

func (m *MemoryStore) ReserveSeats(_ context.Context, id int64, count int) error {
	if count <= 0 {
		return domain.ValidationError{Field: "count", Msg: "must be positive"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailReserve != nil {
		return m.FailReserve
	}
	t, ok := m.trains[id]
	if !ok {
		return domain.NotFoundError{Resource: "train", ID: id}
	}
	if t.AvailableSeats < count {
		return domain.ConflictError{Resource: "train", Msg: "no seats available", Err: domain.ErrCapacityExceeded}
	}
	t.AvailableSeats -= count
	m.trains[id] = t
	return nil
}

func (m *MemoryStore) ReleaseSeats(_ context.Context, id int64, count int) error {
	if count <= 0 {
		return domain.ValidationError{Field: "count", Msg: "must be positive"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRelease != nil {
		return m.FailRelease
	}
	t, ok := m.trains[id]
	if !ok {
		return domain.NotFoundError{Resource: "train", ID: id}
	}
	if t.AvailableSeats+count > t.TotalSeats {
		return domain.ConflictError{Resource: "train", Msg: "release exceeds capacity", Err: domain.ErrSeatOverflow}
	}
	t.AvailableSeats += count
	m.trains[id] = t
	return nil
}

func (m *MemoryStore) Create(_ context.Context, t models.Ticket) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate != nil {
		return 0, domain.StorageError{Op: "ticket.create", Err: m.FailCreate}
	}
	if _, ok := m.trains[t.TrainID]; !ok {
		return 0, domain.StorageError{Op: "ticket.create", Err: fmt.Errorf("train %d does not exist", t.TrainID)}
	}
	if t.PNR != "" {
		if _, taken := m.pnrs[t.PNR]; taken {
			return 0, domain.ErrDuplicatePNR
		}
	}
	m.nextID++
	t.ID = m.nextID
	if t.Status == "" {
		t.Status = models.StatusBooked
	}
	m.tickets[t.ID] = t
	if t.PNR != "" {
		m.pnrs[t.PNR] = t.ID
	}
	return t.ID, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket", ID: id}
	}
	return t, nil
}

func (m *MemoryStore) ListByPassengerEmail(_ context.Context, email string) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.TrimSpace(email)
	out := []models.Ticket{}
	for _, t := range m.tickets {
		if t.Passenger.Email == email {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookedAt.After(out[j].BookedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Cancel(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return domain.NotFoundError{Resource: "ticket", ID: id}
	}
	if !t.Active() {
		return invalidState(id, t.Status)
	}
	t.Status = models.StatusCancelled
	m.tickets[id] = t
	return nil
}

func (m *MemoryStore) UpdateContact(_ context.Context, id int64, name, email, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return domain.NotFoundError{Resource: "ticket", ID: id}
	}
	if !t.Active() {
		return invalidState(id, t.Status)
	}
	t.Passenger.Name = strings.TrimSpace(name)
	t.Passenger.Email = strings.TrimSpace(email)
	t.Passenger.Phone = utils.TrimOrEmpty(phone)
	m.tickets[id] = t
	return nil
}

func (m *MemoryStore) BookedSeatNumbers(_ context.Context, trainID int64) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []int{}
	for _, t := range m.tickets {
		if t.TrainID == trainID && t.Active() {
			out = append(out, t.Seat.Number)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *MemoryStore) CountBooked(_ context.Context, trainID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tickets {
		if t.TrainID == trainID && t.Active() {
			n++
		}
	}
	return n, nil
}
