package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	intdb "railway/internal/db"
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"

	"github.com/go-sql-driver/mysql"
)

const (
	ticketsTable        = "tickets"
	mysqlDuplicateEntry = 1062
)

// TicketRepository is the MySQL ticket ledger. It works against both the legacy
// tickets table (numeric seat_number, single fare column) and the extended one; the
// column set is read from information_schema on first use.
type TicketRepository struct {
	DB *sql.DB

	mu     sync.Mutex
	schema *ticketSchema
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{DB: db}
}

type ticketSchema struct {
	cols map[string]string
}

func (s ticketSchema) has(col string) bool {
	_, ok := s.cols[col]
	return ok
}

// numericSeat is true for the legacy INT seat_number column.
func (s ticketSchema) numericSeat() bool {
	switch s.cols["seat_number"] {
	case "int", "integer", "bigint", "smallint", "mediumint", "tinyint":
		return true
	}
	return false
}

func (s ticketSchema) str(col string) string {
	if s.has(col) {
		return "COALESCE(" + col + ", '')"
	}
	return "''"
}

func (s ticketSchema) num(col string, fallbacks ...string) string {
	for _, c := range append([]string{col}, fallbacks...) {
		if s.has(c) {
			return "COALESCE(" + c + ", 0)"
		}
	}
	return "0"
}

func (s ticketSchema) selectList() string {
	journey := "NULL"
	if s.has("journey_date") {
		journey = "journey_date"
	}
	return strings.Join([]string{
		"ticket_id",
		"train_id",
		s.str("passenger_name"),
		s.str("passenger_email"),
		s.str("passenger_phone"),
		s.num("passenger_age"),
		s.str("passenger_gender"),
		s.str("id_proof_type"),
		s.str("id_proof_number"),
		"COALESCE(CAST(seat_number AS CHAR), '')",
		s.str("coach_number"),
		s.str("berth_type"),
		s.str("ticket_class"),
		s.num("base_fare", "fare"),
		s.num("taxes"),
		s.num("total_fare", "fare"),
		"booking_time",
		journey,
		"COALESCE(status, 'BOOKED')",
		s.str("pnr_number"),
		s.str("booking_source"),
		s.str("payment_mode"),
		s.str("transaction_id"),
	}, ", ")
}

func (r *TicketRepository) loadSchema(ctx context.Context) (ticketSchema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schema != nil {
		return *r.schema, nil
	}
	cols, err := intdb.Columns(ctx, r.DB, ticketsTable)
	if err != nil {
		return ticketSchema{}, domain.StorageError{Op: "ticket.schema", Err: err}
	}
	if len(cols) == 0 {
		return ticketSchema{}, domain.StorageError{Op: "ticket.schema", Err: fmt.Errorf("table %s not found", ticketsTable)}
	}
	s := ticketSchema{cols: cols}
	r.schema = &s
	return s, nil
}

// Create inserts the ticket in a single statement and returns its new id.
func (r *TicketRepository) Create(ctx context.Context, t models.Ticket) (int64, error) {
	s, err := r.loadSchema(ctx)
	if err != nil {
		return 0, err
	}

	var seat any = t.Seat.String()
	if s.numericSeat() {
		seat = t.Seat.Number
	}
	status := t.Status
	if status == "" {
		status = models.StatusBooked
	}

	cols := []string{"train_id", "passenger_name", "passenger_email", "passenger_phone", "seat_number", "booking_time", "status"}
	args := []any{t.TrainID, t.Passenger.Name, t.Passenger.Email, t.Passenger.Phone, seat, t.BookedAt, string(status)}

	optional := []struct {
		col string
		val any
	}{
		{"passenger_age", t.Passenger.Age},
		{"passenger_gender", intdb.NullIfEmpty(t.Passenger.Gender)},
		{"id_proof_type", intdb.NullIfEmpty(t.IDProof.Type)},
		{"id_proof_number", intdb.NullIfEmpty(t.IDProof.Number)},
		{"coach_number", intdb.NullIfEmpty(t.Seat.Coach)},
		{"berth_type", string(t.Berth)},
		{"ticket_class", string(t.Class)},
		{"base_fare", t.Fare.Base},
		{"taxes", t.Fare.Tax},
		{"total_fare", t.Fare.Total},
		{"fare", t.Fare.Total},
		{"journey_date", intdb.NullIfEmpty(utils.FormatDate(t.JourneyDate))},
		{"pnr_number", intdb.NullIfEmpty(t.PNR)},
		{"booking_source", t.BookingSource},
		{"payment_mode", t.PaymentMode},
		{"transaction_id", intdb.NullIfEmpty(t.TransactionID)},
	}
	for _, o := range optional {
		if s.has(o.col) {
			cols = append(cols, o.col)
			args = append(args, o.val)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO `+ticketsTable+` (`+strings.Join(cols, ",")+`) VALUES (`+placeholders+`)`, args...)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return 0, domain.ErrDuplicatePNR
		}
		return 0, domain.StorageError{Op: "ticket.create", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.StorageError{Op: "ticket.create", Err: err}
	}
	return id, nil
}

func (r *TicketRepository) Get(ctx context.Context, id int64) (models.Ticket, error) {
	s, err := r.loadSchema(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+s.selectList()+` FROM `+ticketsTable+` WHERE ticket_id = ? LIMIT 1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket", ID: id, Err: err}
	}
	if err != nil {
		return models.Ticket{}, domain.StorageError{Op: "ticket.get", Err: err}
	}
	return t, nil
}

// ListByPassengerEmail returns the passenger's tickets, newest booking first.
func (r *TicketRepository) ListByPassengerEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	s, err := r.loadSchema(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+s.selectList()+` FROM `+ticketsTable+`
		WHERE passenger_email = ? ORDER BY booking_time DESC, ticket_id DESC`, strings.TrimSpace(email))
	if err != nil {
		return nil, domain.StorageError{Op: "ticket.list_by_email", Err: err}
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, domain.StorageError{Op: "ticket.list_by_email", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError{Op: "ticket.list_by_email", Err: err}
	}
	return out, nil
}

// Cancel flips BOOKED to CANCELLED. Anything else is a no-op reported as an error.
func (r *TicketRepository) Cancel(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE `+ticketsTable+` SET status = 'CANCELLED' WHERE ticket_id = ? AND status = 'BOOKED'`, id)
	if err != nil {
		return domain.StorageError{Op: "ticket.cancel", Err: err}
	}
	return r.checkAffected(ctx, res, id, "ticket.cancel", false)
}

// UpdateContact rewrites name, email and phone of a BOOKED ticket.
func (r *TicketRepository) UpdateContact(ctx context.Context, id int64, name, email, phone string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE `+ticketsTable+` SET passenger_name = ?, passenger_email = ?, passenger_phone = ? WHERE ticket_id = ? AND status = 'BOOKED'`,
		strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone), id)
	if err != nil {
		return domain.StorageError{Op: "ticket.update_contact", Err: err}
	}
	return r.checkAffected(ctx, res, id, "ticket.update_contact", true)
}

// BookedSeatNumbers lists the seat numbers held by BOOKED tickets of a train.
func (r *TicketRepository) BookedSeatNumbers(ctx context.Context, trainID int64) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT COALESCE(CAST(seat_number AS CHAR), '') FROM `+ticketsTable+` WHERE train_id = ? AND status = 'BOOKED'`, trainID)
	if err != nil {
		return nil, domain.StorageError{Op: "ticket.booked_seats", Err: err}
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, domain.StorageError{Op: "ticket.booked_seats", Err: err}
		}
		seat, err := models.ParseSeatID(raw)
		if err != nil {
			continue
		}
		out = append(out, seat.Number)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError{Op: "ticket.booked_seats", Err: err}
	}
	return out, nil
}

func (r *TicketRepository) CountBooked(ctx context.Context, trainID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+ticketsTable+` WHERE train_id = ? AND status = 'BOOKED'`, trainID).Scan(&n)
	if err != nil {
		return 0, domain.StorageError{Op: "ticket.count_booked", Err: err}
	}
	return n, nil
}

// checkAffected turns "0 rows" into NotFound or InvalidState. MySQL reports 0 changed
// rows when an update rewrites identical values, so idempotent reports whether a
// still-BOOKED ticket counts as success.
func (r *TicketRepository) checkAffected(ctx context.Context, res sql.Result, id int64, op string, idempotent bool) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError{Op: op, Err: err}
	}
	if n > 0 {
		return nil
	}
	var status string
	err = r.DB.QueryRowContext(ctx, `SELECT COALESCE(status, '') FROM `+ticketsTable+` WHERE ticket_id = ? LIMIT 1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "ticket", ID: id, Err: err}
	}
	if err != nil {
		return domain.StorageError{Op: op, Err: err}
	}
	if idempotent && models.TicketStatus(status) == models.StatusBooked {
		return nil
	}
	return invalidState(id, models.TicketStatus(status))
}

func invalidState(id int64, status models.TicketStatus) error {
	return domain.ConflictError{
		Resource: "ticket",
		Msg:      fmt.Sprintf("ticket %d is %s", id, status),
		Err:      domain.ErrInvalidState,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var (
		t                            models.Ticket
		seatRaw, coach, berth, class string
		status                       string
		bookedAt, journey            sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.TrainID,
		&t.Passenger.Name, &t.Passenger.Email, &t.Passenger.Phone, &t.Passenger.Age, &t.Passenger.Gender,
		&t.IDProof.Type, &t.IDProof.Number,
		&seatRaw, &coach, &berth, &class,
		&t.Fare.Base, &t.Fare.Tax, &t.Fare.Total,
		&bookedAt, &journey,
		&status, &t.PNR, &t.BookingSource, &t.PaymentMode, &t.TransactionID,
	); err != nil {
		return models.Ticket{}, err
	}

	if seat, err := models.ParseSeatID(seatRaw); err == nil {
		t.Seat = seat
	}
	if t.Seat.Coach == "" {
		t.Seat.Coach = strings.ToUpper(strings.TrimSpace(coach))
	}
	t.Berth = models.BerthType(strings.ToUpper(strings.TrimSpace(berth)))
	if t.Berth == "" {
		t.Berth = models.BerthLower
	}
	if c, ok := models.ParseTicketClass(class); ok {
		t.Class = c
	} else {
		t.Class = models.ClassGeneral
	}
	// legacy rows carry one fare column: base == total, no tax
	if t.Fare.Total == 0 {
		t.Fare.Total = utils.RoundMoney(t.Fare.Base + t.Fare.Tax)
	}
	if bookedAt.Valid {
		t.BookedAt = bookedAt.Time
	}
	if journey.Valid {
		t.JourneyDate = journey.Time
	} else if !t.BookedAt.IsZero() {
		t.JourneyDate = utils.DateOnly(t.BookedAt)
	}
	t.Status = models.TicketStatus(strings.ToUpper(strings.TrimSpace(status)))
	if t.Status == "" {
		t.Status = models.StatusBooked
	}
	if !t.Status.Valid() {
		return models.Ticket{}, fmt.Errorf("ticket %d has unknown status %q", t.ID, status)
	}
	t.IDProof.Type = utils.FirstNonEmpty(t.IDProof.Type, models.DefaultIDProof)
	t.BookingSource = utils.FirstNonEmpty(t.BookingSource, models.DefaultSource)
	t.PaymentMode = utils.FirstNonEmpty(t.PaymentMode, models.DefaultPaymentMode)
	return t, nil
}
