package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var ticketCols = []string{
	"ticket_id", "train_id", "passenger_name", "passenger_email", "passenger_phone", "passenger_age", "passenger_gender",
	"id_proof_type", "id_proof_number", "seat_number", "coach_number", "berth_type", "ticket_class",
	"base_fare", "taxes", "total_fare", "booking_time", "journey_date", "status",
	"pnr_number", "booking_source", "payment_mode", "transaction_id",
}

func expectLegacySchema(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("information_schema\\.columns").WithArgs("tickets").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
			AddRow("ticket_id", "int").
			AddRow("train_id", "int").
			AddRow("passenger_name", "varchar").
			AddRow("passenger_email", "varchar").
			AddRow("passenger_phone", "varchar").
			AddRow("seat_number", "int").
			AddRow("fare", "decimal").
			AddRow("booking_time", "timestamp").
			AddRow("status", "varchar"))
}

func expectExtendedSchema(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"column_name", "data_type"})
	for _, c := range ticketCols {
		typ := "varchar"
		switch c {
		case "ticket_id", "train_id", "passenger_age":
			typ = "int"
		case "base_fare", "taxes", "total_fare":
			typ = "decimal"
		case "booking_time":
			typ = "timestamp"
		case "journey_date":
			typ = "date"
		}
		rows.AddRow(c, typ)
	}
	rows.AddRow("fare", "decimal")
	mock.ExpectQuery("information_schema\\.columns").WithArgs("tickets").WillReturnRows(rows)
}

func TestTicketGetLegacyRowDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	booked := time.Date(2024, 3, 9, 10, 30, 0, 0, time.Local)
	expectLegacySchema(mock)
	mock.ExpectQuery("COALESCE\\(fare, 0\\).+FROM tickets WHERE ticket_id = \\?").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow(
			5, 1, "Asha", "asha@example.com", "98200", 0, "",
			"", "", "14", "", "", "",
			500.0, 0.0, 500.0, booked, nil, "BOOKED",
			"", "", "", "",
		))

	repo := NewTicketRepository(db)
	tk, err := repo.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tk.Seat != (models.SeatID{Number: 14}) || tk.Seat.String() != "14" {
		t.Fatalf("legacy seat parsed wrong: %+v", tk.Seat)
	}
	if tk.Class != models.ClassGeneral || tk.Berth != models.BerthLower {
		t.Fatalf("expected GENERAL/LOWER defaults, got %s/%s", tk.Class, tk.Berth)
	}
	if tk.Fare.Base != 500 || tk.Fare.Tax != 0 || tk.Fare.Total != 500 {
		t.Fatalf("legacy fare defaults wrong: %+v", tk.Fare)
	}
	if tk.PNR != "" || tk.BookingSource != models.DefaultSource || tk.PaymentMode != models.DefaultPaymentMode || tk.IDProof.Type != models.DefaultIDProof {
		t.Fatalf("legacy string defaults wrong: %+v", tk)
	}
	if !tk.JourneyDate.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("journey date should default to booking date, got %v", tk.JourneyDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTicketSchemaLoadedOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectLegacySchema(mock)
	mock.ExpectQuery("FROM tickets WHERE ticket_id").WillReturnRows(sqlmock.NewRows(ticketCols))
	mock.ExpectQuery("FROM tickets\\s+WHERE passenger_email = \\?").WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows(ticketCols))

	repo := NewTicketRepository(db)
	if _, err := repo.Get(context.Background(), 1); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, err := repo.ListByPassengerEmail(context.Background(), " asha@example.com ")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func sampleTicket(booked time.Time) models.Ticket {
	return models.Ticket{
		TrainID:       1,
		Passenger:     models.Passenger{Name: "Asha", Email: "asha@example.com", Phone: "98200", Age: 30, Gender: "F"},
		IDProof:       models.IDProof{Type: "PAN", Number: "ABCDE1234F"},
		Seat:          models.SeatID{Coach: "A1", Number: 3},
		Berth:         models.BerthUpper,
		Class:         models.ClassAC2Tier,
		Fare:          models.Fare{Base: 350, Tax: 52.5, Total: 402.5},
		BookedAt:      booked,
		JourneyDate:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local),
		Status:        models.StatusBooked,
		PNR:           "0123456789",
		BookingSource: "ONLINE",
		PaymentMode:   "UPI",
		TransactionID: "TXN0001",
	}
}

func TestTicketCreateExtendedSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	booked := time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)
	expectExtendedSchema(mock)
	mock.ExpectExec("INSERT INTO tickets \\(train_id,passenger_name,passenger_email,passenger_phone,seat_number,booking_time,status," +
		"passenger_age,passenger_gender,id_proof_type,id_proof_number,coach_number,berth_type,ticket_class," +
		"base_fare,taxes,total_fare,fare,journey_date,pnr_number,booking_source,payment_mode,transaction_id\\)").
		WithArgs(
			int64(1), "Asha", "asha@example.com", "98200", "A1-3", booked, "BOOKED",
			30, "F", "PAN", "ABCDE1234F", "A1", "UPPER", "AC_2_TIER",
			350.0, 52.5, 402.5, 402.5, "2025-01-05", "0123456789", "ONLINE", "UPI", "TXN0001",
		).
		WillReturnResult(sqlmock.NewResult(42, 1))

	repo := NewTicketRepository(db)
	id, err := repo.Create(context.Background(), sampleTicket(booked))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTicketCreateLegacySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	booked := time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)
	expectLegacySchema(mock)
	mock.ExpectExec("INSERT INTO tickets \\(train_id,passenger_name,passenger_email,passenger_phone,seat_number,booking_time,status,fare\\) VALUES \\(\\?,\\?,\\?,\\?,\\?,\\?,\\?,\\?\\)").
		WithArgs(int64(1), "Asha", "asha@example.com", "98200", 3, booked, "BOOKED", 402.5).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := NewTicketRepository(db).Create(context.Background(), sampleTicket(booked))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTicketGetRejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectLegacySchema(mock)
	mock.ExpectQuery("FROM tickets WHERE ticket_id = \\?").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow(
			5, 1, "Asha", "asha@example.com", "98200", 0, "",
			"", "", "14", "", "", "",
			500.0, 0.0, 500.0, time.Now(), nil, "LOST",
			"", "", "", "",
		))

	_, err = NewTicketRepository(db).Get(context.Background(), 5)
	if !domain.IsStorage(err) {
		t.Fatalf("expected storage error for unknown status, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTicketCreateDuplicatePNR(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectExtendedSchema(mock)
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '0123456789' for key 'uniq_pnr'"})

	_, err = NewTicketRepository(db).Create(context.Background(), models.Ticket{TrainID: 1, PNR: "0123456789"})
	if !errors.Is(err, domain.ErrDuplicatePNR) {
		t.Fatalf("expected duplicate pnr, got %v", err)
	}
}

func TestTicketCreateStorageFault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	expectLegacySchema(mock)
	mock.ExpectExec("INSERT INTO tickets").WillReturnError(errors.New("disk full"))

	_, err = NewTicketRepository(db).Create(context.Background(), models.Ticket{TrainID: 1})
	if !domain.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestTicketCancelTwiceIsInvalidState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE tickets SET status = 'CANCELLED' WHERE ticket_id = \\? AND status = 'BOOKED'").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tickets SET status = 'CANCELLED'").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE\\(status, ''\\) FROM tickets").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("CANCELLED"))

	repo := NewTicketRepository(db)
	if err := repo.Cancel(context.Background(), 3); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	err = repo.Cancel(context.Background(), 3)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTicketCancelMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE tickets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE\\(status").WillReturnRows(sqlmock.NewRows([]string{"status"}))

	if err := NewTicketRepository(db).Cancel(context.Background(), 77); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTicketUpdateContactUnchangedValuesSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE tickets SET passenger_name = \\?, passenger_email = \\?, passenger_phone = \\?").
		WithArgs("Asha", "asha@example.com", "98200", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE\\(status").WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("BOOKED"))

	if err := NewTicketRepository(db).UpdateContact(context.Background(), 4, " Asha ", "asha@example.com", "98200"); err != nil {
		t.Fatalf("update contact: %v", err)
	}
}

func TestTicketUpdateContactCancelledTicket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE tickets SET passenger_name").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE\\(status").WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("CANCELLED"))

	err = NewTicketRepository(db).UpdateContact(context.Background(), 4, "Asha", "asha@example.com", "")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestTicketBookedSeatNumbersParsesBothFormats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COALESCE\\(CAST\\(seat_number AS CHAR\\), ''\\) FROM tickets WHERE train_id = \\? AND status = 'BOOKED'").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow("S2-1").AddRow("2").AddRow("").AddRow("GS1-4"))

	seats, err := NewTicketRepository(db).BookedSeatNumbers(context.Background(), 1)
	if err != nil {
		t.Fatalf("booked seats: %v", err)
	}
	if len(seats) != 3 || seats[0] != 1 || seats[1] != 2 || seats[2] != 4 {
		t.Fatalf("unexpected seats: %v", seats)
	}
}
