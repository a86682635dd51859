package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

const trainColumns = `train_id, train_name, source, destination, departure_time, arrival_time, total_seats, available_seats, fare`

// TrainRepository is the MySQL train catalog.
type TrainRepository struct {
	DB *sql.DB
}

// FindByRoute returns trains on an exact, case-sensitive source/destination match with
// seats left. BINARY overrides the table's case-insensitive collation.
func (r TrainRepository) FindByRoute(ctx context.Context, source, destination string) ([]models.Train, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+trainColumns+` FROM trains
		WHERE BINARY source = ? AND BINARY destination = ? AND available_seats > 0
		ORDER BY departure_time ASC, train_id ASC`,
		strings.TrimSpace(source), strings.TrimSpace(destination))
	if err != nil {
		return nil, domain.StorageError{Op: "train.find_by_route", Err: err}
	}
	return scanTrains(rows, "train.find_by_route")
}

// List returns every train ordered by id.
func (r TrainRepository) List(ctx context.Context) ([]models.Train, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+trainColumns+` FROM trains ORDER BY train_id ASC`)
	if err != nil {
		return nil, domain.StorageError{Op: "train.list", Err: err}
	}
	return scanTrains(rows, "train.list")
}

func (r TrainRepository) FindByID(ctx context.Context, id int64) (models.Train, error) {
	if id <= 0 {
		return models.Train{}, domain.NotFoundError{Resource: "train", ID: id}
	}
	var t models.Train
	err := r.DB.QueryRowContext(ctx, `SELECT `+trainColumns+` FROM trains WHERE train_id = ? LIMIT 1`, id).Scan(
		&t.ID, &t.Name, &t.Source, &t.Destination, &t.DepartureTime, &t.ArrivalTime,
		&t.TotalSeats, &t.AvailableSeats, &t.Fare,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Train{}, domain.NotFoundError{Resource: "train", ID: id, Err: err}
	}
	if err != nil {
		return models.Train{}, domain.StorageError{Op: "train.find_by_id", Err: err}
	}
	return t, nil
}

// ReserveSeats decrements available seats in one conditional statement, so a check
// and a decrement can never interleave with another booking.
func (r TrainRepository) ReserveSeats(ctx context.Context, id int64, count int) error {
	if count <= 0 {
		return domain.ValidationError{Field: "count", Msg: "must be positive"}
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE trains SET available_seats = available_seats - ? WHERE train_id = ? AND available_seats >= ?`,
		count, id, count)
	if err != nil {
		return domain.StorageError{Op: "train.reserve_seats", Err: err}
	}
	return r.checkAffected(ctx, res, id, "train.reserve_seats", domain.ConflictError{
		Resource: "train", Msg: "no seats available", Err: domain.ErrCapacityExceeded,
	})
}

// ReleaseSeats returns seats to the pool but never past total_seats.
func (r TrainRepository) ReleaseSeats(ctx context.Context, id int64, count int) error {
	if count <= 0 {
		return domain.ValidationError{Field: "count", Msg: "must be positive"}
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE trains SET available_seats = available_seats + ? WHERE train_id = ? AND available_seats + ? <= total_seats`,
		count, id, count)
	if err != nil {
		return domain.StorageError{Op: "train.release_seats", Err: err}
	}
	return r.checkAffected(ctx, res, id, "train.release_seats", domain.ConflictError{
		Resource: "train", Msg: "release exceeds capacity", Err: domain.ErrSeatOverflow,
	})
}

// checkAffected turns "0 rows" into NotFound or the given conflict.
func (r TrainRepository) checkAffected(ctx context.Context, res sql.Result, id int64, op string, conflict error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError{Op: op, Err: err}
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.DB.QueryRowContext(ctx, `SELECT 1 FROM trains WHERE train_id = ? LIMIT 1`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "train", ID: id, Err: err}
	}
	if err != nil {
		return domain.StorageError{Op: op, Err: err}
	}
	return conflict
}

func scanTrains(rows *sql.Rows, op string) ([]models.Train, error) {
	defer rows.Close()

	out := []models.Train{}
	for rows.Next() {
		var t models.Train
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Source, &t.Destination, &t.DepartureTime, &t.ArrivalTime,
			&t.TotalSeats, &t.AvailableSeats, &t.Fare,
		); err != nil {
			return nil, domain.StorageError{Op: op, Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError{Op: op, Err: err}
	}
	return out, nil
}

// SeedIfEmpty inserts trains only when the table has none, and reports how many were added.
func (r TrainRepository) SeedIfEmpty(ctx context.Context, trains []models.Train) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trains`).Scan(&n); err != nil {
		return 0, domain.StorageError{Op: "train.seed", Err: err}
	}
	if n > 0 {
		return 0, nil
	}
	for _, t := range trains {
		if _, err := r.DB.ExecContext(ctx, `INSERT INTO trains (`+trainColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Source, t.Destination, t.DepartureTime, t.ArrivalTime,
			t.TotalSeats, t.AvailableSeats, t.Fare,
		); err != nil {
			return 0, domain.StorageError{Op: "train.seed", Err: err}
		}
	}
	return len(trains), nil
}
