package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when a BOOKED-only operation hits a ticket in any other status.
	ErrInvalidState = errors.New("ticket is not in BOOKED status")
	// ErrCapacityExceeded is returned when a train has no seats left to reserve.
	ErrCapacityExceeded = errors.New("no seats available")
	// ErrSeatAllocationConflict marks a ticket that was persisted but lost the seat reservation.
	ErrSeatAllocationConflict = errors.New("seat allocation conflict")
	// ErrSeatOverflow is returned when releasing seats would push a train past its total capacity.
	ErrSeatOverflow = errors.New("seat release exceeds train capacity")
	// ErrDuplicatePNR is returned by the ledger when a generated PNR is already taken.
	ErrDuplicatePNR = errors.New("duplicate pnr")
)

type NotFoundError struct {
	Resource string
	ID       int64
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID > 0:
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// StorageError wraps a persistence-layer fault. Op names the failing call, e.g. "ticket.create".
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("storage failure: %v", e.Err)
	}
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

// BookingFailedError is the workflow outcome when a ticket could not be persisted.
// No seat has been reserved when this is returned.
type BookingFailedError struct {
	TrainID int64
	Err     error
}

func (e BookingFailedError) Error() string {
	return fmt.Sprintf("booking on train %d failed: %v", e.TrainID, e.Err)
}

func (e BookingFailedError) Unwrap() error { return e.Err }

// CancelFailedError is the workflow outcome when the ledger could not flip a ticket to CANCELLED.
// The ticket is still BOOKED.
type CancelFailedError struct {
	TicketID int64
	Err      error
}

func (e CancelFailedError) Error() string {
	return fmt.Sprintf("cancelling ticket %d failed: %v", e.TicketID, e.Err)
}

func (e CancelFailedError) Unwrap() error { return e.Err }

// SeatConflictError reports a ticket that was persisted while the seat reservation failed.
// Compensated is true when the ticket was cancelled again afterwards.
type SeatConflictError struct {
	TicketID    int64
	TrainID     int64
	Compensated bool
	Err         error
}

func (e SeatConflictError) Error() string {
	state := "compensation failed"
	if e.Compensated {
		state = "ticket voided"
	}
	return fmt.Sprintf("seat allocation conflict on train %d for ticket %d (%s): %v", e.TrainID, e.TicketID, state, e.Err)
}

func (e SeatConflictError) Unwrap() error { return e.Err }

func (e SeatConflictError) Is(target error) bool { return target == ErrSeatAllocationConflict }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target) || errors.Is(err, ErrSeatAllocationConflict)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target StorageError
	return errors.As(err, &target)
}

func IsBookingFailed(err error) bool {
	var target BookingFailedError
	return errors.As(err, &target)
}

func IsCancelFailed(err error) bool {
	var target CancelFailedError
	return errors.As(err, &target)
}
