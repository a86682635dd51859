package services

import (
	"context"
	"fmt"
	"time"

	"railway/internal/utils"

	"github.com/go-co-op/gocron/v2"
)

// SeatMismatch is a train whose booked tickets and free seats do not add up to its capacity.
type SeatMismatch struct {
	TrainID        int64  `json:"train_id"`
	TrainName      string `json:"train_name"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	BookedTickets  int    `json:"booked_tickets"`
}

func (m SeatMismatch) Drift() int {
	return m.BookedTickets + m.AvailableSeats - m.TotalSeats
}

type AuditReport struct {
	CheckedAt  time.Time      `json:"checked_at"`
	Trains     int            `json:"trains"`
	Mismatches []SeatMismatch `json:"mismatches"`
}

func (r AuditReport) OK() bool { return len(r.Mismatches) == 0 }

// AuditService checks booked + available == total for every train.
type AuditService struct {
	Catalog Catalog
	Ledger  Ledger
	Now     func() time.Time
}

func (s AuditService) Check(ctx context.Context) (AuditReport, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	trains, err := s.Catalog.List(ctx)
	if err != nil {
		return AuditReport{}, err
	}
	report := AuditReport{CheckedAt: now(), Trains: len(trains), Mismatches: []SeatMismatch{}}
	for _, t := range trains {
		booked, err := s.Ledger.CountBooked(ctx, t.ID)
		if err != nil {
			return AuditReport{}, err
		}
		if booked+t.AvailableSeats != t.TotalSeats {
			report.Mismatches = append(report.Mismatches, SeatMismatch{
				TrainID:        t.ID,
				TrainName:      t.Name,
				TotalSeats:     t.TotalSeats,
				AvailableSeats: t.AvailableSeats,
				BookedTickets:  booked,
			})
		}
	}
	return report, nil
}

// StartAuditJob runs Check every interval until the returned scheduler is shut down.
func StartAuditJob(svc AuditService, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("audit scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			runAudit(ctx, svc)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("audit job: %w", err)
	}
	sched.Start()
	utils.LogEvent("", "audit", "start", fmt.Sprintf("interval=%s", interval))
	return sched, nil
}

func runAudit(ctx context.Context, svc AuditService) {
	report, err := svc.Check(ctx)
	if err != nil {
		utils.LogError("", "audit", "check", err)
		return
	}
	if report.OK() {
		utils.LogEvent("", "audit", "check", fmt.Sprintf("trains=%d consistent", report.Trains))
		return
	}
	for _, m := range report.Mismatches {
		utils.LogWarn("", "audit", "seat_mismatch", fmt.Sprintf("train_id=%d total=%d available=%d booked=%d drift=%d",
			m.TrainID, m.TotalSeats, m.AvailableSeats, m.BookedTickets, m.Drift()))
	}
}
