package services

import (
	"context"
	"testing"
	"time"

	"railway/internal/domain/models"
	"railway/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditReportsDrift(t *testing.T) {
	ctx := context.Background()
	drifted := models.Train{ID: 2, Name: "Drifter", Source: "A", Destination: "B", TotalSeats: 4, AvailableSeats: 3, Fare: 10}
	store := repositories.NewMemoryStore(smallTrain(2), drifted)

	svc := AuditService{Catalog: store, Ledger: store, Now: func() time.Time { return fixedNow }}
	report, err := svc.Check(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Trains)
	assert.Equal(t, fixedNow, report.CheckedAt)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, int64(2), report.Mismatches[0].TrainID)
	assert.Equal(t, -1, report.Mismatches[0].Drift())
	assert.False(t, report.OK())
}

func TestStartAuditJobShutsDown(t *testing.T) {
	store := repositories.NewMemoryStore(smallTrain(2))
	sched, err := StartAuditJob(AuditService{Catalog: store, Ledger: store}, 50*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(120 * time.Millisecond)
	assert.NoError(t, sched.Shutdown())
}
