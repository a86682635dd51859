package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"railway/internal/domain/models"
	"railway/internal/repositories"
	"railway/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)

func newTestConsole(t *testing.T, seats int, input ...string) (*Console, *bytes.Buffer, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore(models.Train{
		ID: 1, Name: "Pearl City Exp", Source: "Chennai", Destination: "Madurai",
		DepartureTime: "06:00", ArrivalTime: "13:00",
		TotalSeats: seats, AvailableSeats: seats, Fare: 100,
	})
	alloc := services.NewAllocator(store)
	var pnr int64
	alloc.PNRSource = func() int64 { pnr++; return pnr }
	alloc.Picker = services.CoachPickerFunc(func(models.TicketClass, int) int { return 0 })

	svc := services.NewReservationService(store, store, alloc)
	svc.Now = func() time.Time { return clock }

	var out bytes.Buffer
	c := New(svc, strings.NewReader(strings.Join(input, "\n")+"\n"), &out, t.TempDir())
	c.Now = func() time.Time { return clock }
	return c, &out, store
}

func bookLines(name string) []string {
	return []string{"2", "1", name, "asha@example.com", "98200 12345", "30", "F", "2", "", "n"}
}

func script(parts ...[]string) []string {
	var all []string
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}

func TestConsoleBookAndExit(t *testing.T) {
	c, out, store := newTestConsole(t, 2, script(bookLines("Asha Rao"), []string{"8"})...)

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Ticket booked successfully! Ticket ID: 1, PNR: 0000000001")
	assert.Contains(t, text, "Seat / Berth  : S1-1 / LOWER")
	assert.Contains(t, text, "Class         : Sleeper")
	assert.Contains(t, text, "Journey Date  : 2025-03-14")
	assert.Contains(t, text, "Thank you for using Railway Reservation System!")

	train, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, train.AvailableSeats)
}

func TestConsoleRejectsBadMenuInput(t *testing.T) {
	c, out, _ := newTestConsole(t, 1, "abc", "42", "8")

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "Please enter a valid number.")
	assert.Contains(t, out.String(), "Invalid choice! Please try again.")
}

func TestConsoleEndOfInputStops(t *testing.T) {
	c, _, _ := newTestConsole(t, 1, "1", "Chennai")
	assert.NoError(t, c.Run(context.Background()))
}

func TestConsoleSearch(t *testing.T) {
	c, out, _ := newTestConsole(t, 3, "1", " Chennai ", "Madurai", "1", "Delhi", "Goa", "8")

	require.NoError(t, c.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "Pearl City Exp")
	assert.Contains(t, text, "No trains found for the given route!")
}

func TestConsoleCancelConfirmsAndRejectsRepeat(t *testing.T) {
	c, out, store := newTestConsole(t, 1, script(
		bookLines("Asha Rao"),
		[]string{"3", "1", "n"},
		[]string{"3", "1", "y"},
		[]string{"3", "1", "y"},
		[]string{"8"},
	)...)

	require.NoError(t, c.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "Cancellation aborted.")
	assert.Contains(t, text, "Ticket 1 cancelled successfully.")
	assert.Contains(t, text, "Operation not allowed")

	train, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, train.AvailableSeats)
}

func TestConsoleFullTrain(t *testing.T) {
	c, out, _ := newTestConsole(t, 1, script(bookLines("A"), bookLines("B")[:9], []string{"8"})...)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "No seats available on this train!")
}

func TestConsoleUnknownTicket(t *testing.T) {
	c, out, _ := newTestConsole(t, 1, "4", "77", "8")

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "Not found:")
}

func TestConsoleUpdateDetailsAndListTickets(t *testing.T) {
	c, out, _ := newTestConsole(t, 2, script(
		bookLines("Asha Rao"),
		[]string{"6", "1", "y", "Asha R", "asha.r@example.com", ""},
		[]string{"5", "asha.r@example.com"},
		[]string{"5", "nobody@example.com"},
		[]string{"8"},
	)...)

	require.NoError(t, c.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "Passenger details updated successfully!")
	assert.Contains(t, text, "0000000001")
	assert.Contains(t, text, "No tickets found for this email!")
}

func TestConsolePrintsTextAndPDF(t *testing.T) {
	c, out, _ := newTestConsole(t, 2, script(
		bookLines("Asha Rao"),
		[]string{"7", "1", "3"},
		[]string{"8"},
	)...)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "PDF ticket saved to")

	files, err := filepath.Glob(filepath.Join(c.TicketDir, "*.pdf"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
