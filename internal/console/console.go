// Package console is the interactive menu over the reservation service. Input retry loops
// live here; the service only ever sees trimmed, parsed values.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/services"
	"railway/internal/utils"
)

var errQuit = errors.New("quit")

type Console struct {
	Reservations *services.ReservationService
	TicketDir    string
	Now          func() time.Time

	in  *bufio.Scanner
	out io.Writer
}

func New(svc *services.ReservationService, in io.Reader, out io.Writer, ticketDir string) *Console {
	return &Console{
		Reservations: svc,
		TicketDir:    ticketDir,
		Now:          time.Now,
		in:           bufio.NewScanner(in),
		out:          out,
	}
}

type menuItem struct {
	label  string
	action func(context.Context) error
}

func (c *Console) menu() []menuItem {
	return []menuItem{
		{"Search Trains", c.searchTrains},
		{"Book Ticket", c.bookTicket},
		{"Cancel Ticket", c.cancelTicket},
		{"View Ticket Details", c.viewTicket},
		{"View My Tickets", c.myTickets},
		{"Update Passenger Details", c.updateDetails},
		{"Print Ticket", c.printTicket},
		{"Exit", func(context.Context) error { return errQuit }},
	}
}

// Run shows the main menu until the user exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.println("=================================")
	c.println("  RAILWAY RESERVATION SYSTEM")
	c.println("=================================")

	items := c.menu()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		c.println("\n=== MAIN MENU ===")
		for i, it := range items {
			c.printf("%d. %s\n", i+1, it.label)
		}
		c.println("================")

		choice, err := c.readInt("Enter your choice: ")
		if err != nil {
			return quietEOF(err)
		}
		if choice < 1 || choice > len(items) {
			c.println("Invalid choice! Please try again.")
			continue
		}
		err = items[choice-1].action(ctx)
		switch {
		case errors.Is(err, errQuit):
			c.println("Thank you for using Railway Reservation System!")
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			c.reportError(err)
		}
	}
}

func quietEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Console) searchTrains(ctx context.Context) error {
	c.println("\n=== SEARCH TRAINS ===")
	source, err := c.readRequired("Enter source station: ")
	if err != nil {
		return err
	}
	destination, err := c.readRequired("Enter destination station: ")
	if err != nil {
		return err
	}
	trains, err := c.Reservations.SearchTrains(ctx, source, destination)
	if err != nil {
		return err
	}
	if len(trains) == 0 {
		c.println("No trains found for the given route!")
		return nil
	}
	c.println("\n=== AVAILABLE TRAINS ===")
	c.printf("%-8s %-22s %-10s %-10s %-7s %-12s %-9s\n", "Train ID", "Train Name", "Departure", "Arrival", "Seats", "Fare", "Available")
	c.println(strings.Repeat("-", 88))
	for _, t := range trains {
		c.printf("%-8d %-22s %-10s %-10s %-7d %-12s %-9d\n",
			t.ID, t.Name, t.DepartureTime, t.ArrivalTime, t.TotalSeats, utils.FormatRupees(t.Fare), t.AvailableSeats)
	}
	return nil
}

func (c *Console) bookTicket(ctx context.Context) error {
	c.println("\n=== BOOK TICKET ===")
	trainID, err := c.readInt("Enter Train ID: ")
	if err != nil {
		return err
	}
	name, err := c.readRequired("Enter passenger name: ")
	if err != nil {
		return err
	}
	email, err := c.readRequired("Enter passenger email: ")
	if err != nil {
		return err
	}
	phone, err := c.readLine("Enter passenger phone: ")
	if err != nil {
		return err
	}
	age, err := c.readInt("Enter passenger age: ")
	if err != nil {
		return err
	}
	gender, err := c.readLine("Enter gender (M/F/O): ")
	if err != nil {
		return err
	}

	c.println("\nSelect ticket class:")
	for i, cl := range models.TicketClasses {
		c.printf("%d. %s\n", i+1, cl.Label())
	}
	classChoice, err := c.readInt(fmt.Sprintf("Enter choice (1-%d): ", len(models.TicketClasses)))
	if err != nil {
		return err
	}
	class := models.ClassGeneral
	if classChoice >= 1 && classChoice <= len(models.TicketClasses) {
		class = models.TicketClasses[classChoice-1]
	}

	journey, err := c.readJourneyDate()
	if err != nil {
		return err
	}

	ticket, err := c.Reservations.Book(ctx, models.BookingRequest{
		TrainID:        int64(trainID),
		PassengerName:  name,
		PassengerEmail: email,
		PassengerPhone: phone,
		Age:            age,
		Gender:         gender,
		Class:          string(class),
		JourneyDate:    journey,
		BookingSource:  "COUNTER",
	})
	if err != nil {
		return err
	}

	c.println("\n=== BOOKING CONFIRMATION ===")
	c.printf("Ticket booked successfully! Ticket ID: %d, PNR: %s\n", ticket.ID, ticket.PNR)
	if err := c.showTicket(ctx, ticket.ID); err != nil {
		return err
	}
	ok, err := c.confirm("\nWould you like to print the ticket? (y/n): ")
	if err != nil || !ok {
		return err
	}
	return c.printFormats(ctx, ticket.ID)
}

func (c *Console) readJourneyDate() (time.Time, error) {
	raw, err := c.readLine("Enter journey date (dd-MM-yyyy) or press Enter for today: ")
	if err != nil {
		return time.Time{}, err
	}
	today := utils.DateOnly(c.now())
	if raw == "" {
		return today, nil
	}
	d, err := utils.ParseJourneyDate(raw)
	if err != nil {
		c.println("Invalid date format, using today's date")
		return today, nil
	}
	return d, nil
}

func (c *Console) cancelTicket(ctx context.Context) error {
	c.println("\n=== CANCEL TICKET ===")
	id, err := c.readInt("Enter Ticket ID to cancel: ")
	if err != nil {
		return err
	}
	c.println("\nTicket details:")
	if err := c.showTicket(ctx, int64(id)); err != nil {
		return err
	}
	ok, err := c.confirm("\nAre you sure you want to cancel this ticket? (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		c.println("Cancellation aborted.")
		return nil
	}
	res, err := c.Reservations.Cancel(ctx, int64(id))
	if err != nil {
		return err
	}
	c.printf("Ticket %d cancelled successfully.\n", res.Ticket.ID)
	if res.Warning != "" {
		c.printf("Warning: %s\n", res.Warning)
	}
	return nil
}

func (c *Console) viewTicket(ctx context.Context) error {
	c.println("\n=== VIEW TICKET ===")
	id, err := c.readInt("Enter Ticket ID: ")
	if err != nil {
		return err
	}
	return c.showTicket(ctx, int64(id))
}

func (c *Console) showTicket(ctx context.Context, id int64) error {
	p, err := c.Reservations.RenderPayload(ctx, id)
	if err != nil {
		return err
	}
	t := p.Ticket
	c.printf("Ticket ID     : %d\n", t.ID)
	c.printf("PNR           : %s\n", t.PNR)
	if p.Train != nil {
		c.printf("Train         : %d - %s (%s)\n", p.Train.ID, p.Train.Name, p.Train.Route())
		c.printf("Timing        : %s -> %s\n", p.Train.DepartureTime, p.Train.ArrivalTime)
	} else {
		c.printf("Train         : %d\n", t.TrainID)
	}
	c.printf("Passenger     : %s (%s)\n", t.Passenger.Name, t.Passenger.Email)
	c.printf("Phone         : %s\n", t.Passenger.Phone)
	c.printf("Seat / Berth  : %s / %s\n", t.Seat, t.Berth)
	c.printf("Class         : %s\n", t.Class.Label())
	c.printf("Fare          : %s + %s tax = %s\n", utils.FormatRupees(t.Fare.Base), utils.FormatRupees(t.Fare.Tax), utils.FormatRupees(t.Fare.Total))
	c.printf("Journey Date  : %s\n", utils.FormatDate(t.JourneyDate))
	c.printf("Booked At     : %s\n", utils.FormatDateTime(t.BookedAt))
	c.printf("Status        : %s\n", t.Status)
	return nil
}

func (c *Console) myTickets(ctx context.Context) error {
	c.println("\n=== MY TICKETS ===")
	email, err := c.readRequired("Enter your email: ")
	if err != nil {
		return err
	}
	tickets, err := c.Reservations.TicketsForPassenger(ctx, email)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		c.println("No tickets found for this email!")
		return nil
	}
	c.printf("%-8s %-12s %-8s %-10s %-12s %-12s %-10s\n", "Ticket", "PNR", "Train", "Seat", "Journey", "Fare", "Status")
	c.println(strings.Repeat("-", 78))
	for _, t := range tickets {
		c.printf("%-8d %-12s %-8d %-10s %-12s %-12s %-10s\n",
			t.ID, t.PNR, t.TrainID, t.Seat, utils.FormatDate(t.JourneyDate), utils.FormatRupees(t.Fare.Total), t.Status)
	}
	return nil
}

func (c *Console) updateDetails(ctx context.Context) error {
	c.println("\n=== UPDATE PASSENGER DETAILS ===")
	id, err := c.readInt("Enter Ticket ID: ")
	if err != nil {
		return err
	}
	c.println("\nCurrent ticket details:")
	if err := c.showTicket(ctx, int64(id)); err != nil {
		return err
	}
	ok, err := c.confirm("\nDo you want to update passenger details? (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		c.println("Update cancelled.")
		return nil
	}
	name, err := c.readRequired("Enter new passenger name: ")
	if err != nil {
		return err
	}
	email, err := c.readRequired("Enter new passenger email: ")
	if err != nil {
		return err
	}
	phone, err := c.readLine("Enter new passenger phone: ")
	if err != nil {
		return err
	}
	if _, err := c.Reservations.UpdateContact(ctx, int64(id), models.ContactUpdate{Name: name, Email: email, Phone: phone}); err != nil {
		return err
	}
	c.println("Passenger details updated successfully!")
	return nil
}

func (c *Console) printTicket(ctx context.Context) error {
	c.println("\n=== PRINT TICKET ===")
	id, err := c.readInt("Enter Ticket ID to print: ")
	if err != nil {
		return err
	}
	return c.printFormats(ctx, int64(id))
}

func (c *Console) printFormats(ctx context.Context, id int64) error {
	c.println("\nChoose print format:")
	c.println("1. Console Print (Text)")
	c.println("2. PDF File")
	c.println("3. Both")
	choice, err := c.readInt("Enter your choice (1-3): ")
	if err != nil {
		return err
	}
	p, err := c.Reservations.RenderPayload(ctx, id)
	if err != nil {
		return err
	}
	switch choice {
	case 2:
		return c.writePDF(p)
	case 3:
		if err := c.writeText(p); err != nil {
			return err
		}
		return c.writePDF(p)
	case 1:
	default:
		c.println("Invalid choice! Printing to console...")
	}
	return c.writeText(p)
}

func (c *Console) writeText(p models.RenderPayload) error {
	data, _, err := services.TextRenderer{}.Render(p)
	if err != nil {
		return err
	}
	_, err = c.out.Write(data)
	return err
}

func (c *Console) writePDF(p models.RenderPayload) error {
	data, filename, err := services.PDFRenderer{}.Render(p)
	if err != nil {
		return domain.InternalError{Msg: "could not render PDF", Err: err}
	}
	dir := utils.FirstNonEmpty(c.TicketDir, ".")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.InternalError{Msg: "could not create ticket directory", Err: err}
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.InternalError{Msg: "could not save PDF", Err: err}
	}
	c.printf("PDF ticket saved to %s\n", path)
	return nil
}

// reportError prints a user-facing line for a failed action.
func (c *Console) reportError(err error) {
	var conflict domain.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		c.printf("Booking could not be completed: the seat was taken by another booking (ticket %d voided: %t).\n",
			conflict.TicketID, conflict.Compensated)
	case errors.Is(err, domain.ErrCapacityExceeded):
		c.println("No seats available on this train!")
	case errors.Is(err, domain.ErrInvalidState):
		c.printf("Operation not allowed: %v\n", err)
	case domain.IsNotFound(err):
		c.printf("Not found: %v\n", err)
	case domain.IsValidation(err):
		c.printf("Invalid input: %v\n", err)
	default:
		utils.LogError("", "console", "action", err)
		c.println("Something went wrong. Please try again.")
	}
}

func (c *Console) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

func (c *Console) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }

func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) readRequired(prompt string) (string, error) {
	for {
		s, err := c.readLine(prompt)
		if err != nil || s != "" {
			return s, err
		}
		c.println("This field is required.")
	}
}

func (c *Console) readInt(prompt string) (int, error) {
	for {
		s, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		c.println("Please enter a valid number.")
	}
}

func (c *Console) confirm(prompt string) (bool, error) {
	s, err := c.readLine(prompt)
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}
