package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"railway/internal/domain/models"
	"railway/internal/utils"

	"github.com/wneessen/go-mail"
)

// MailNotifier emails the booking confirmation with the PDF slip attached.
type MailNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Renderer TicketRenderer
}

func (n MailNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(n.Port)}
	if n.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.Username),
			mail.WithPassword(n.Password),
		)
	}
	return mail.NewClient(n.Host, opts...)
}

// BuildMessage assembles the confirmation without sending it.
func (n MailNotifier) BuildMessage(p models.RenderPayload) (*mail.Msg, error) {
	t := p.Ticket
	msg := mail.NewMsg()
	if err := msg.From(n.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(t.Passenger.Email); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Booking confirmed - PNR %s", t.PNR))
	msg.SetBodyString(mail.TypeTextPlain, confirmationBody(p))

	renderer := n.Renderer
	if renderer == nil {
		renderer = PDFRenderer{}
	}
	data, filename, err := renderer.Render(p)
	if err != nil {
		return nil, fmt.Errorf("render slip: %w", err)
	}
	if err := msg.AttachReader(filename, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("attach slip: %w", err)
	}
	return msg, nil
}

func (n MailNotifier) BookingConfirmed(ctx context.Context, p models.RenderPayload) error {
	msg, err := n.BuildMessage(p)
	if err != nil {
		return err
	}
	c, err := n.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	utils.LogEvent(utils.RequestID(ctx), "notify", "booking_confirmed", fmt.Sprintf("ticket_id=%d", p.Ticket.ID))
	return nil
}

func confirmationBody(p models.RenderPayload) string {
	t := p.Ticket
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", safe(t.Passenger.Name, "passenger"))
	fmt.Fprintf(&b, "Your ticket is booked.\n\n")
	fmt.Fprintf(&b, "PNR        : %s\n", t.PNR)
	fmt.Fprintf(&b, "Ticket ID  : %d\n", t.ID)
	if p.Train != nil {
		fmt.Fprintf(&b, "Train      : %d %s (%s)\n", p.Train.ID, p.Train.Name, p.Train.Route())
	}
	fmt.Fprintf(&b, "Journey    : %s\n", utils.FormatDate(t.JourneyDate))
	fmt.Fprintf(&b, "Seat       : %s (%s)\n", t.Seat, t.Berth)
	fmt.Fprintf(&b, "Class      : %s\n", t.Class.Label())
	fmt.Fprintf(&b, "Total fare : %s\n\n", utils.FormatRupees(t.Fare.Total))
	b.WriteString("Your reservation slip is attached.\n")
	return b.String()
}
