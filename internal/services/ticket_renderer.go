package services

import (
	"bytes"
	"fmt"
	"strings"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"

	"github.com/gosimple/slug"
	"github.com/phpdave11/gofpdf"
)

const (
	slipHeader = "TAMIL NADU RAILWAY RESERVATION SYSTEM"
	slipTitle  = "Electronic Reservation Slip (ERS)"
	slipFooter = "TAMIL NADU RAILWAY - SAFE & COMFORTABLE JOURNEY"
)

var slipInstructions = []string{
	"Please carry a valid photo ID proof during journey",
	"Ticket is valid only for the specified train and date",
	"Report to station at least 30 minutes before departure",
	"This is a computer generated ticket and does not require signature",
	"Keep this ticket safe until the end of your journey",
}

// TicketRenderer turns a render payload into a printable document.
type TicketRenderer interface {
	Render(p models.RenderPayload) (data []byte, filename string, err error)
	ContentType() string
}

// RendererFor picks a backend by name: "txt"/"text" or "pdf".
func RendererFor(format string) (TicketRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "txt", "text":
		return TextRenderer{}, nil
	case "pdf":
		return PDFRenderer{}, nil
	}
	return nil, domain.ValidationError{Field: "format", Msg: "must be one of txt pdf"}
}

// slipField is one labelled line shared by both renderers.
type slipField struct {
	label string
	value string
}

type slipSection struct {
	title  string
	fields []slipField
}

func slipSections(p models.RenderPayload) []slipSection {
	t := p.Ticket
	trainName, from, to, dep, arr := "-", "-", "-", "-", "-"
	if p.Train != nil {
		trainName = fmt.Sprintf("%d / %s", p.Train.ID, safe(p.Train.Name, "-"))
		from = strings.ToUpper(safe(p.Train.Source, "-"))
		to = strings.ToUpper(safe(p.Train.Destination, "-"))
		dep = safe(timeHM(p.Train.DepartureTime), "-")
		arr = safe(timeHM(p.Train.ArrivalTime), "-")
	} else if t.TrainID > 0 {
		trainName = fmt.Sprintf("%d", t.TrainID)
	}

	return []slipSection{
		{"JOURNEY DETAILS", []slipField{
			{"From", from},
			{"To", to},
			{"Class", t.Class.Label()},
			{"Train No./Name", trainName},
			{"Departure", dep},
			{"Arrival", arr},
			{"Journey Date", safe(utils.FormatDate(t.JourneyDate), "-")},
		}},
		{"PASSENGER DETAILS", []slipField{
			{"Name", safe(t.Passenger.Name, "-")},
			{"Age / Gender", fmt.Sprintf("%d / %s", t.Passenger.Age, safe(t.Passenger.Gender, "-"))},
			{"Email", safe(t.Passenger.Email, "-")},
			{"Phone", safe(t.Passenger.Phone, "-")},
			{"ID Proof", strings.TrimSpace(t.IDProof.Type + " " + t.IDProof.Number)},
			{"Seat / Berth", fmt.Sprintf("%s / %s", t.Seat, t.Berth)},
		}},
		{"PAYMENT DETAILS", []slipField{
			{"Ticket Fare", utils.FormatRupees(t.Fare.Base)},
			{"GST (15%)", utils.FormatRupees(t.Fare.Tax)},
			{"Total Amount", utils.FormatRupees(t.Fare.Total)},
			{"Payment Mode", safe(t.PaymentMode, "-")},
		}},
		{"TRANSACTION DETAILS", []slipField{
			{"Ticket ID", fmt.Sprintf("%d", t.ID)},
			{"PNR Number", safe(t.PNR, "-")},
			{"Transaction ID", safe(t.TransactionID, "-")},
			{"Booking Time", safe(utils.FormatDateTime(t.BookedAt), "-")},
			{"Booking Source", safe(t.BookingSource, "-")},
			{"Status", string(t.Status)},
		}},
	}
}

// slipFilename builds e.g. "ticket-1234567890-asha-rao.pdf".
func slipFilename(t models.Ticket, ext string) string {
	ref := t.PNR
	if ref == "" {
		ref = fmt.Sprintf("%d", t.ID)
	}
	return slug.Make("ticket "+ref+" "+t.Passenger.Name) + "." + ext
}

// TextRenderer prints the console slip.
type TextRenderer struct{}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TextRenderer) Render(p models.RenderPayload) ([]byte, string, error) {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, centre(slipHeader, 60))
	fmt.Fprintln(&b, centre(slipTitle, 60))
	fmt.Fprintln(&b, rule)
	for _, sec := range slipSections(p) {
		fmt.Fprintf(&b, "\n%s\n%s\n", sec.title, strings.Repeat("-", len(sec.title)))
		for _, f := range sec.fields {
			fmt.Fprintf(&b, "%-16s: %s\n", f.label, f.value)
		}
	}
	fmt.Fprintln(&b, "\nIMPORTANT INSTRUCTIONS")
	for _, in := range slipInstructions {
		fmt.Fprintf(&b, "  * %s\n", in)
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, centre("*** HAPPY JOURNEY ***", 60))
	fmt.Fprintln(&b, rule)
	return []byte(b.String()), slipFilename(p.Ticket, "txt"), nil
}

// PDFRenderer lays the slip out on one A4 page.
type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Render(p models.RenderPayload) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Electronic Reservation Slip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, slipHeader, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, slipTitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, sec := range slipSections(p) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(0, 51, 102)
		pdf.Cell(0, 8, sec.title)
		pdf.Ln(8)

		pdf.SetTextColor(0, 0, 0)
		for _, f := range sec.fields {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(50, 7, f.label, "1", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 7, f.value, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 51, 102)
	pdf.Cell(0, 8, "IMPORTANT INSTRUCTIONS")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, in := range slipInstructions {
		pdf.Cell(0, 6, "- "+in)
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 8, slipFooter, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "*** HAPPY JOURNEY ***", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), slipFilename(p.Ticket, "pdf"), nil
}

func centre(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}
