package invoice

import (
	"math/rand"
	"time"
)

// Logo alignment values. Exactly one of the two holds at all times;
// anything else normalizes to the default.
const (
	LogoLeft  = "left"
	LogoRight = "right"
)

// LineItem is one billable row. ID is an opaque token that stays stable
// across reorders; it is the sole identity for in-place edits and removal.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Amount      float64 `json:"amount"` // Unit price
}

// LineTotal returns quantity times unit price.
func (li LineItem) LineTotal() float64 {
	return li.Quantity * li.Amount
}

// PartyInfo is a billing party's display identity. All fields are display
// strings and may be empty; VATNumber is shown only when non-empty.
type PartyInfo struct {
	CompanyName  string `json:"companyName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"` // City, State, Zip
	Email        string `json:"email"`
	VATNumber    string `json:"vatNumber,omitempty"`
}

// InvoiceData is the complete invoice record. It is owned by the editing
// session and mutated only by whole-record replacement.
type InvoiceData struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	DateIssue     string     `json:"dateIssue"` // YYYY-MM-DD
	DateDue       string     `json:"dateDue"`   // YYYY-MM-DD; may precede DateIssue
	Sender        PartyInfo  `json:"sender"`
	Recipient     PartyInfo  `json:"recipient"`
	Items         []LineItem `json:"items"`
	Notes         string     `json:"notes"`
	Currency      string     `json:"currency"`
	LogoURL       string     `json:"logoUrl,omitempty"`
	LogoAlignment string     `json:"logoAlignment"`
}

// Subtotal sums the line totals. An empty item list yields 0.
func (d InvoiceData) Subtotal() float64 {
	var sum float64
	for _, item := range d.Items {
		sum += item.LineTotal()
	}
	return sum
}

// Total equals the subtotal; there is no tax or discount model.
func (d InvoiceData) Total() float64 {
	return d.Subtotal()
}

// Normalize repairs fields that must always hold: logo alignment falls
// back to the default when it is neither left nor right.
func (d *InvoiceData) Normalize() {
	if d.LogoAlignment != LogoLeft && d.LogoAlignment != LogoRight {
		d.LogoAlignment = LogoRight
	}
}

// ExportRecord is the stored metadata of one completed export. It
// describes the artifact, not the invoice; the invoice record itself is
// never persisted.
type ExportRecord struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	InvoiceNumber string    `json:"invoice_number"`
	SizeBytes     int       `json:"size_bytes"`
	PageHeightMM  float64   `json:"page_height_mm"`
	StoragePath   string    `json:"storage_path"`
	CreatedAt     time.Time `json:"created_at"`
}

const invoiceNumberChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomInvoiceNumber produces a fresh invoice number of the form
// XXXXXXX-NNNN: seven characters from [A-Z0-9] and a four-digit suffix.
func RandomInvoiceNumber() string {
	buf := make([]byte, 7, 12)
	for i := range buf {
		buf[i] = invoiceNumberChars[rand.Intn(len(invoiceNumberChars))]
	}
	buf = append(buf, '-')
	n := 1000 + rand.Intn(9000)
	for div := 1000; div >= 1; div /= 10 {
		buf = append(buf, byte('0'+(n/div)%10))
	}
	return string(buf)
}

// DefaultInvoice is the record every editing session starts from.
func DefaultInvoice(now time.Time) InvoiceData {
	return InvoiceData{
		InvoiceNumber: "Q7MKP2R-8391",
		DateIssue:     now.Format("2006-01-02"),
		DateDue:       now.AddDate(0, 0, 14).Format("2006-01-02"),
		Currency:      "$",
		LogoAlignment: LogoRight,
		Sender: PartyInfo{
			CompanyName:  "MIRA MUSE LLC",
			AddressLine1: "81807 E. County Road 22 Deer Trail",
			AddressLine2: "Colorado 80105 United States",
			Email:        "support@miramuse.ai",
		},
		Recipient: PartyInfo{
			CompanyName:  "Tech Corp GmbH",
			AddressLine1: "Musterstraße 12",
			AddressLine2: "10115 Berlin, Germany",
			Email:        "accounts@techcorp.de",
			VATNumber:    "DE123456789",
		},
		Items: []LineItem{
			{
				ID:          "1",
				Description: "Pro Plan Subscription (Monthly)",
				Quantity:    1,
				Amount:      49.90,
			},
			{
				ID:          "2",
				Description: "Consulting Services - API Integration",
				Quantity:    5,
				Amount:      150.00,
			},
		},
		Notes: "Payment received in full. Thank you for your business!",
	}
}
