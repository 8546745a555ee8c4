package extraction

import "context"

// PartyFields is the billing-party record extracted from free-form text.
// Fields the model could not find are empty strings.
type PartyFields struct {
	CompanyName  string `json:"companyName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Email        string `json:"email"`
	VATNumber    string `json:"vatNumber"`
}

// Extractor defines the interface for billing-info extraction backends.
type Extractor interface {
	// ExtractParty analyzes unstructured text (email signatures, address
	// blurbs) and extracts the fields for an invoice's Bill To section.
	ExtractParty(ctx context.Context, text string) (*PartyFields, error)
	// Close closes the extractor and releases resources.
	Close() error
}
