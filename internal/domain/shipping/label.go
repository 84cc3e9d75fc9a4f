package shipping

import "context"

// LabelFileType is the document format requested for a purchased label
type LabelFileType string

// LabelFileTypePDF is the only format the relay requests
const LabelFileTypePDF LabelFileType = "PDF"

const defaultLabelFileType = LabelFileTypePDF

// LabelStatus is the provider-reported outcome of a label purchase
type LabelStatus string

// Provider statuses the relay acts on. Any status other than
// LabelStatusSuccess is treated as a failed purchase.
const (
	LabelStatusSuccess LabelStatus = "SUCCESS"
	LabelStatusError   LabelStatus = "ERROR"
)

// LabelRequest asks the provider to finalize a rate into a label
type LabelRequest struct {
	RateID   string
	FileType LabelFileType
	Async    bool
}

// NewLabelRequest builds a synchronous PDF label request for a rate.
func NewLabelRequest(rateID string) LabelRequest {
	return LabelRequest{
		RateID:   rateID,
		FileType: defaultLabelFileType,
		Async:    false,
	}
}

// Label is the provider's record of a label purchase
type Label struct {
	TransactionID  string
	RateID         string
	Status         LabelStatus
	TrackingNumber string
	TrackingURL    string
	LabelURL       string
	Messages       []string
}

// Succeeded reports whether the provider generated the label document.
func (l *Label) Succeeded() bool {
	return l != nil && l.Status == LabelStatusSuccess
}

// Provider is the shipping-rate and label provider.
type Provider interface {
	// GetShipment fetches a shipment and its current rates.
	GetShipment(ctx context.Context, shipmentID string) (*Shipment, error)

	// GetRate fetches a single rate by its identifier. An unknown rate is
	// reported as ErrInvalidRate.
	GetRate(ctx context.Context, rateID string) (*Rate, error)

	// PurchaseLabel buys a label for a previously quoted rate.
	PurchaseLabel(ctx context.Context, req LabelRequest) (*Label, error)
}

// LabelDocumentFetcher downloads a generated label document.
type LabelDocumentFetcher interface {
	FetchLabelDocument(ctx context.Context, labelURL string) (data []byte, contentType string, err error)
}

// LabelArchive keeps a copy of purchased label documents.
type LabelArchive interface {
	// Store saves the document and returns the key it was stored under.
	Store(ctx context.Context, label *Label, data []byte, contentType string) (string, error)
}
