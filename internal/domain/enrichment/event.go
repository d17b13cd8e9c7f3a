package enrichment

import "fmt"

// InboundEvent is the raw invoice-created webhook payload. Immutable once
// received; one pipeline run is executed per event.
type InboundEvent struct {
	// PartnerID identifies the customer the invoice belongs to.
	PartnerID int64
	// LineIDs identifies the invoice lines to enrich, in output order.
	LineIDs []int64
	// Origin is the originating sales order reference, when present.
	Origin string
	// PaymentState is the invoice payment state tag, when present.
	PaymentState string
	// CurrencyID is the invoice currency identifier, when present.
	CurrencyID int64
}

// Validate checks the identifier fields required before any remote call is
// made. Optional fields are never validated; their absence is defaulted
// downstream.
func (e InboundEvent) Validate() error {
	if e.PartnerID <= 0 {
		return fmt.Errorf("%w: partner_id", ErrMalformedEvent)
	}
	return nil
}
