package dto

import "github.com/erp/webhook-bridge/internal/domain/enrichment"

// InvoiceCreatedRequest is the payload posted by the upstream webhook when an
// invoice is created. Relation ids arrive as plain integers; optional fields
// may be absent.
type InvoiceCreatedRequest struct {
	PartnerID    int64   `json:"partner_id" binding:"required"`
	LineIDs      []int64 `json:"invoice_line_ids"`
	Origin       string  `json:"invoice_origin"`
	PaymentState string  `json:"payment_state"`
	CurrencyID   int64   `json:"currency_id"`
}

// ToEvent converts the request into the domain event.
func (r InvoiceCreatedRequest) ToEvent() enrichment.InboundEvent {
	return enrichment.InboundEvent{
		PartnerID:    r.PartnerID,
		LineIDs:      r.LineIDs,
		Origin:       r.Origin,
		PaymentState: r.PaymentState,
		CurrencyID:   r.CurrencyID,
	}
}
