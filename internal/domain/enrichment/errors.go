package enrichment

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed indicates the remote platform rejected the configured
	// credentials. Terminal for the whole event; no partial result exists.
	ErrAuthFailed = errors.New("enrichment: remote authentication failed")

	// ErrCustomerNotFound indicates the event's customer identifier resolved
	// to zero records. A missing customer is a caller error and is surfaced
	// distinctly from missing optional data.
	ErrCustomerNotFound = errors.New("enrichment: customer not found")

	// ErrMalformedEvent indicates the inbound payload is missing a required
	// identifier field. Rejected before any remote call is made.
	ErrMalformedEvent = errors.New("enrichment: event missing required fields")
)

// Stage names carried by UpstreamError.
const (
	StageCustomer     = "customer"
	StageInvoiceLines = "invoice_lines"
	StageOrderNotes   = "order_notes"
	StageProducts     = "products"
)

// UpstreamError reports a failed remote read together with the pipeline
// stage that issued it.
type UpstreamError struct {
	Stage string
	Err   error
}

// NewUpstreamError wraps a remote read failure with its stage name.
func NewUpstreamError(stage string, err error) *UpstreamError {
	return &UpstreamError{Stage: stage, Err: err}
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("enrichment: stage %s: upstream read failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying remote error.
func (e *UpstreamError) Unwrap() error { return e.Err }
