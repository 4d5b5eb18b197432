package order

import (
	"github.com/bylucie/storefront/internal/domain/checkout"
	"github.com/bylucie/storefront/internal/domain/stock"
)

// OutcomeKind tags the result of a submission attempt. No raw error crosses
// the gateway boundary; every failure is resolved to one of these.
type OutcomeKind string

const (
	// OutcomeAccepted: the persistence service committed the order.
	OutcomeAccepted OutcomeKind = "accepted"
	// OutcomeStockConflict: requested quantities exceed availability,
	// detected client-side or by the server's atomic decrement.
	OutcomeStockConflict OutcomeKind = "stock_conflict"
	// OutcomeValidationRejected: the server rejected the payload with
	// field-level errors.
	OutcomeValidationRejected OutcomeKind = "validation_rejected"
	// OutcomeTransportFailure: network failure, timeout, or unparsable body.
	OutcomeTransportFailure OutcomeKind = "transport_failure"
	// OutcomeServerRejection: a structured server error matching none of the
	// above; surfaced sanitized with a generic retry affordance.
	OutcomeServerRejection OutcomeKind = "server_rejection"
)

type Outcome struct {
	Kind OutcomeKind
	// OrderID is the server-assigned identifier, set for OutcomeAccepted.
	OrderID string
	// OrderNumber echoes the persisted display number, when the server
	// returned one.
	OrderNumber string
	// Conflicts lists the lines that exceeded availability, in cart order.
	Conflicts []stock.Conflict
	// FieldErrors carries server-side validation failures.
	FieldErrors []checkout.FieldError
	// Cause is the transport failure, set for OutcomeTransportFailure.
	Cause error
	// Message is the sanitized server message for OutcomeServerRejection.
	Message string
}

func Accepted(orderID, orderNumber string) Outcome {
	return Outcome{Kind: OutcomeAccepted, OrderID: orderID, OrderNumber: orderNumber}
}

func StockConflict(conflicts []stock.Conflict) Outcome {
	return Outcome{Kind: OutcomeStockConflict, Conflicts: conflicts}
}

func ValidationRejected(errs []checkout.FieldError) Outcome {
	return Outcome{Kind: OutcomeValidationRejected, FieldErrors: errs}
}

func TransportFailure(cause error) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Cause: cause}
}

func ServerRejection(message string) Outcome {
	return Outcome{Kind: OutcomeServerRejection, Message: message}
}
