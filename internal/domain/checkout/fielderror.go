package checkout

import "fmt"

// FieldError is a recoverable, per-field validation failure. It is surfaced
// inline to the shopper and never reaches the network layer.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
