package checkout

import "errors"

var ErrInvalidStepTransition = errors.New("checkout: invalid step transition")

type Step string

const (
	StepContact  Step = "contact"
	StepDelivery Step = "delivery"
	StepPayment  Step = "payment"
	StepComplete Step = "complete"
)

// StepState implements the state pattern for wizard progression. Forward
// moves only happen through OnAdvance, the final move only through
// OnSubmitted once an order has been accepted; validation and conflict
// gating are the caller's responsibility before invoking either.
type StepState interface {
	Step() Step
	OnAdvance() (StepState, error)
	OnBack() (StepState, error)
	OnSubmitted() (StepState, error)
}

// InitialState is the entry step of a freshly mounted wizard.
func InitialState() StepState { return contactState{} }

type contactState struct{}

func (contactState) Step() Step { return StepContact }

func (contactState) OnAdvance() (StepState, error) {
	return deliveryState{}, nil
}

func (contactState) OnBack() (StepState, error) {
	// Leaving the first step means leaving the wizard; not a step move.
	return nil, ErrInvalidStepTransition
}

func (contactState) OnSubmitted() (StepState, error) {
	return nil, ErrInvalidStepTransition
}

type deliveryState struct{}

func (deliveryState) Step() Step { return StepDelivery }

func (deliveryState) OnAdvance() (StepState, error) {
	return paymentState{}, nil
}

func (deliveryState) OnBack() (StepState, error) {
	return contactState{}, nil
}

func (deliveryState) OnSubmitted() (StepState, error) {
	return nil, ErrInvalidStepTransition
}

type paymentState struct{}

func (paymentState) Step() Step { return StepPayment }

func (paymentState) OnAdvance() (StepState, error) {
	// Payment only completes through an accepted submission.
	return nil, ErrInvalidStepTransition
}

func (paymentState) OnBack() (StepState, error) {
	return deliveryState{}, nil
}

func (paymentState) OnSubmitted() (StepState, error) {
	return completeState{}, nil
}

type completeState struct{}

func (completeState) Step() Step { return StepComplete }

func (completeState) OnAdvance() (StepState, error) {
	return nil, ErrInvalidStepTransition
}

func (completeState) OnBack() (StepState, error) {
	return nil, ErrInvalidStepTransition
}

func (completeState) OnSubmitted() (StepState, error) {
	return completeState{}, nil
}
