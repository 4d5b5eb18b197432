package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bylucie/storefront/internal/domain/cart"
	domain "github.com/bylucie/storefront/internal/domain/checkout"
	"github.com/bylucie/storefront/internal/domain/order"
	"github.com/bylucie/storefront/internal/domain/stock"
	"github.com/bylucie/storefront/internal/observability"
	"github.com/bylucie/storefront/internal/observability/logctx"
)

const (
	checkoutService   = "checkout-wizard"
	useCaseAdvance    = "checkout.advance"
	useCaseSubmit     = "checkout.submit"
	useCaseStockCheck = "checkout.stock_check"
	spanPrefix        = "UC."
)

var (
	// ErrStockConflict gates forward transitions while any line exceeds
	// availability; the caller reads Conflicts() for the itemized banner.
	ErrStockConflict = errors.New("checkout: stock conflict outstanding")
	// ErrSubmissionInFlight rejects interaction while a submission is pending.
	ErrSubmissionInFlight = errors.New("checkout: submission in flight")
)

// Wizard drives the three-step checkout flow: Contact -> Delivery -> Payment,
// completed by an accepted submission. It re-validates stock at mount, before
// every forward transition, and immediately before submitting, since other
// shoppers may have bought the same stock in the meantime. The client checks
// are advisory; the persistence service's atomic decrement is the actual
// guarantee against overselling.
type Wizard struct {
	carts   CartStore
	oracle  StockOracle
	gateway SubmissionGateway

	log         observability.Logger
	tracer      observability.Tracer
	transitions observability.Counter   // checkout_step_transitions_total{step,outcome}
	submissions observability.Counter   // order_submissions_total{outcome}
	submitDur   observability.Histogram // order_submission_duration_seconds
	lookups     observability.Counter   // stock_lookups_total{outcome}
	lookupDur   observability.Histogram // stock_lookup_duration_seconds

	// userID is the authenticated identity; empty means guest checkout.
	userID string

	mu          sync.Mutex
	state       domain.StepState
	form        domain.Form
	lines       cart.Lines
	snapshot    stock.Snapshot
	conflicts   []stock.Conflict
	submitting  bool
	unsubscribe func()
}

// NewWizard mounts the wizard over a non-empty cart. An empty cart returns
// cart.ErrEmpty and the caller redirects to the cart view. The initial
// advisory stock check runs here; its failure is logged, never blocking.
func NewWizard(
	ctx context.Context,
	carts CartStore,
	oracle StockOracle,
	gateway SubmissionGateway,
	userID string,
	tel observability.Observability,
) (*Wizard, error) {
	if tel == nil {
		tel = observability.Nop()
	}

	lines, err := carts.Lines(ctx)
	if err != nil {
		return nil, err
	}
	if err := lines.Validate(); err != nil {
		return nil, err
	}

	metrics := tel.Metrics()
	w := &Wizard{
		carts:       carts,
		oracle:      oracle,
		gateway:     gateway,
		log:         tel.Logger().With(observability.F("service", checkoutService)),
		tracer:      tel.Tracer(),
		transitions: metrics.Counter(observability.MCheckoutTransitions),
		submissions: metrics.Counter(observability.MOrderSubmissions),
		submitDur:   metrics.Histogram(observability.MOrderSubmissionDuration),
		lookups:     metrics.Counter(observability.MStockLookups),
		lookupDur:   metrics.Histogram(observability.MStockLookupDuration),
		userID:      userID,
		state:       domain.InitialState(),
		lines:       lines,
	}

	w.mu.Lock()
	w.refreshStockLocked(ctx)
	w.mu.Unlock()

	w.unsubscribe = carts.Subscribe(w.onCartChanged)
	return w, nil
}

// Close detaches the wizard from the cart store.
func (w *Wizard) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

func (w *Wizard) Step() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step()
}

// Conflicts returns the outstanding stock conflicts in cart order.
func (w *Wizard) Conflicts() []stock.Conflict {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]stock.Conflict, len(w.conflicts))
	copy(out, w.conflicts)
	return out
}

// Blocked reports whether any conflict gates forward progress. The only way
// out is adjusting quantities on the cart page.
func (w *Wizard) Blocked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.conflicts) > 0
}

// LineLevels classifies each cart line against the latest snapshot for the
// order summary (out of stock / low stock badges).
func (w *Wizard) LineLevels() map[string]stock.Level {
	w.mu.Lock()
	defer w.mu.Unlock()

	levels := make(map[string]stock.Level, len(w.lines))
	for _, l := range w.lines {
		levels[l.ProductID] = stock.LevelFor(l, w.snapshot)
	}
	return levels
}

func (w *Wizard) Form() domain.Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

func (w *Wizard) SetShipping(p domain.ShippingProfile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Shipping = p
}

func (w *Wizard) SetDelivery(sel domain.DeliverySelection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Delivery = sel
}

func (w *Wizard) SetPayment(m domain.PaymentMethod) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Payment = m
}

// Advance attempts the forward transition out of the current step. It
// re-fetches the stock snapshot first; outstanding conflicts return
// ErrStockConflict and the step does not change. Field validation failures
// are returned without an error and likewise leave the step unchanged.
func (w *Wizard) Advance(ctx context.Context) ([]domain.FieldError, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return nil, ErrSubmissionInFlight
	}

	step := w.state.Step()
	logger := logctx.FromOr(ctx, w.log).With(observability.F("use_case", useCaseAdvance))

	lines, err := w.carts.Lines(ctx)
	if err == nil {
		w.lines = lines
	}
	if err := w.lines.Validate(); err != nil {
		return nil, err
	}

	w.refreshStockLocked(ctx)
	if len(w.conflicts) > 0 {
		w.countTransition(step, "stock_conflict")
		logger.Warn("step_blocked_by_stock",
			observability.F("step", string(step)),
			observability.F("conflicts", len(w.conflicts)),
		)
		return nil, ErrStockConflict
	}

	var fieldErrs []domain.FieldError
	switch step {
	case domain.StepContact:
		fieldErrs = w.form.ValidateContact()
	case domain.StepDelivery:
		fieldErrs = w.form.ValidateDelivery()
	}
	if len(fieldErrs) > 0 {
		w.countTransition(step, "field_error")
		return fieldErrs, nil
	}

	next, err := w.state.OnAdvance()
	if err != nil {
		w.countTransition(step, "invalid")
		return nil, err
	}
	w.state = next

	w.countTransition(step, "success")
	logger.Info("step_advanced",
		observability.F("from", string(step)),
		observability.F("to", string(next.Step())),
	)
	return nil, nil
}

// Back returns to the previous step without validation. It is refused only
// while a submission is in flight; from the first step it reports an invalid
// transition and the caller exits to the cart.
func (w *Wizard) Back(ctx context.Context) error {
	_ = ctx

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	prev, err := w.state.OnBack()
	if err != nil {
		return err
	}
	w.state = prev
	return nil
}

// Submit builds a fresh draft and dispatches it. The final advisory stock
// re-check runs first: conflicts resolve to a StockConflict outcome without
// the persistence service being contacted at all. An accepted outcome clears
// the cart and completes the wizard; any other outcome preserves cart and
// form state for a retry. No automatic retry happens here.
func (w *Wizard) Submit(ctx context.Context) (_ order.Outcome, _ []domain.FieldError, err error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return order.Outcome{}, nil, ErrSubmissionInFlight
	}
	if w.state.Step() != domain.StepPayment {
		w.mu.Unlock()
		return order.Outcome{}, nil, domain.ErrInvalidStepTransition
	}
	w.submitting = true
	form := w.form
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	logger := logctx.FromOr(ctx, w.log).With(observability.F("use_case", useCaseSubmit))

	ctx, span := w.tracer.Start(ctx, spanPrefix+"SubmitOrder",
		attribute.String("use_case", useCaseSubmit),
		attribute.Bool("order.guest", w.userID == ""),
	)
	start := time.Now()
	outcomeLabel := "error"

	defer func() {
		lat := time.Since(start).Seconds()
		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, outcomeLabel)
			} else {
				span.SetStatus(codes.Ok, outcomeLabel)
			}
			span.End()
		}
		if w.submissions != nil {
			w.submissions.Add(1, observability.L("outcome", outcomeLabel))
		}
		if w.submitDur != nil {
			w.submitDur.Observe(lat)
		}
		logger.Info("use_case_done",
			observability.F("outcome", outcomeLabel),
			observability.F("latency_seconds", lat),
		)
	}()

	if errs := form.ValidatePayment(); len(errs) > 0 {
		outcomeLabel = "field_error"
		return order.Outcome{}, errs, nil
	}

	lines, lerr := w.carts.Lines(ctx)
	if lerr != nil {
		outcomeLabel = "cart_unavailable"
		return order.Outcome{}, nil, lerr
	}
	if verr := lines.Validate(); verr != nil {
		outcomeLabel = "empty_cart"
		return order.Outcome{}, nil, verr
	}

	w.mu.Lock()
	w.lines = lines
	w.refreshStockLocked(ctx)
	conflicts := make([]stock.Conflict, len(w.conflicts))
	copy(conflicts, w.conflicts)
	w.mu.Unlock()

	if len(conflicts) > 0 {
		outcomeLabel = string(order.OutcomeStockConflict)
		return order.StockConflict(conflicts), nil, nil
	}

	draft := order.BuildDraft(lines, form, w.userID, time.Now())
	span.SetAttributes(attribute.String("order.number_hint", draft.OrderNumber))

	outcome := w.gateway.Submit(ctx, draft)
	outcomeLabel = string(outcome.Kind)

	switch outcome.Kind {
	case order.OutcomeAccepted:
		if cerr := w.carts.Clear(ctx); cerr != nil {
			logger.Warn("cart_clear_failed", observability.F("error", cerr.Error()))
		}
		w.mu.Lock()
		if next, serr := w.state.OnSubmitted(); serr == nil {
			w.state = next
		}
		w.mu.Unlock()
		span.AddEvent("order.accepted")
	case order.OutcomeStockConflict:
		// The server's atomic decrement lost the race for us; refresh the
		// snapshot so the conflict banner reflects the new truth.
		w.mu.Lock()
		w.refreshStockLocked(ctx)
		if len(outcome.Conflicts) > 0 {
			w.conflicts = outcome.Conflicts
		}
		w.mu.Unlock()
	}

	return outcome, nil, nil
}

// onCartChanged re-evaluates conflicts against the last snapshot whenever
// the cart mutates outside the wizard, without a network call.
func (w *Wizard) onCartChanged(lines cart.Lines) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = lines
	w.conflicts = stock.FindConflicts(w.lines, w.snapshot)
}

// refreshStockLocked re-fetches the advisory snapshot and recomputes
// conflicts. A failed lookup keeps the previous snapshot: absence of data is
// not a conflict, and a flaky network must never block the shopper.
func (w *Wizard) refreshStockLocked(ctx context.Context) {
	if w.oracle == nil {
		return
	}

	start := time.Now()
	snap, err := w.oracle.Check(ctx, w.lines.ProductIDs())
	lat := time.Since(start).Seconds()

	outcome := "success"
	if err != nil {
		outcome = "error"
		w.log.Warn("stock_lookup_failed",
			observability.F("use_case", useCaseStockCheck),
			observability.F("error", err.Error()),
		)
	} else {
		w.snapshot = snap
	}
	w.conflicts = stock.FindConflicts(w.lines, w.snapshot)

	if w.lookups != nil {
		w.lookups.Add(1, observability.L("outcome", outcome))
	}
	if w.lookupDur != nil {
		w.lookupDur.Observe(lat)
	}
}

func (w *Wizard) countTransition(step domain.Step, outcome string) {
	if w.transitions == nil {
		return
	}
	w.transitions.Add(1,
		observability.L("step", string(step)),
		observability.L("outcome", outcome),
	)
}
