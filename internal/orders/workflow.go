package orders

import (
	"context"
	"sync"

	"github.com/angelmondragon/refabry-storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
)

const unknownFailureMessage = "An unknown error occurred"

var (
	// ErrEmptyCart is returned when checkout is attempted without any lines.
	ErrEmptyCart = pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty")
	// ErrSubmissionPending is returned while an earlier submission is in flight.
	ErrSubmissionPending = pkgerrors.New(pkgerrors.CodeStateConflict, "order submission already in progress")
)

// OrderCreator sends an order to the remote order service.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req shopapi.OrderRequest) (*shopapi.OrderResponse, error)
}

// Cart is the part of the cart store the workflow needs.
type Cart interface {
	Lines() cart.Lines
	Clear(ctx context.Context) cart.Snapshot
}

// OutcomeRecorder counts submission outcomes.
type OutcomeRecorder interface {
	IncOrderOutcome(outcome string)
}

type nopOutcomeRecorder struct{}

func (nopOutcomeRecorder) IncOrderOutcome(string) {}

// Workflow drives one shopper's order submissions: Idle → Pending → Success | Error.
type Workflow struct {
	mu       sync.Mutex
	state    State
	draft    CheckoutForm
	cart     Cart
	creator  OrderCreator
	logg     *logger.Logger
	recorder OutcomeRecorder
}

// NewWorkflow wires a workflow to the shopper's cart and the order service.
func NewWorkflow(c Cart, creator OrderCreator, logg *logger.Logger, recorder OutcomeRecorder) *Workflow {
	if logg == nil {
		logg = logger.Nop()
	}
	if recorder == nil {
		recorder = nopOutcomeRecorder{}
	}
	return &Workflow{
		draft:    DefaultCheckoutForm(),
		cart:     c,
		creator:  creator,
		logg:     logg,
		recorder: recorder,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Form returns the draft checkout form: the last submitted values, or the
// defaults after a successful order.
func (w *Workflow) Form() CheckoutForm {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Reset returns the workflow to Idle from any state.
func (w *Workflow) Reset() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Reduce(w.state, Reset{})
	return w.state
}

// Submit places an order for the whole cart. On success the cart is cleared and
// the draft form reset; on failure the cart is left exactly as it was.
func (w *Workflow) Submit(ctx context.Context, form CheckoutForm) (*shopapi.OrderResponse, error) {
	form = form.normalized()

	w.mu.Lock()
	if w.state.Loading {
		w.mu.Unlock()
		return nil, ErrSubmissionPending
	}
	if err := form.Validate(); err != nil {
		w.mu.Unlock()
		w.recorder.IncOrderOutcome("invalid_form")
		return nil, err
	}
	var lines cart.Lines
	if w.cart != nil {
		lines = w.cart.Lines()
	}
	if len(lines) == 0 {
		w.mu.Unlock()
		w.recorder.IncOrderOutcome("empty_cart")
		return nil, ErrEmptyCart
	}
	w.draft = form
	w.state = Reduce(w.state, Submitted{})
	w.mu.Unlock()

	resp, err := w.send(ctx, BuildRequest(lines, form))

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.fail(ctx, err)
		return nil, err
	}
	w.state = Reduce(w.state, Succeeded{})
	w.draft = DefaultCheckoutForm()
	w.cart.Clear(context.WithoutCancel(ctx))
	w.recorder.IncOrderOutcome("success")
	w.logg.Info(w.logg.WithField(ctx, "lines", len(lines)), "order placed")
	return resp, nil
}

// BuyNow places a single-line order for item without touching the cart.
func (w *Workflow) BuyNow(ctx context.Context, item cart.LineItem, form CheckoutForm) (*shopapi.OrderResponse, error) {
	form = form.normalized()
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	w.mu.Lock()
	if w.state.Loading {
		w.mu.Unlock()
		return nil, ErrSubmissionPending
	}
	if err := form.Validate(); err != nil {
		w.mu.Unlock()
		w.recorder.IncOrderOutcome("invalid_form")
		return nil, err
	}
	w.state = Reduce(w.state, Submitted{})
	w.mu.Unlock()

	resp, err := w.send(ctx, BuildRequest(cart.Lines{item}, form))

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.fail(ctx, err)
		return nil, err
	}
	w.state = Reduce(w.state, Succeeded{})
	w.recorder.IncOrderOutcome("success")
	w.logg.Info(w.logg.WithField(ctx, "product_id", item.ProductID), "buy-now order placed")
	return resp, nil
}

// send ignores ctx cancellation. The HTTP client timeout bounds the call.
func (w *Workflow) send(ctx context.Context, req Request) (*shopapi.OrderResponse, error) {
	if w.creator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service not configured")
	}
	return w.creator.CreateOrder(context.WithoutCancel(ctx), req)
}

// fail records err; callers hold w.mu.
func (w *Workflow) fail(ctx context.Context, err error) {
	msg := pkgerrors.Reason(err)
	if msg == "" {
		msg = unknownFailureMessage
	}
	w.state = Reduce(w.state, Failed{Message: msg})
	if pkgerrors.HasCode(err, pkgerrors.CodeRemoteValidation) {
		w.recorder.IncOrderOutcome("rejected")
		w.logg.Warn(w.logg.WithField(ctx, "reason", msg), "order rejected by remote service")
		return
	}
	w.recorder.IncOrderOutcome("failure")
	w.logg.Error(ctx, "order submission failed", err)
}
