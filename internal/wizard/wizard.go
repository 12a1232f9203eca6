// Package wizard drives the three-step booking flow: review the trip, pay
// for it, see the confirmation.
package wizard

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/wanderlust-backend/internal/bookings"
	"github.com/angelmondragon/wanderlust-backend/internal/confirmation"
	"github.com/angelmondragon/wanderlust-backend/internal/payments"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

var (
	ErrInvalidTransition  = pkgerrors.New(pkgerrors.CodeStateConflict, "invalid booking step transition")
	ErrSubmissionInFlight = pkgerrors.New(pkgerrors.CodeConflict, "a submission is already in progress")
)

type IntentCreator interface {
	CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error)
}

type BookingRecorder interface {
	RecordBooking(ctx context.Context, input bookings.RecordInput) (string, error)
}

type Confirmer = confirmation.Confirmer

type Quoter interface {
	Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) (pricing.Quote, error)
}

// QuoterFunc adapts a function to Quoter.
type QuoterFunc func(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) (pricing.Quote, error)

func (f QuoterFunc) Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) (pricing.Quote, error) {
	return f(ctx, itemType, itemID, travelers)
}

// ResolverQuoter exposes an in-process pricing resolver as a Quoter.
func ResolverQuoter(r *pricing.Resolver) Quoter {
	return QuoterFunc(func(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) (pricing.Quote, error) {
		return r.Quote(ctx, itemType, itemID, travelers), nil
	})
}

// Selection is the trip the customer picked before entering the wizard.
type Selection struct {
	ItemID    string
	ItemType  enums.ItemType
	Travelers int
	Dates     string
	UserID    string
}

// Receipt is what the confirmation step shows. BookingID is empty when the
// booking write failed after a successful payment.
type Receipt struct {
	AmountCents     int64
	BookingID       string
	PaymentIntentID string
	Selection       Selection
	Item            *pricing.PricedItem
}

type Params struct {
	Selection Selection
	Intents   IntentCreator
	Recorder  BookingRecorder
	Confirmer Confirmer
	Quoter    Quoter
	Logger    *logger.Logger
}

type Wizard struct {
	sel       Selection
	intents   IntentCreator
	recorder  BookingRecorder
	confirmer Confirmer
	quoter    Quoter
	logg      *logger.Logger

	mu        sync.Mutex
	step      Step
	inFlight  bool
	intent    *payments.Intent
	element   *confirmation.PaymentElement
	quote     *pricing.Quote
	bookingID string
}

func New(params Params) (*Wizard, error) {
	if params.Intents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "intent creator required")
	}
	if params.Confirmer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "confirmer required")
	}
	if params.Recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking recorder required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	sel := params.Selection
	sel.ItemID = strings.TrimSpace(sel.ItemID)
	sel.UserID = strings.TrimSpace(sel.UserID)
	if sel.UserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required").
			WithDetails(map[string]string{"userId": "is required"})
	}
	return &Wizard{
		sel:       sel,
		intents:   params.Intents,
		recorder:  params.Recorder,
		confirmer: params.Confirmer,
		quoter:    params.Quoter,
		logg:      logg,
		step:      StepReviewing,
	}, nil
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Intent returns the intent created by the last successful Continue, if any.
func (w *Wizard) Intent() *payments.Intent {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.intent == nil {
		return nil
	}
	out := *w.intent
	return &out
}

// Review returns the cost breakdown shown on step 1.
func (w *Wizard) Review(ctx context.Context) (pricing.Quote, error) {
	if w.quoter == nil {
		return pricing.Quote{}, pkgerrors.New(pkgerrors.CodeInternal, "quoter not configured")
	}
	w.mu.Lock()
	if w.step != StepReviewing {
		w.mu.Unlock()
		return pricing.Quote{}, ErrInvalidTransition
	}
	w.mu.Unlock()

	quote, err := w.quoter.Quote(ctx, w.sel.ItemType, w.sel.ItemID, w.sel.Travelers)
	if err != nil {
		return pricing.Quote{}, err
	}
	w.mu.Lock()
	w.quote = &quote
	w.mu.Unlock()
	return quote, nil
}

// Continue creates a payment intent and moves to the payment step. On error
// the wizard stays on step 1.
func (w *Wizard) Continue(ctx context.Context) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if w.step != StepReviewing {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	w.inFlight = true
	w.mu.Unlock()

	intent, err := w.intents.CreateIntent(ctx, payments.CreateIntentInput{
		ItemID:    w.sel.ItemID,
		ItemType:  w.sel.ItemType,
		Travelers: w.sel.Travelers,
		Dates:     w.sel.Dates,
		UserID:    w.sel.UserID,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "wizard.intent_failed")
		return err
	}

	element, err := confirmation.NewPaymentElement(intent.ClientSecret, w.confirmer, w.onConfirmed)
	if err != nil {
		return err
	}
	w.intent = intent
	w.element = element
	w.step = StepPaying
	return nil
}

// Back returns to the review step and discards the payment element. The next
// Continue opens a new intent.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrSubmissionInFlight
	}
	if w.step != StepPaying {
		return ErrInvalidTransition
	}
	w.element = nil
	w.intent = nil
	w.step = StepReviewing
	return nil
}

// Pay submits the payment method through the element. A decline keeps the
// wizard on step 2 and returns the *confirmation.ConfirmationError.
func (w *Wizard) Pay(ctx context.Context, paymentMethod string) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if w.step != StepPaying || w.element == nil {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	w.inFlight = true
	element := w.element
	w.mu.Unlock()

	err := element.Submit(ctx, paymentMethod)

	w.mu.Lock()
	w.inFlight = false
	w.mu.Unlock()
	return err
}

// onConfirmed is the element's success callback. The booking write is best
// effort: the customer has paid, so the wizard advances either way.
func (w *Wizard) onConfirmed(ctx context.Context) {
	w.mu.Lock()
	intent := w.intent
	w.mu.Unlock()
	if intent == nil {
		return
	}

	bookingID, err := w.recorder.RecordBooking(ctx, bookings.RecordInput{
		UserID:          w.sel.UserID,
		ItemID:          w.sel.ItemID,
		ItemType:        w.sel.ItemType,
		Travelers:       w.sel.Travelers,
		Dates:           w.sel.Dates,
		AmountCents:     intent.Amount,
		PaymentIntentID: intent.PaymentIntentID,
	})
	if err != nil {
		ctx = w.logg.WithPaymentIntentID(ctx, intent.PaymentIntentID)
		w.logg.Error(ctx, "wizard.booking_record_failed", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.bookingID = bookingID
	w.element = nil
	w.step = StepConfirmed
}

// Receipt is only available once the wizard reached step 3.
func (w *Wizard) Receipt() (Receipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepConfirmed || w.intent == nil {
		return Receipt{}, ErrInvalidTransition
	}
	out := Receipt{
		AmountCents:     w.intent.Amount,
		BookingID:       w.bookingID,
		PaymentIntentID: w.intent.PaymentIntentID,
		Selection:       w.sel,
	}
	if w.quote != nil {
		out.Item = w.quote.Item
	}
	return out, nil
}
