// Package payments creates processor-side payment intents for catalog items.
package payments

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	metaItemID    = "item_id"
	metaItemType  = "item_type"
	metaTravelers = "travelers"
	metaDates     = "dates"
	metaUserID    = "user_id"

	outcomeCreated = "created"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"

	DefaultCurrency = "usd"
)

// Pricer computes the charged amount.
type Pricer interface {
	ResolvePrice(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) int64
}

// Processor is the slice of the payment processor used to open intents.
type Processor interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
}

// AuditWriter persists the local record of a created intent.
type AuditWriter interface {
	Create(ctx context.Context, record *models.PaymentIntent) error
}

type Metrics interface {
	IncIntent(outcome string)
	ObserveProcessorCall(operation string, duration time.Duration)
}

type CreateIntentInput struct {
	ItemID    string
	ItemType  enums.ItemType
	Travelers int
	Dates     string
	UserID    string
}

// Intent is what the browser needs to mount the payment element.
type Intent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
}

type ServiceParams struct {
	Pricer    Pricer
	Processor Processor
	Audit     AuditWriter
	Metrics   Metrics
	Logger    *logger.Logger
	Currency  string
}

type Service struct {
	pricer    Pricer
	processor Processor
	audit     AuditWriter
	metrics   Metrics
	logg      *logger.Logger
	currency  string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Pricer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricer required")
	}
	if params.Processor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment processor required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		pricer:    params.Pricer,
		processor: params.Processor,
		audit:     params.Audit,
		metrics:   params.Metrics,
		logg:      logg,
		currency:  currency,
	}, nil
}

// CreateIntent prices the item and opens a payment intent for that amount.
// Invalid input never reaches the processor.
func (s *Service) CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error) {
	input.ItemID = strings.TrimSpace(input.ItemID)
	if err := validate(input); err != nil {
		s.count(outcomeInvalid)
		return nil, err
	}

	amount := s.pricer.ResolvePrice(ctx, input.ItemType, input.ItemID, input.Travelers)

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(metaItemID, input.ItemID)
	params.AddMetadata(metaItemType, input.ItemType.String())
	params.AddMetadata(metaTravelers, strconv.Itoa(input.Travelers))
	params.AddMetadata(metaDates, input.Dates)
	params.AddMetadata(metaUserID, input.UserID)

	started := time.Now()
	pi, err := s.processor.CreatePaymentIntent(ctx, params)
	if s.metrics != nil {
		s.metrics.ObserveProcessorCall("create_intent", time.Since(started))
	}
	if err != nil {
		s.count(outcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create payment intent")
	}
	if pi == nil || pi.ID == "" || pi.ClientSecret == "" {
		s.count(outcomeFailed)
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "failed to create payment intent")
	}

	s.count(outcomeCreated)
	ctx = s.logg.WithPaymentIntentID(ctx, pi.ID)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"item_type":    input.ItemType.String(),
		"item_id":      input.ItemID,
		"amount_cents": amount,
	}), "payments.intent_created")

	s.recordAudit(ctx, input, pi.ID, amount)

	return &Intent{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          amount,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, input CreateIntentInput, intentID string, amount int64) {
	if s.audit == nil {
		return
	}
	record := &models.PaymentIntent{
		StripePaymentIntentID: intentID,
		ItemType:              input.ItemType,
		ItemID:                input.ItemID,
		UserID:                input.UserID,
		Travelers:             input.Travelers,
		AmountCents:           amount,
		Currency:              s.currency,
		Status:                enums.IntentStatusCreated,
	}
	if err := s.audit.Create(ctx, record); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "payments.audit_write_failed")
	}
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncIntent(outcome)
	}
}

func validate(input CreateIntentInput) error {
	details := map[string]string{}
	if input.ItemID == "" {
		details["itemId"] = "is required"
	}
	if input.ItemType == "" {
		details["itemType"] = "is required"
	} else if !input.ItemType.IsValid() {
		details["itemType"] = "must be one of hotel, package, destination"
	}
	if input.Travelers < 1 {
		details["travelers"] = "must be at least 1"
	} else if input.Travelers > pricing.MaxTravelers {
		details["travelers"] = "must be at most " + strconv.Itoa(pricing.MaxTravelers)
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "itemId, itemType and travelers are required").WithDetails(details)
}
