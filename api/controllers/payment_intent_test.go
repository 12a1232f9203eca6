package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/wanderlust-backend/internal/payments"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

type stubIntentService struct {
	intent *payments.Intent
	err    error
	calls  int
	last   payments.CreateIntentInput
}

func (s *stubIntentService) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error) {
	s.calls++
	s.last = input
	return s.intent, s.err
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorBody {
	t.Helper()
	var body types.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestCreatePaymentIntentSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubIntentService{intent: &payments.Intent{ClientSecret: "pi_1_secret_x", PaymentIntentID: "pi_1", Amount: 259800}}
	handler := CreatePaymentIntent(svc, logger.Nop())

	rec := postJSON(handler, "/api/payment-intent", `{"itemId":"santorini","itemType":"destination","travelers":2,"dates":"Jun 1 - Jun 8","userId":"user_1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var got payments.Intent
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ClientSecret != "pi_1_secret_x" || got.PaymentIntentID != "pi_1" || got.Amount != 259800 {
		t.Fatalf("unexpected intent %+v", got)
	}
	if svc.last.ItemType != enums.ItemTypeDestination || svc.last.Travelers != 2 || svc.last.UserID != "user_1" {
		t.Fatalf("unexpected service input %+v", svc.last)
	}
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing item id":   `{"itemType":"hotel","travelers":1}`,
		"missing item type": `{"itemId":"h1","travelers":1}`,
		"invalid item type": `{"itemId":"h1","itemType":"cruise","travelers":1}`,
		"missing travelers": `{"itemId":"h1","itemType":"hotel"}`,
		"zero travelers":    `{"itemId":"h1","itemType":"hotel","travelers":0}`,
		"unknown field":     `{"itemId":"h1","itemType":"hotel","travelers":1,"price":1}`,
		"malformed":         `{"itemId":`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := &stubIntentService{}
			rec := postJSON(CreatePaymentIntent(svc, logger.Nop()), "/api/payment-intent", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
			}
			if decodeError(t, rec).Error == "" {
				t.Fatal("expected error message")
			}
			if svc.calls != 0 {
				t.Fatal("processor path must not run for invalid input")
			}
		})
	}
}

func TestCreatePaymentIntentProcessorFailure(t *testing.T) {
	t.Parallel()

	svc := &stubIntentService{err: pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("card_error: api key revoked"), "failed to create payment intent")}
	rec := postJSON(CreatePaymentIntent(svc, logger.Nop()), "/api/payment-intent", `{"itemId":"h1","itemType":"hotel","travelers":1}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if strings.Contains(body.Error, "revoked") {
		t.Fatalf("processor detail leaked: %q", body.Error)
	}
}

type stubQuoteService struct {
	gotTravelers int
}

func (s *stubQuoteService) Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) pricing.Quote {
	s.gotTravelers = travelers
	sub := 129900 * int64(travelers)
	return pricing.Quote{
		ItemType:          itemType,
		ItemID:            itemID,
		UnitPriceCents:    129900,
		Travelers:         travelers,
		SubtotalCents:     sub,
		FeesCents:         pricing.DefaultServiceFeeCents,
		DisplayTotalCents: sub + pricing.DefaultServiceFeeCents,
		Source:            pricing.SourceStatic,
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	svc := &stubQuoteService{}
	handler := Quote(svc, logger.Nop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quote?itemType=destination&itemId=santorini&travelers=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var got pricing.Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SubtotalCents != 259800 || got.DisplayTotalCents != 274800 {
		t.Fatalf("unexpected quote %+v", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quote?itemType=destination&itemId=santorini", nil))
	if rec.Code != http.StatusOK || svc.gotTravelers != 1 {
		t.Fatalf("expected default of one traveler, got status %d travelers %d", rec.Code, svc.gotTravelers)
	}
}

func TestQuoteValidation(t *testing.T) {
	t.Parallel()

	for _, target := range []string{
		"/api/quote?itemId=santorini",
		"/api/quote?itemType=boat&itemId=santorini",
		"/api/quote?itemType=hotel",
		"/api/quote?itemType=hotel&itemId=h1&travelers=zero",
		"/api/quote?itemType=hotel&itemId=h1&travelers=0",
	} {
		rec := httptest.NewRecorder()
		Quote(&stubQuoteService{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}
