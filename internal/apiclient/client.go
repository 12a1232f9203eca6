// Package apiclient talks to the booking API over HTTP. It satisfies the
// wizard's collaborator interfaces so the CLI runs the same flow as the
// browser.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/wanderlust-backend/internal/bookings"
	"github.com/angelmondragon/wanderlust-backend/internal/payments"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	responseBodyReadLimit int64 = 1 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// CreateIntent calls POST /api/payment-intent.
func (c *Client) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error) {
	body := types.PaymentIntentRequest{
		ItemID:    input.ItemID,
		ItemType:  input.ItemType.String(),
		Travelers: input.Travelers,
		Dates:     input.Dates,
		UserID:    input.UserID,
	}
	var out payments.Intent
	if err := c.do(ctx, http.MethodPost, "/api/payment-intent", nil, body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordBooking calls POST /api/bookings. The intent id doubles as the
// idempotency key so a retried call does not insert twice.
func (c *Client) RecordBooking(ctx context.Context, input bookings.RecordInput) (string, error) {
	body := types.RecordBookingRequest{
		UserID:          input.UserID,
		ItemID:          input.ItemID,
		ItemType:        input.ItemType.String(),
		Travelers:       input.Travelers,
		Dates:           input.Dates,
		Amount:          input.AmountCents,
		PaymentIntentID: input.PaymentIntentID,
	}
	var headers http.Header
	if input.PaymentIntentID != "" {
		headers = http.Header{HeaderIdempotencyKey: []string{"booking-" + input.PaymentIntentID}}
	}
	var out types.RecordBookingResponse
	if err := c.do(ctx, http.MethodPost, "/api/bookings", nil, body, headers, &out); err != nil {
		return "", err
	}
	return out.BookingID, nil
}

// Quote calls GET /api/quote.
func (c *Client) Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) (pricing.Quote, error) {
	q := url.Values{}
	q.Set("itemType", itemType.String())
	q.Set("itemId", itemID)
	q.Set("travelers", strconv.Itoa(travelers))
	var out pricing.Quote
	err := c.do(ctx, http.MethodGet, "/api/quote", q, nil, nil, &out)
	return out, err
}

func (c *Client) GetBooking(ctx context.Context, bookingID string) (*bookings.Booking, error) {
	var out bookings.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(bookingID), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBookings(ctx context.Context, userID, cursor string, limit int) (*bookings.BookingList, error) {
	q := url.Values{}
	q.Set("userId", userID)
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out bookings.BookingList
	if err := c.do(ctx, http.MethodGet, "/api/bookings", q, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadReceipt streams the PDF receipt for bookingID into w.
func (c *Client) DownloadReceipt(ctx context.Context, bookingID string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(bookingID)+"/receipt", nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "download receipt")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write receipt")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		payload = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// decodeError turns an {error, code} body back into a typed error so callers
// can branch on the code the server chose.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	var body types.ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("api returned status %d", resp.StatusCode))
	}
	code := pkgerrors.Code(body.Code)
	if code == "" {
		code = pkgerrors.CodeDependency
	}
	out := pkgerrors.New(code, body.Error)
	if body.Details != nil {
		out = out.WithDetails(body.Details)
	}
	return out
}
