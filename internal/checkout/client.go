package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/j1vetr/EscapeTable/internal/auth"
	"github.com/j1vetr/EscapeTable/internal/cart"
	"github.com/j1vetr/EscapeTable/internal/order"
	"github.com/j1vetr/EscapeTable/internal/timeslot"
)

// ServerError carries a rejection from the API verbatim so the user sees
// exactly what the server said.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// Client talks to the storefront API with the caller's session cookie.
type Client struct {
	baseURL string
	session string
	http    *http.Client
}

func NewClient(baseURL, sessionID string) *Client {
	return &Client{
		baseURL: baseURL,
		session: sessionID,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SubmitOrder posts the order and returns the created order. The cart is
// not touched here; Service.PlaceOrder owns the clear-on-success step.
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (order.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return order.Order{}, fmt.Errorf("marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return order.Order{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.AddCookie(&http.Cookie{Name: auth.CookieName, Value: c.session})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return order.Order{}, fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return order.Order{}, &ServerError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	var created order.Order
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return order.Order{}, fmt.Errorf("decode order: %w", err)
	}
	return created, nil
}

// Submitter abstracts the API call so Service can be tested without a
// server.
type Submitter interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (order.Order, error)
}

// Service is the checkout flow: build the payload, submit, and clear the
// cart only on confirmed acceptance. On rejection the cart is untouched so
// the user can retry.
type Service struct {
	Cart      *cart.Store
	Submitter Submitter
}

func (s *Service) PlaceOrder(ctx context.Context, locationID string, slot timeslot.Slot, payment order.PaymentMethod, deliveryNote string) (order.Order, error) {
	req, err := BuildOrderRequest(s.Cart, locationID, slot, payment, deliveryNote)
	if err != nil {
		return order.Order{}, err
	}

	created, err := s.Submitter.SubmitOrder(ctx, req)
	if err != nil {
		return order.Order{}, err
	}

	s.Cart.Clear()
	return created, nil
}
