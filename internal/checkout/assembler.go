// Package checkout assembles the order request from the cart and the
// user's delivery choices, submits it, and keeps the chosen time slot
// valid while the clock ticks.
package checkout

import (
	"errors"

	"github.com/j1vetr/EscapeTable/internal/cart"
	"github.com/j1vetr/EscapeTable/internal/order"
	"github.com/j1vetr/EscapeTable/internal/timeslot"
)

// Client-side precondition failures. These block submission before any
// network call is made; the messages are shown to the user as-is.
var (
	ErrEmptyCart  = errors.New("Sepetiniz boş, sipariş vermek için ürün ekleyin")
	ErrNoLocation = errors.New("Teslimat yeri seçin")
	ErrNoSlot     = errors.New("Teslimat saati seçin")
	ErrNoPayment  = errors.New("Ödeme yöntemi seçin")
)

// OrderItemRequest is a line of the order payload: a snapshot of the cart
// entry's product taken at submission time, never re-fetched.
type OrderItemRequest struct {
	ProductID           string `json:"productId"`
	ProductName         string `json:"productName"`
	ProductPriceInCents int    `json:"productPriceInCents"`
	Quantity            int    `json:"quantity"`
	SubtotalInCents     int    `json:"subtotalInCents"`
}

// OrderRequest is the POST /api/orders body.
type OrderRequest struct {
	Items                 []OrderItemRequest  `json:"items"`
	PaymentMethod         order.PaymentMethod `json:"paymentMethod"`
	RegionID              string              `json:"regionId,omitempty"`
	CampingLocationID     string              `json:"campingLocationId"`
	CustomAddress         string              `json:"customAddress,omitempty"`
	TotalAmountInCents    int                 `json:"totalAmountInCents"`
	EstimatedDeliveryTime string              `json:"estimatedDeliveryTime"`
}

// BuildOrderRequest validates the checkout preconditions and projects the
// cart into an order payload. The estimated delivery time string is
// computed here, once, and stored verbatim on the order.
func BuildOrderRequest(c *cart.Store, locationID string, slot timeslot.Slot, payment order.PaymentMethod, deliveryNote string) (OrderRequest, error) {
	items := c.Items()
	if len(items) == 0 {
		return OrderRequest{}, ErrEmptyCart
	}
	if locationID == "" {
		return OrderRequest{}, ErrNoLocation
	}
	if slot.ID == "" {
		return OrderRequest{}, ErrNoSlot
	}
	if !order.ValidPaymentMethod(payment) {
		return OrderRequest{}, ErrNoPayment
	}

	req := OrderRequest{
		PaymentMethod:         payment,
		CampingLocationID:     locationID,
		CustomAddress:         deliveryNote,
		TotalAmountInCents:    c.TotalAmount(),
		EstimatedDeliveryTime: EstimatedDeliveryTime(slot),
	}
	for _, it := range items {
		req.Items = append(req.Items, OrderItemRequest{
			ProductID:           it.Product.ID,
			ProductName:         it.Product.Name,
			ProductPriceInCents: it.Product.PriceInCents,
			Quantity:            it.Quantity,
			SubtotalInCents:     it.Subtotal(),
		})
	}
	return req, nil
}

// EstimatedDeliveryTime renders the slot as "GG.AA.YYYY HH:00 - HH:00" in
// the service timezone.
func EstimatedDeliveryTime(slot timeslot.Slot) string {
	return slot.Date.In(timeslot.ServiceLocation()).Format("02.01.2006") + " " + slot.Label
}
