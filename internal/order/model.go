package order

import "time"

type Status string

const (
	StatusPreparing  Status = "preparing"
	StatusOnDelivery Status = "on_delivery"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses. Any
// valid status may replace any other; there is deliberately no transition
// state machine.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPreparing, StatusOnDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCash || m == PaymentBankTransfer
}

// Item is an immutable snapshot of a product line taken at order time.
// Later product edits never touch it.
type Item struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"orderId"`
	ProductID           string    `json:"productId"`
	ProductName         string    `json:"productName"`
	ProductPriceInCents int       `json:"productPriceInCents"`
	Quantity            int       `json:"quantity"`
	SubtotalInCents     int       `json:"subtotalInCents"`
	CreatedAt           time.Time `json:"createdAt"`
}

type Order struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"userId"`
	Status             Status        `json:"status"`
	TotalAmountInCents int           `json:"totalAmountInCents"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`

	RegionID              *string `json:"regionId,omitempty"`
	CampingLocationID     *string `json:"campingLocationId,omitempty"`
	CustomAddress         string  `json:"customAddress,omitempty"`
	DeliverySlotID        *string `json:"deliverySlotId,omitempty"`
	EstimatedDeliveryTime string  `json:"estimatedDeliveryTime,omitempty"`

	Items     []Item    `json:"items,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TopProduct is one row of the dashboard's sales leaderboard.
type TopProduct struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	TotalSold   int    `json:"totalSold"`
	Revenue     int    `json:"revenue"`
}

// Stats is the admin dashboard aggregate, recomputed on every request.
type Stats struct {
	TotalOrders  int          `json:"totalOrders"`
	TotalRevenue int          `json:"totalRevenue"`
	TodayOrders  int          `json:"todayOrders"`
	TodayRevenue int          `json:"todayRevenue"`
	WeekOrders   int          `json:"weekOrders"`
	WeekRevenue  int          `json:"weekRevenue"`
	TopProducts  []TopProduct `json:"topProducts"`
}
