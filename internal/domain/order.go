package domain

import "time"

// OrderStatus tracks fulfillment progress of an order.
type OrderStatus string

// Order statuses. New orders always start as pending.
const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// IsValid reports whether the status is one of the known values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks settlement state of an order.
// It is set once at checkout and not mutated by any operation in this core;
// the field exists for future extension.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderLine is an immutable snapshot of one cart line at checkout time.
// Title and unit price are denormalized copies - later catalog edits must
// never change what the shopper saw when they bought.
type OrderLine struct {
	BookID         string `json:"book_id"`
	BookTitle      string `json:"book_title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Subtotal returns quantity x unit price for this line.
func (l OrderLine) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

// Order is the permanent receipt of a purchase, created exactly once at
// checkout. Status is the only field that mutates after creation; each
// status change updates UpdatedAt. Owner fields are snapshots, not live
// references - an order stays readable even if the user record changes.
type Order struct {
	Record
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
	UserEmail     string        `json:"user_email"`
	Lines         []OrderLine   `json:"lines"`
	TotalCents    int64         `json:"total_cents"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// ComputeTotal returns the sum of line subtotals. Called once at creation;
// the stored TotalCents is never recomputed afterwards.
func (o *Order) ComputeTotal() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.Subtotal()
	}
	return total
}

// SetStatus applies a new status and bumps UpdatedAt.
//
// No transition graph is enforced: any status may follow any other,
// including moves like delivered back to pending. This mirrors the
// permissive admin tooling the store started with; callers wanting a
// stricter workflow apply a StatusPolicy before calling.
func (o *Order) SetStatus(status OrderStatus) {
	o.Status = status
	o.UpdatedAt = time.Now()
}

// StatusPolicy decides whether a status transition is allowed.
type StatusPolicy interface {
	Allowed(from, to OrderStatus) bool
}

// AllowAllTransitions is the default policy: every transition is permitted.
type AllowAllTransitions struct{}

// Allowed implements StatusPolicy.
func (AllowAllTransitions) Allowed(OrderStatus, OrderStatus) bool { return true }
