package enums

import "fmt"

// OrderStatus tracks the lifecycle of a backlink order.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusAccepted         OrderStatus = "accepted"
	OrderStatusWriting          OrderStatus = "writing"
	OrderStatusContentSubmitted OrderStatus = "content_submitted"
	OrderStatusRevisionNeeded   OrderStatus = "revision_needed"
	OrderStatusApproved         OrderStatus = "approved"
	OrderStatusPublished        OrderStatus = "published"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusCancelled        OrderStatus = "cancelled"
	OrderStatusDisputed         OrderStatus = "disputed"
	OrderStatusRefunded         OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusWriting,
	OrderStatusContentSubmitted,
	OrderStatusRevisionNeeded,
	OrderStatusApproved,
	OrderStatusPublished,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusDisputed,
	OrderStatusRefunded,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
