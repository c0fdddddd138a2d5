package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateDispute OutboxAggregateType = "dispute"
	AggregateWallet  OutboxAggregateType = "wallet"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateDispute,
	AggregateWallet,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderPlaced       OutboxEventType = "order_placed"
	EventOrderAccepted     OutboxEventType = "order_accepted"
	EventContentSubmitted  OutboxEventType = "content_submitted"
	EventRevisionRequested OutboxEventType = "revision_requested"
	EventContentApproved   OutboxEventType = "content_approved"
	EventOrderPublished    OutboxEventType = "order_published"
	EventOrderCompleted    OutboxEventType = "order_completed"
	EventOrderCancelled    OutboxEventType = "order_cancelled"
	EventOrderDisputed     OutboxEventType = "order_disputed"
	EventDisputeResolved   OutboxEventType = "dispute_resolved"
	EventOrderReviewed     OutboxEventType = "order_reviewed"
	EventFundsReserved     OutboxEventType = "funds_reserved"
	EventFundsSettled      OutboxEventType = "funds_settled"
	EventFundsReleased     OutboxEventType = "funds_released"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderAccepted,
	EventContentSubmitted,
	EventRevisionRequested,
	EventContentApproved,
	EventOrderPublished,
	EventOrderCompleted,
	EventOrderCancelled,
	EventOrderDisputed,
	EventDisputeResolved,
	EventOrderReviewed,
	EventFundsReserved,
	EventFundsSettled,
	EventFundsReleased,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
