package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// OrderPlacedEvent signals a new order with funds moved into escrow.
type OrderPlacedEvent struct {
	OrderID          uuid.UUID         `json:"order_id"`
	BuyerID          uuid.UUID         `json:"buyer_id"`
	PublisherID      uuid.UUID         `json:"publisher_id"`
	WebsiteID        uuid.UUID         `json:"website_id"`
	OrderType        enums.OrderType   `json:"order_type"`
	TotalCents       int               `json:"total_cents"`
	PlatformFeeCents int               `json:"platform_fee_cents"`
	Status           enums.OrderStatus `json:"status"`
}

// OrderStatusChangedEvent is the shared payload for lifecycle transitions.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	BuyerID     uuid.UUID         `json:"buyer_id"`
	PublisherID uuid.UUID         `json:"publisher_id"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
	ActorRole   enums.ActorRole   `json:"actor_role"`
	Reason      string            `json:"reason,omitempty"`
}

// OrderPublishedEvent carries the live placement details.
type OrderPublishedEvent struct {
	OrderID                uuid.UUID `json:"order_id"`
	BuyerID                uuid.UUID `json:"buyer_id"`
	PublisherID            uuid.UUID `json:"publisher_id"`
	ArticleURL             string    `json:"article_url"`
	PublishedAt            time.Time `json:"published_at"`
	ConfirmationDeadlineAt time.Time `json:"confirmation_deadline_at"`
}

// OrderCompletedEvent is emitted when escrowed funds settle to the publisher.
type OrderCompletedEvent struct {
	OrderID                uuid.UUID `json:"order_id"`
	BuyerID                uuid.UUID `json:"buyer_id"`
	PublisherID            uuid.UUID `json:"publisher_id"`
	PublisherEarningsCents int64     `json:"publisher_earnings_cents"`
	PlatformFeeCents       int64     `json:"platform_fee_cents"`
	AutoCompleted          bool      `json:"auto_completed"`
	CompletedAt            time.Time `json:"completed_at"`
}

// OrderCancelledEvent is emitted when the escrow reservation is released.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	PublisherID uuid.UUID       `json:"publisher_id"`
	RefundCents int64           `json:"refund_cents"`
	CancelledBy enums.ActorRole `json:"cancelled_by"`
	Reason      string          `json:"reason,omitempty"`
	CancelledAt time.Time       `json:"cancelled_at"`
}

// RevisionRequestedEvent carries the buyer's revision notes.
type RevisionRequestedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	PublisherID   uuid.UUID `json:"publisher_id"`
	Reason        string    `json:"reason"`
	RevisionCount int       `json:"revision_count"`
}

// OrderDisputedEvent is emitted when an order enters the disputed state.
type OrderDisputedEvent struct {
	OrderID      uuid.UUID           `json:"order_id"`
	DisputeID    uuid.UUID           `json:"dispute_id"`
	OpenedByRole enums.ActorRole     `json:"opened_by_role"`
	Reason       enums.DisputeReason `json:"reason"`
	PriorStatus  enums.OrderStatus   `json:"prior_status"`
}

// DisputeResolvedEvent reports the admin ruling and the resulting money split.
type DisputeResolvedEvent struct {
	OrderID              uuid.UUID               `json:"order_id"`
	DisputeID            uuid.UUID               `json:"dispute_id"`
	Resolution           enums.DisputeResolution `json:"resolution"`
	BuyerRefundCents     int64                   `json:"buyer_refund_cents"`
	PublisherPayoutCents int64                   `json:"publisher_payout_cents"`
	ResolvedAt           time.Time               `json:"resolved_at"`
}

// OrderReviewedEvent is emitted when a buyer leaves a rating on a completed order.
type OrderReviewedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	PublisherID uuid.UUID `json:"publisher_id"`
	WebsiteID   uuid.UUID `json:"website_id"`
	Rating      int       `json:"rating"`
	ReviewText  string    `json:"review_text,omitempty"`
}

// WalletMovementEvent covers reserve, settle, and release notifications.
type WalletMovementEvent struct {
	OrderID     uuid.UUID             `json:"order_id"`
	UserID      uuid.UUID             `json:"user_id"`
	Role        enums.WalletRole      `json:"role"`
	Type        enums.TransactionType `json:"type"`
	AmountCents int64                 `json:"amount_cents"`
}
