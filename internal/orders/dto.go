package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// Actor identifies the authenticated party invoking an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// PlaceOrderInput captures the buyer's checkout request. The platform fee and
// charged total are computed from BasePriceCents, never supplied by the caller.
type PlaceOrderInput struct {
	Actor                  Actor
	PublisherID            uuid.UUID
	WebsiteID              uuid.UUID
	OrderType              enums.OrderType
	ContentSource          enums.ContentSource
	AnchorText             string
	TargetURL              string
	Brief                  *string
	BasePriceCents         int64
	ContributorID          *uuid.UUID
	ContributorAmountCents int64
}

// PublishPayload carries the fields required for the published transition.
type PublishPayload struct {
	ArticleURL string
}

// RevisionPayload carries the buyer's reason for sending content back.
type RevisionPayload struct {
	Reason string
}

// ContentPayload carries the draft submitted for buyer review.
type ContentPayload struct {
	Title string
	Body  string
}

// TransitionInput asks the state machine to move an order to Target. Exactly
// the payload matching the target transition must be set; the rest stay nil.
type TransitionInput struct {
	OrderID      uuid.UUID
	Actor        Actor
	Target       enums.OrderStatus
	Publish      *PublishPayload
	Revision     *RevisionPayload
	Content      *ContentPayload
	CancelReason *string
}

// ReviewInput records the buyer's rating on a completed order.
type ReviewInput struct {
	OrderID    uuid.UUID
	Actor      Actor
	Rating     int
	ReviewText *string
}

// OrderFilters describe the inputs supported by the order list endpoints.
type OrderFilters struct {
	Status    *enums.OrderStatus
	OrderType *enums.OrderType
	DateFrom  *time.Time
	DateTo    *time.Time
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
