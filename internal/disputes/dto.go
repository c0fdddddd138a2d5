package disputes

import (
	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// OpenInput captures a party's formal complaint against an order.
type OpenInput struct {
	OrderID      uuid.UUID
	Actor        orders.Actor
	Reason       enums.DisputeReason
	Description  string
	EvidenceURLs []string
}

// ResolveInput carries the admin ruling. BuyerRefundCents is read only for
// split resolutions; the publisher share is derived from the order total.
type ResolveInput struct {
	DisputeID        uuid.UUID
	Actor            orders.Actor
	Resolution       enums.DisputeResolution
	BuyerRefundCents int64
	Notes            *string
}

// DisputeList wraps a page of disputes plus the next page cursor.
type DisputeList struct {
	Disputes   []models.Dispute `json:"disputes"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
