package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// Dispute tracks a formal complaint opened against an order. At most one open
// dispute may exist per order, enforced by a partial unique index.
type Dispute struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	OpenedByID   uuid.UUID           `gorm:"column:opened_by_id;type:uuid;not null"`
	OpenedBy     enums.ActorRole     `gorm:"column:opened_by_role;type:actor_role;not null"`
	Reason       enums.DisputeReason `gorm:"column:reason;type:dispute_reason;not null"`
	Description  string              `gorm:"column:description;not null"`
	EvidenceURLs pq.StringArray      `gorm:"column:evidence_urls;type:text[]"`

	Status     enums.DisputeStatus      `gorm:"column:status;type:dispute_status;not null;default:'open'"`
	Resolution *enums.DisputeResolution `gorm:"column:resolution;type:dispute_resolution"`

	// Split resolutions record how the reserved total was divided.
	BuyerRefundCents     *int64 `gorm:"column:buyer_refund_cents"`
	PublisherPayoutCents *int64 `gorm:"column:publisher_payout_cents"`

	ResolvedByID    *uuid.UUID `gorm:"column:resolved_by_id;type:uuid"`
	ResolutionNotes *string    `gorm:"column:resolution_notes"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
