package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// Order represents a single backlink placement bought from a publisher.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number"`
	BuyerID     uuid.UUID `gorm:"column:buyer_id;type:uuid;not null"`
	PublisherID uuid.UUID `gorm:"column:publisher_id;type:uuid;not null"`
	WebsiteID   uuid.UUID `gorm:"column:website_id;type:uuid;not null"`

	OrderType     enums.OrderType     `gorm:"column:order_type;type:order_type;not null;default:'guest_post'"`
	ContentSource enums.ContentSource `gorm:"column:content_source;type:content_source;not null;default:'publisher'"`

	AnchorText string  `gorm:"column:anchor_text;not null"`
	TargetURL  string  `gorm:"column:target_url;not null"`
	Brief      *string `gorm:"column:brief"`

	// ArticleURL is set when the publisher reports the placement live.
	ArticleURL   *string `gorm:"column:article_url"`
	ArticleTitle *string `gorm:"column:article_title"`
	ArticleBody  *string `gorm:"column:article_body"`

	Status              enums.OrderStatus  `gorm:"column:status;type:order_status;not null;default:'pending'"`
	StatusBeforeDispute *enums.OrderStatus `gorm:"column:status_before_dispute;type:order_status"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'reserved'"`

	// BasePriceCents is the publisher's listed price; TotalCents is what the
	// buyer paid, base plus the platform fee.
	BasePriceCents   int `gorm:"column:base_price_cents;not null"`
	PlatformFeeCents int `gorm:"column:platform_fee_cents;not null"`
	TotalCents       int `gorm:"column:total_cents;not null"`

	ContributorID          *uuid.UUID `gorm:"column:contributor_id;type:uuid"`
	ContributorAmountCents int        `gorm:"column:contributor_amount_cents;not null;default:0"`

	RevisionCount  int     `gorm:"column:revision_count;not null;default:0"`
	RevisionReason *string `gorm:"column:revision_reason"`

	Rating     *int    `gorm:"column:rating"`
	ReviewText *string `gorm:"column:review_text"`

	PublishedAt            *time.Time `gorm:"column:published_at"`
	ConfirmationDeadlineAt *time.Time `gorm:"column:confirmation_deadline_at"`
	DisputeProtectionUntil *time.Time `gorm:"column:dispute_protection_until"`
	CompletedAt            *time.Time `gorm:"column:completed_at"`
	CancelledAt            *time.Time `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
