package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  publisher_id TEXT NOT NULL,
  website_id TEXT NOT NULL,
  order_type TEXT NOT NULL,
  content_source TEXT NOT NULL,
  anchor_text TEXT NOT NULL,
  target_url TEXT NOT NULL,
  brief TEXT,
  article_url TEXT,
  article_title TEXT,
  article_body TEXT,
  status TEXT NOT NULL,
  status_before_dispute TEXT,
  payment_status TEXT NOT NULL,
  base_price_cents INTEGER NOT NULL,
  platform_fee_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  contributor_id TEXT,
  contributor_amount_cents INTEGER NOT NULL DEFAULT 0,
  revision_count INTEGER NOT NULL DEFAULT 0,
  revision_reason TEXT,
  rating INTEGER,
  review_text TEXT,
  published_at DATETIME,
  confirmation_deadline_at DATETIME,
  dispute_protection_until DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func seedOrderRow(t *testing.T, db *gorm.DB, buyerID, publisherID uuid.UUID, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "LH-" + uuid.NewString()[:8],
		BuyerID:          buyerID,
		PublisherID:      publisherID,
		WebsiteID:        uuid.New(),
		OrderType:        enums.OrderTypeGuestPost,
		ContentSource:    enums.ContentSourcePublisher,
		AnchorText:       "anchor",
		TargetURL:        "https://buyer.example.com/page",
		Status:           status,
		PaymentStatus:    enums.PaymentStatusReserved,
		BasePriceCents:   10000,
		PlatformFeeCents: 2500,
		TotalCents:       12500,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryUpdateStatus_conditional(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrderRow(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, time.Now().UTC())

	updated, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusAccepted, nil)
	require.NoError(t, err)
	assert.True(t, updated)

	// the stored status moved on, so the same expected-current no longer matches
	updated, err = repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusCancelled, nil)
	require.NoError(t, err)
	assert.False(t, updated)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAccepted, reloaded.Status)
}

func TestRepositoryUpdateStatus_extraFields(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrderRow(t, db, uuid.New(), uuid.New(), enums.OrderStatusApproved, time.Now().UTC())
	deadline := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)

	updated, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusApproved, enums.OrderStatusPublished, map[string]any{
		"article_url":              "https://publisher.example.com/post",
		"confirmation_deadline_at": deadline,
	})
	require.NoError(t, err)
	require.True(t, updated)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ArticleURL)
	assert.Equal(t, "https://publisher.example.com/post", *reloaded.ArticleURL)
	require.NotNil(t, reloaded.ConfirmationDeadlineAt)
	assert.WithinDuration(t, deadline, *reloaded.ConfirmationDeadlineAt, time.Second)
}

func TestRepositoryFindPublishedPastDeadline(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	overdue := seedOrderRow(t, db, uuid.New(), uuid.New(), enums.OrderStatusPublished, now.Add(-96*time.Hour))
	past := now.Add(-time.Hour)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", overdue.ID).
		Update("confirmation_deadline_at", past).Error)

	pending := seedOrderRow(t, db, uuid.New(), uuid.New(), enums.OrderStatusPublished, now)
	future := now.Add(48 * time.Hour)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", pending.ID).
		Update("confirmation_deadline_at", future).Error)

	rows, err := repo.FindPublishedPastDeadline(ctx, now, 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, overdue.ID, rows[0].ID)
}

func TestRepositorySetReview_onceOnCompleted(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrderRow(t, db, uuid.New(), uuid.New(), enums.OrderStatusCompleted, time.Now().UTC())
	text := "smooth process"

	saved, err := repo.SetReview(ctx, order.ID, 5, &text)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = repo.SetReview(ctx, order.ID, 1, nil)
	require.NoError(t, err)
	assert.False(t, saved)

	notCompleted := seedOrderRow(t, db, uuid.New(), uuid.New(), enums.OrderStatusPublished, time.Now().UTC())
	saved, err = repo.SetReview(ctx, notCompleted.ID, 4, nil)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestRepositoryListBuyerOrders_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	publisherID := uuid.New()
	now := time.Now().UTC()

	older := seedOrderRow(t, db, buyerID, publisherID, enums.OrderStatusCompleted, now.Add(-time.Hour))
	newer := seedOrderRow(t, db, buyerID, publisherID, enums.OrderStatusPending, now)
	seedOrderRow(t, db, uuid.New(), publisherID, enums.OrderStatusPending, now)

	list, err := repo.ListBuyerOrders(ctx, buyerID, pagination.Params{Limit: 1}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, newer.ID, list.Orders[0].ID)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListBuyerOrders(ctx, buyerID, pagination.Params{Limit: 1, Cursor: list.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, older.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListPublisherOrders_statusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	publisherID := uuid.New()
	now := time.Now().UTC()

	seedOrderRow(t, db, uuid.New(), publisherID, enums.OrderStatusPending, now.Add(-time.Minute))
	completed := seedOrderRow(t, db, uuid.New(), publisherID, enums.OrderStatusCompleted, now)

	list, err := repo.ListPublisherOrders(ctx, publisherID, pagination.Params{Limit: 10}, OrderFilters{
		Status: ptr(enums.OrderStatusCompleted),
	})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, completed.ID, list.Orders[0].ID)
}

func ptr[T any](v T) *T {
	return &v
}
