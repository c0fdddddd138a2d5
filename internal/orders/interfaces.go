package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindPublishedPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	// UpdateStatus applies the status change and extra column updates only if
	// the stored status still equals expectedCurrent. Returns false when the
	// row was changed by a concurrent writer.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, expectedCurrent, newStatus enums.OrderStatus, fields map[string]any) (bool, error)
	// SetReview records the buyer's rating once, only on completed orders.
	SetReview(ctx context.Context, orderID uuid.UUID, rating int, reviewText *string) (bool, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListPublisherOrders(ctx context.Context, publisherID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
}
