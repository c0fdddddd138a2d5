package disputes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

// Repository defines persistence operations for the disputes table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dispute *models.Dispute) (*models.Dispute, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	// FindOpenByOrder returns nil when the order has no open dispute.
	FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error)
	// MarkResolved closes the dispute only while it is still open.
	MarkResolved(ctx context.Context, disputeID uuid.UUID, fields map[string]any) (bool, error)
	List(ctx context.Context, status *enums.DisputeStatus, params pagination.Params) (*DisputeList, error)
}
