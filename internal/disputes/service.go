package disputes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/internal/pricing"
	"github.com/linkhaus-dev/linkhaus-backend/internal/wallet"
	dbpkg "github.com/linkhaus-dev/linkhaus-backend/pkg/db"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	pkgerrors "github.com/linkhaus-dev/linkhaus-backend/pkg/errors"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/outbox"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/outbox/payloads"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

const (
	minDescriptionLen = 20
	staleRetryLimit   = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the dispute sub-state-machine: opening a dispute parks the
// order in the disputed status, and the admin resolution settles or refunds
// the escrowed funds and moves the order to its terminal status, all in one
// transaction.
type Service interface {
	Open(ctx context.Context, input OpenInput) (*models.Dispute, error)
	Resolve(ctx context.Context, input ResolveInput) (*models.Dispute, error)
	GetForOrder(ctx context.Context, orderID uuid.UUID, actor orders.Actor) (*models.Dispute, error)
	List(ctx context.Context, actor orders.Actor, status *enums.DisputeStatus, params pagination.Params) (*DisputeList, error)
}

type service struct {
	repo       Repository
	ordersRepo orders.Repository
	tx         txRunner
	wallet     wallet.Service
	outbox     outboxPublisher
	now        func() time.Time
}

// NewService builds the dispute service with the required dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, walletSvc wallet.Service, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("disputes repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:       repo,
		ordersRepo: ordersRepo,
		tx:         tx,
		wallet:     walletSvc,
		outbox:     outboxSvc,
		now:        time.Now,
	}, nil
}

func (s *service) Open(ctx context.Context, input OpenInput) (*models.Dispute, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dispute reason")
	}
	if len(strings.TrimSpace(input.Description)) < minDescriptionLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("description must be at least %d characters", minDescriptionLen))
	}

	// A stale order update means we raced another transition (typically the
	// auto-complete sweep). Reload and re-run so the caller gets the accurate
	// outcome for the order's new status instead of a bare conflict.
	var lastErr error
	for attempt := 0; attempt < staleRetryLimit; attempt++ {
		created, err := s.openOnce(ctx, input)
		if err == nil {
			return created, nil
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeStaleOrderState) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) openOnce(ctx context.Context, input OpenInput) (*models.Dispute, error) {
	var created *models.Dispute
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := authorizeOpen(order, input.Actor, s.now()); err != nil {
			return err
		}

		existing, err := repo.FindOpenByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open dispute")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has an open dispute")
		}

		dispute := &models.Dispute{
			ID:           uuid.New(),
			OrderID:      order.ID,
			OpenedByID:   input.Actor.UserID,
			OpenedBy:     input.Actor.Role,
			Reason:       input.Reason,
			Description:  strings.TrimSpace(input.Description),
			EvidenceURLs: pq.StringArray(input.EvidenceURLs),
			Status:       enums.DisputeStatusOpen,
		}
		if _, err := repo.Create(ctx, dispute); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_disputes_one_open_per_order") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already has an open dispute")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dispute")
		}

		priorStatus := order.Status
		updated, err := ordersRepo.UpdateStatus(ctx, order.ID, priorStatus, enums.OrderStatusDisputed, map[string]any{
			"status_before_dispute": priorStatus,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order disputed")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStaleOrderState, "order changed concurrently, refresh and retry")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDisputed,
			AggregateType: enums.AggregateDispute,
			AggregateID:   dispute.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.Actor.UserID, Role: string(input.Actor.Role)},
			Data: payloads.OrderDisputedEvent{
				OrderID:      order.ID,
				DisputeID:    dispute.ID,
				OpenedByRole: input.Actor.Role,
				Reason:       input.Reason,
				PriorStatus:  priorStatus,
			},
		}); err != nil {
			return err
		}

		created = dispute
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// authorizeOpen enforces who may dispute which order states. Buyers protest a
// live placement while their protection window is open; publishers protest a
// revision loop they consider abusive. Completed orders have already settled,
// so money can no longer be clawed back through a dispute.
func authorizeOpen(order *models.Order, actor orders.Actor, now time.Time) error {
	switch actor.Role {
	case enums.ActorRoleBuyer:
		if order.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeValidation, "completed orders have settled and can no longer be disputed")
		}
		if order.Status != enums.OrderStatusPublished {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "buyers may only dispute published orders")
		}
		if order.DisputeProtectionUntil == nil || now.After(*order.DisputeProtectionUntil) {
			return pkgerrors.New(pkgerrors.CodeValidation, "dispute protection window has expired")
		}
	case enums.ActorRolePublisher:
		if order.PublisherID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status != enums.OrderStatusRevisionNeeded {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "publishers may only dispute orders in revision")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not open disputes")
	}
	return nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*models.Dispute, error) {
	if input.DisputeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute id required")
	}
	if input.Actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins resolve disputes")
	}
	if !input.Resolution.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid resolution")
	}

	var lastErr error
	for attempt := 0; attempt < staleRetryLimit; attempt++ {
		resolved, err := s.resolveOnce(ctx, input)
		if err == nil {
			return resolved, nil
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeStaleOrderState) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) resolveOnce(ctx context.Context, input ResolveInput) (*models.Dispute, error) {
	var resolved *models.Dispute
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		dispute, err := repo.FindByID(ctx, input.DisputeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "dispute not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispute")
		}
		if dispute.Status != enums.DisputeStatusOpen {
			return pkgerrors.New(pkgerrors.CodeConflict, "dispute already resolved")
		}

		order, err := ordersRepo.FindByID(ctx, dispute.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusDisputed {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "order is not in disputed state")
		}

		total := int64(order.TotalCents)
		outcome, err := resolutionOutcome(order, input)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		fields := map[string]any{
			"resolution":             input.Resolution,
			"buyer_refund_cents":     outcome.buyerRefund,
			"publisher_payout_cents": outcome.publisherPayout,
			"resolved_by_id":         input.Actor.UserID,
			"resolution_notes":       input.Notes,
			"resolved_at":            now,
		}
		updated, err := repo.MarkResolved(ctx, dispute.ID, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve dispute")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeConflict, "dispute already resolved")
		}

		orderFields := map[string]any{"payment_status": outcome.paymentStatus}
		if outcome.orderStatus == enums.OrderStatusCompleted {
			orderFields["completed_at"] = now
		} else {
			orderFields["cancelled_at"] = now
		}
		moved, err := ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusDisputed, outcome.orderStatus, orderFields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize disputed order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStaleOrderState, "order changed concurrently, refresh and retry")
		}

		switch input.Resolution {
		case enums.DisputeResolutionFavorsBuyer:
			err = s.wallet.Release(ctx, tx, wallet.ReleaseInput{
				BuyerID:    order.BuyerID,
				OrderID:    order.ID,
				TotalCents: total,
				Reason:     "dispute resolved in buyer's favor",
			})
		case enums.DisputeResolutionFavorsPublisher:
			settle := wallet.SettleInput{
				BuyerID:                order.BuyerID,
				PublisherID:            order.PublisherID,
				OrderID:                order.ID,
				TotalCents:             total,
				PublisherEarningsCents: outcome.publisherPayout,
			}
			if order.ContributorID != nil {
				settle.ContributorID = order.ContributorID
				settle.ContributorAmountCents = int64(order.ContributorAmountCents)
			}
			err = s.wallet.Settle(ctx, tx, settle)
		case enums.DisputeResolutionSplit:
			err = s.wallet.RefundSplit(ctx, tx, wallet.RefundSplitInput{
				BuyerID:              order.BuyerID,
				PublisherID:          order.PublisherID,
				OrderID:              order.ID,
				TotalCents:           total,
				BuyerRefundCents:     outcome.buyerRefund,
				PublisherPayoutCents: outcome.publisherPayout,
				PlatformFeeKeptCents: outcome.feeKept,
			})
		}
		if err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDisputeResolved,
			AggregateType: enums.AggregateDispute,
			AggregateID:   dispute.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.Actor.UserID, Role: string(input.Actor.Role)},
			Data: payloads.DisputeResolvedEvent{
				OrderID:              order.ID,
				DisputeID:            dispute.ID,
				Resolution:           input.Resolution,
				BuyerRefundCents:     outcome.buyerRefund,
				PublisherPayoutCents: outcome.publisherPayout,
				ResolvedAt:           now,
			},
		}); err != nil {
			return err
		}

		dispute.Status = enums.DisputeStatusResolved
		dispute.Resolution = &input.Resolution
		dispute.BuyerRefundCents = &outcome.buyerRefund
		dispute.PublisherPayoutCents = &outcome.publisherPayout
		dispute.ResolvedByID = &input.Actor.UserID
		dispute.ResolutionNotes = input.Notes
		dispute.ResolvedAt = &now
		resolved = dispute
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

type outcome struct {
	orderStatus     enums.OrderStatus
	paymentStatus   enums.PaymentStatus
	buyerRefund     int64
	publisherPayout int64
	feeKept         int64
}

// resolutionOutcome computes where the escrowed total goes. On a split the
// admin sets the buyer's refund; the publisher receives the remainder minus
// the platform fee prorated to the publisher's share.
func resolutionOutcome(order *models.Order, input ResolveInput) (outcome, error) {
	total := int64(order.TotalCents)
	switch input.Resolution {
	case enums.DisputeResolutionFavorsBuyer:
		return outcome{
			orderStatus:   enums.OrderStatusRefunded,
			paymentStatus: enums.PaymentStatusRefunded,
			buyerRefund:   total,
		}, nil
	case enums.DisputeResolutionFavorsPublisher:
		return outcome{
			orderStatus:     enums.OrderStatusCompleted,
			paymentStatus:   enums.PaymentStatusSettled,
			publisherPayout: int64(order.BasePriceCents),
		}, nil
	case enums.DisputeResolutionSplit:
		if input.BuyerRefundCents <= 0 || input.BuyerRefundCents >= total {
			return outcome{}, pkgerrors.New(pkgerrors.CodeValidation,
				"split refund must be between 0 and the order total")
		}
		publisherGross := total - input.BuyerRefundCents
		feeKept := pricing.ProrateFee(int64(order.PlatformFeeCents), publisherGross, total)
		return outcome{
			orderStatus:     enums.OrderStatusRefunded,
			paymentStatus:   enums.PaymentStatusSplit,
			buyerRefund:     input.BuyerRefundCents,
			publisherPayout: publisherGross - feeKept,
			feeKept:         feeKept,
		}, nil
	default:
		return outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid resolution")
	}
}

func (s *service) GetForOrder(ctx context.Context, orderID uuid.UUID, actor orders.Actor) (*models.Dispute, error) {
	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch actor.Role {
	case enums.ActorRoleAdmin, enums.ActorRoleSystem:
	case enums.ActorRoleBuyer:
		if order.BuyerID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	case enums.ActorRolePublisher:
		if order.PublisherID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	dispute, err := s.repo.FindOpenByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispute")
	}
	if dispute == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order has no open dispute")
	}
	return dispute, nil
}

func (s *service) List(ctx context.Context, actor orders.Actor, status *enums.DisputeStatus, params pagination.Params) (*DisputeList, error) {
	if actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins list disputes")
	}
	list, err := s.repo.List(ctx, status, params)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list disputes")
	}
	return list, nil
}
