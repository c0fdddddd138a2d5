package orders

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/internal/pricing"
	"github.com/linkhaus-dev/linkhaus-backend/internal/wallet"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	pkgerrors "github.com/linkhaus-dev/linkhaus-backend/pkg/errors"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/outbox"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/outbox/payloads"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

const minRevisionReasonLen = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the order lifecycle state machine. Every mutation validates the
// actor's role, the current persisted status, and the transition payload, and
// commits the status change together with any wallet movement and outbox rows.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	Confirm(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	AutoComplete(ctx context.Context, orderID uuid.UUID) error
	Review(ctx context.Context, input ReviewInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	List(ctx context.Context, actor Actor, params pagination.Params, filters OrderFilters) (*OrderList, error)
}

// Config carries the lifecycle knobs the state machine needs.
type Config struct {
	PlatformFeePercent      int
	ConfirmationWindow      time.Duration
	DisputeProtectionWindow time.Duration
	StaleRetryLimit         int
}

type service struct {
	repo   Repository
	tx     txRunner
	wallet wallet.Service
	outbox outboxPublisher
	cfg    Config
	now    func() time.Time
}

// NewService builds the order state machine with the required dependencies.
func NewService(repo Repository, tx txRunner, walletSvc wallet.Service, outboxSvc outboxPublisher, cfg Config) (Service, error) {
	if repo == nil {
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
	if cfg.ConfirmationWindow <= 0 {
		return nil, fmt.Errorf("confirmation window must be positive")
	}
	if cfg.DisputeProtectionWindow <= 0 {
		return nil, fmt.Errorf("dispute protection window must be positive")
	}
	if cfg.StaleRetryLimit <= 0 {
		cfg.StaleRetryLimit = 3
	}
	return &service{
		repo:   repo,
		tx:     tx,
		wallet: walletSvc,
		outbox: outboxSvc,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

type transitionKey struct {
	From enums.OrderStatus
	To   enums.OrderStatus
}

// transitionRoles is the full transition table. A (from, to) pair absent from
// the map is never allowed; the roles listed are the only actors who may
// request it. Dispute entry and exit live in the disputes service.
var transitionRoles = map[transitionKey][]enums.ActorRole{
	{enums.OrderStatusPending, enums.OrderStatusAccepted}:                  {enums.ActorRolePublisher},
	{enums.OrderStatusPending, enums.OrderStatusCancelled}:                 {enums.ActorRolePublisher, enums.ActorRoleBuyer},
	{enums.OrderStatusAccepted, enums.OrderStatusCancelled}:                {enums.ActorRoleBuyer},
	{enums.OrderStatusAccepted, enums.OrderStatusWriting}:                  {enums.ActorRolePublisher},
	{enums.OrderStatusAccepted, enums.OrderStatusContentSubmitted}:         {enums.ActorRolePublisher},
	{enums.OrderStatusWriting, enums.OrderStatusContentSubmitted}:          {enums.ActorRolePublisher},
	{enums.OrderStatusRevisionNeeded, enums.OrderStatusContentSubmitted}:   {enums.ActorRolePublisher},
	{enums.OrderStatusContentSubmitted, enums.OrderStatusApproved}:         {enums.ActorRoleBuyer},
	{enums.OrderStatusContentSubmitted, enums.OrderStatusRevisionNeeded}:   {enums.ActorRoleBuyer},
	{enums.OrderStatusApproved, enums.OrderStatusPublished}:                {enums.ActorRolePublisher},
	{enums.OrderStatusRevisionNeeded, enums.OrderStatusPublished}:          {enums.ActorRolePublisher},
	{enums.OrderStatusPublished, enums.OrderStatusCompleted}:               {enums.ActorRoleBuyer, enums.ActorRoleSystem},
	{enums.OrderStatusPublished, enums.OrderStatusRevisionNeeded}:          {enums.ActorRoleBuyer},
}

func roleMayRequest(role enums.ActorRole, target enums.OrderStatus) bool {
	for key, roles := range transitionRoles {
		if key.To != target {
			continue
		}
		for _, allowed := range roles {
			if allowed == role {
				return true
			}
		}
	}
	return false
}

func rolesInclude(roles []enums.ActorRole, role enums.ActorRole) bool {
	for _, allowed := range roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	quote, err := pricing.NewQuote(input.BasePriceCents, s.cfg.PlatformFeePercent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quote order price")
	}

	order := &models.Order{
		ID:                     uuid.New(),
		OrderNumber:            newOrderNumber(),
		BuyerID:                input.Actor.UserID,
		PublisherID:            input.PublisherID,
		WebsiteID:              input.WebsiteID,
		OrderType:              input.OrderType,
		ContentSource:          input.ContentSource,
		AnchorText:             strings.TrimSpace(input.AnchorText),
		TargetURL:              input.TargetURL,
		Brief:                  input.Brief,
		Status:                 enums.OrderStatusPending,
		PaymentStatus:          enums.PaymentStatusReserved,
		BasePriceCents:         int(quote.BasePriceCents),
		PlatformFeeCents:       int(quote.PlatformFeeCents),
		TotalCents:             int(quote.TotalCents),
		ContributorID:          input.ContributorID,
		ContributorAmountCents: int(input.ContributorAmountCents),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := s.wallet.Reserve(ctx, tx, wallet.ReserveInput{
			BuyerID:    order.BuyerID,
			OrderID:    order.ID,
			TotalCents: quote.TotalCents,
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.OrderPlacedEvent{
				OrderID:          order.ID,
				BuyerID:          order.BuyerID,
				PublisherID:      order.PublisherID,
				WebsiteID:        order.WebsiteID,
				OrderType:        order.OrderType,
				TotalCents:       order.TotalCents,
				PlatformFeeCents: order.PlatformFeeCents,
				Status:           order.Status,
			},
		}); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventFundsReserved,
			AggregateType: enums.AggregateWallet,
			AggregateID:   order.BuyerID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.WalletMovementEvent{
				OrderID:     order.ID,
				UserID:      order.BuyerID,
				Role:        enums.WalletRoleBuyer,
				Type:        enums.TransactionTypePurchase,
				AmountCents: quote.TotalCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	return s.transition(ctx, input, false)
}

func (s *service) Confirm(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	return s.transition(ctx, TransitionInput{
		OrderID: orderID,
		Actor:   actor,
		Target:  enums.OrderStatusCompleted,
	}, false)
}

// AutoComplete applies the buyer-confirm path on behalf of the scheduler. An
// order that left published since the sweep selected it is a no-op, since the
// sweep may race a manual confirmation.
func (s *service) AutoComplete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPublished {
		return nil
	}
	if order.ConfirmationDeadlineAt == nil || order.ConfirmationDeadlineAt.After(s.now()) {
		return nil
	}

	_, err = s.transition(ctx, TransitionInput{
		OrderID: orderID,
		Actor:   Actor{Role: enums.ActorRoleSystem},
		Target:  enums.OrderStatusCompleted,
	}, true)
	if err != nil && pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		// lost the race to a manual confirm between the load and the update
		return nil
	}
	return err
}

func (s *service) transition(ctx context.Context, input TransitionInput, autoCompleted bool) (*models.Order, error) {
	if err := validateTransitionInput(input); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.StaleRetryLimit; attempt++ {
		var updated *models.Order
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			var applyErr error
			updated, applyErr = s.applyTransition(ctx, tx, input, autoCompleted)
			return applyErr
		})
		if err == nil {
			return updated, nil
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeStaleOrderState) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) applyTransition(ctx context.Context, tx *gorm.DB, input TransitionInput, autoCompleted bool) (*models.Order, error) {
	repo := s.repo.WithTx(tx)

	order, err := repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if err := authorizeTransition(order, input.Actor, input.Target); err != nil {
		return nil, err
	}

	rule, ok := transitionRoles[transitionKey{From: order.Status, To: input.Target}]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("order in %s state cannot move to %s", order.Status, input.Target))
	}
	if !rolesInclude(rule, input.Actor.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role not permitted for this transition")
	}

	now := s.now().UTC()
	from := order.Status
	fields := map[string]any{}
	var sideEffects func() error
	var events []outbox.DomainEvent

	switch input.Target {
	case enums.OrderStatusAccepted:
		events = append(events, s.statusChangedEvent(enums.EventOrderAccepted, order, from, input.Target, input.Actor, ""))

	case enums.OrderStatusWriting:
		// internal workflow step, no notification

	case enums.OrderStatusContentSubmitted:
		if input.Content != nil {
			fields["article_title"] = strings.TrimSpace(input.Content.Title)
			fields["article_body"] = input.Content.Body
		}
		events = append(events, s.statusChangedEvent(enums.EventContentSubmitted, order, from, input.Target, input.Actor, ""))

	case enums.OrderStatusApproved:
		events = append(events, s.statusChangedEvent(enums.EventContentApproved, order, from, input.Target, input.Actor, ""))

	case enums.OrderStatusRevisionNeeded:
		reason := strings.TrimSpace(input.Revision.Reason)
		fields["revision_reason"] = reason
		fields["revision_count"] = order.RevisionCount + 1
		if from == enums.OrderStatusPublished {
			fields["confirmation_deadline_at"] = nil
		}
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventRevisionRequested,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.RevisionRequestedEvent{
				OrderID:       order.ID,
				BuyerID:       order.BuyerID,
				PublisherID:   order.PublisherID,
				Reason:        reason,
				RevisionCount: order.RevisionCount + 1,
			},
		})

	case enums.OrderStatusPublished:
		publishedAt := now
		if order.PublishedAt != nil {
			publishedAt = *order.PublishedAt
		} else {
			fields["published_at"] = now
		}
		deadline := now.Add(s.cfg.ConfirmationWindow)
		fields["article_url"] = input.Publish.ArticleURL
		fields["confirmation_deadline_at"] = deadline
		fields["dispute_protection_until"] = now.Add(s.cfg.DisputeProtectionWindow)
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderPublished,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.OrderPublishedEvent{
				OrderID:                order.ID,
				BuyerID:                order.BuyerID,
				PublisherID:            order.PublisherID,
				ArticleURL:             input.Publish.ArticleURL,
				PublishedAt:            publishedAt,
				ConfirmationDeadlineAt: deadline,
			},
		})

	case enums.OrderStatusCompleted:
		if order.ArticleURL == nil || !validHTTPURL(*order.ArticleURL) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no valid article url to confirm")
		}
		fields["completed_at"] = now
		fields["payment_status"] = enums.PaymentStatusSettled
		earnings := int64(order.BasePriceCents)
		sideEffects = func() error {
			settle := wallet.SettleInput{
				BuyerID:                order.BuyerID,
				PublisherID:            order.PublisherID,
				OrderID:                order.ID,
				TotalCents:             int64(order.TotalCents),
				PublisherEarningsCents: earnings,
			}
			if order.ContributorID != nil {
				settle.ContributorID = order.ContributorID
				settle.ContributorAmountCents = int64(order.ContributorAmountCents)
			}
			return s.wallet.Settle(ctx, tx, settle)
		}
		events = append(events,
			outbox.DomainEvent{
				EventType:     enums.EventOrderCompleted,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.OrderCompletedEvent{
					OrderID:                order.ID,
					BuyerID:                order.BuyerID,
					PublisherID:            order.PublisherID,
					PublisherEarningsCents: earnings,
					PlatformFeeCents:       int64(order.PlatformFeeCents),
					AutoCompleted:          autoCompleted,
					CompletedAt:            now,
				},
			},
			outbox.DomainEvent{
				EventType:     enums.EventFundsSettled,
				AggregateType: enums.AggregateWallet,
				AggregateID:   order.PublisherID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.WalletMovementEvent{
					OrderID:     order.ID,
					UserID:      order.PublisherID,
					Role:        enums.WalletRolePublisher,
					Type:        enums.TransactionTypeEarning,
					AmountCents: earnings,
				},
			},
		)

	case enums.OrderStatusCancelled:
		reason := ""
		if input.CancelReason != nil {
			reason = strings.TrimSpace(*input.CancelReason)
		}
		fields["cancelled_at"] = now
		fields["payment_status"] = enums.PaymentStatusRefunded
		total := int64(order.TotalCents)
		sideEffects = func() error {
			return s.wallet.Release(ctx, tx, wallet.ReleaseInput{
				BuyerID:    order.BuyerID,
				OrderID:    order.ID,
				TotalCents: total,
				Reason:     reason,
			})
		}
		events = append(events,
			outbox.DomainEvent{
				EventType:     enums.EventOrderCancelled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.OrderCancelledEvent{
					OrderID:     order.ID,
					BuyerID:     order.BuyerID,
					PublisherID: order.PublisherID,
					RefundCents: total,
					CancelledBy: input.Actor.Role,
					Reason:      reason,
					CancelledAt: now,
				},
			},
			outbox.DomainEvent{
				EventType:     enums.EventFundsReleased,
				AggregateType: enums.AggregateWallet,
				AggregateID:   order.BuyerID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.WalletMovementEvent{
					OrderID:     order.ID,
					UserID:      order.BuyerID,
					Role:        enums.WalletRoleBuyer,
					Type:        enums.TransactionTypeRefund,
					AmountCents: total,
				},
			},
		)

	default:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("transition to %s is not supported", input.Target))
	}

	updated, err := repo.UpdateStatus(ctx, order.ID, from, input.Target, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStaleOrderState, "order changed concurrently, refresh and retry")
	}

	if sideEffects != nil {
		if err := sideEffects(); err != nil {
			return nil, err
		}
	}

	for _, event := range events {
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	refreshed, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return refreshed, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var reviewed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if input.Actor.Role != enums.ActorRoleBuyer || order.BuyerID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the order's buyer may review it")
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only completed orders can be reviewed")
		}
		if order.Rating != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
		}

		saved, err := repo.SetReview(ctx, input.OrderID, input.Rating, input.ReviewText)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
		}
		if !saved {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
		}

		reviewText := ""
		if input.ReviewText != nil {
			reviewText = *input.ReviewText
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderReviewed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.OrderReviewedEvent{
				OrderID:     order.ID,
				BuyerID:     order.BuyerID,
				PublisherID: order.PublisherID,
				WebsiteID:   order.WebsiteID,
				Rating:      input.Rating,
				ReviewText:  reviewText,
			},
		}); err != nil {
			return err
		}

		order.Rating = &input.Rating
		order.ReviewText = input.ReviewText
		reviewed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
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
	return order, nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var (
		list *OrderList
		err  error
	)
	switch actor.Role {
	case enums.ActorRoleBuyer:
		list, err = s.repo.ListBuyerOrders(ctx, actor.UserID, params, filters)
	case enums.ActorRolePublisher:
		list, err = s.repo.ListPublisherOrders(ctx, actor.UserID, params, filters)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
	}
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func authorizeTransition(order *models.Order, actor Actor, target enums.OrderStatus) error {
	switch actor.Role {
	case enums.ActorRoleBuyer:
		if actor.UserID == uuid.Nil || order.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	case enums.ActorRolePublisher:
		if actor.UserID == uuid.Nil || order.PublisherID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	case enums.ActorRoleSystem:
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not drive order transitions")
	}
	if !roleMayRequest(actor.Role, target) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role not permitted for this transition")
	}
	return nil
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Actor.Role != enums.ActorRoleBuyer {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only buyers place orders")
	}
	if input.PublisherID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "publisher id required")
	}
	if input.WebsiteID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "website id required")
	}
	if input.PublisherID == input.Actor.UserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer and publisher must differ")
	}
	if !input.OrderType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if !input.ContentSource.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid content source")
	}
	if strings.TrimSpace(input.AnchorText) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "anchor text required")
	}
	if !validHTTPURL(input.TargetURL) {
		return pkgerrors.New(pkgerrors.CodeValidation, "target url must be a valid http(s) url")
	}
	if input.BasePriceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if input.ContributorAmountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "contributor amount cannot be negative")
	}
	if input.ContributorAmountCents > 0 && input.ContributorID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contributor id required when contributor amount set")
	}
	if input.ContributorAmountCents > input.BasePriceCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "contributor amount cannot exceed base price")
	}
	return nil
}

func validateTransitionInput(input TransitionInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
	if input.Actor.Role != enums.ActorRoleSystem && input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	switch input.Target {
	case enums.OrderStatusPublished:
		if input.Publish == nil || !validHTTPURL(input.Publish.ArticleURL) {
			return pkgerrors.New(pkgerrors.CodeValidation, "article url must be a valid http(s) url")
		}
	case enums.OrderStatusRevisionNeeded:
		if input.Revision == nil || len(strings.TrimSpace(input.Revision.Reason)) < minRevisionReasonLen {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("revision reason must be at least %d characters", minRevisionReasonLen))
		}
	}
	return nil
}

func (s *service) statusChangedEvent(eventType enums.OutboxEventType, order *models.Order, from, to enums.OrderStatus, actor Actor, reason string) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         buildActor(actor),
		Data: payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			BuyerID:     order.BuyerID,
			PublisherID: order.PublisherID,
			FromStatus:  from,
			ToStatus:    to,
			ActorRole:   actor.Role,
			Reason:      reason,
		},
	}
}

func buildActor(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   string(actor.Role),
	}
}

func validHTTPURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func newOrderNumber() string {
	return "LH-" + strings.ToUpper(uuid.NewString()[:8])
}
