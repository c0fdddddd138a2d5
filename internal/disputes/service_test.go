package disputes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/internal/wallet"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	pkgerrors "github.com/linkhaus-dev/linkhaus-backend/pkg/errors"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/outbox"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

type fakeDisputesRepo struct {
	disputes map[uuid.UUID]*models.Dispute
}

func newFakeDisputesRepo() *fakeDisputesRepo {
	return &fakeDisputesRepo{disputes: map[uuid.UUID]*models.Dispute{}}
}

func (f *fakeDisputesRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeDisputesRepo) Create(ctx context.Context, dispute *models.Dispute) (*models.Dispute, error) {
	clone := *dispute
	f.disputes[dispute.ID] = &clone
	return dispute, nil
}

func (f *fakeDisputesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	stored, ok := f.disputes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeDisputesRepo) FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	for _, d := range f.disputes {
		if d.OrderID == orderID && d.Status == enums.DisputeStatusOpen {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeDisputesRepo) MarkResolved(ctx context.Context, disputeID uuid.UUID, fields map[string]any) (bool, error) {
	stored, ok := f.disputes[disputeID]
	if !ok || stored.Status != enums.DisputeStatusOpen {
		return false, nil
	}
	stored.Status = enums.DisputeStatusResolved
	if res, ok := fields["resolution"].(enums.DisputeResolution); ok {
		stored.Resolution = &res
	}
	return true, nil
}

func (f *fakeDisputesRepo) List(ctx context.Context, status *enums.DisputeStatus, params pagination.Params) (*DisputeList, error) {
	var rows []models.Dispute
	for _, d := range f.disputes {
		if status == nil || d.Status == *status {
			rows = append(rows, *d)
		}
	}
	return &DisputeList{Disputes: rows}, nil
}

type fakeOrdersRepo struct {
	orders      map[uuid.UUID]*models.Order
	failUpdates bool
	updateCalls int
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	clone := *order
	f.orders[order.ID] = &clone
	return order, nil
}

func (f *fakeOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	stored, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeOrdersRepo) FindPublishedPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrdersRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, expectedCurrent, newStatus enums.OrderStatus, fields map[string]any) (bool, error) {
	f.updateCalls++
	if f.failUpdates {
		return false, nil
	}
	stored, ok := f.orders[orderID]
	if !ok || stored.Status != expectedCurrent {
		return false, nil
	}
	stored.Status = newStatus
	if prior, ok := fields["status_before_dispute"].(enums.OrderStatus); ok {
		stored.StatusBeforeDispute = &prior
	}
	if ps, ok := fields["payment_status"].(enums.PaymentStatus); ok {
		stored.PaymentStatus = ps
	}
	return true, nil
}

func (f *fakeOrdersRepo) SetReview(ctx context.Context, orderID uuid.UUID, rating int, reviewText *string) (bool, error) {
	return false, nil
}

func (f *fakeOrdersRepo) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (f *fakeOrdersRepo) ListPublisherOrders(ctx context.Context, publisherID uuid.UUID, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

type fakeWalletService struct {
	releases []wallet.ReleaseInput
	settles  []wallet.SettleInput
	splits   []wallet.RefundSplitInput
}

func (f *fakeWalletService) Reserve(ctx context.Context, tx *gorm.DB, input wallet.ReserveInput) error {
	return nil
}

func (f *fakeWalletService) Release(ctx context.Context, tx *gorm.DB, input wallet.ReleaseInput) error {
	f.releases = append(f.releases, input)
	return nil
}

func (f *fakeWalletService) Settle(ctx context.Context, tx *gorm.DB, input wallet.SettleInput) error {
	f.settles = append(f.settles, input)
	return nil
}

func (f *fakeWalletService) RefundSplit(ctx context.Context, tx *gorm.DB, input wallet.RefundSplitInput) error {
	f.splits = append(f.splits, input)
	return nil
}

func (f *fakeWalletService) Credit(ctx context.Context, tx *gorm.DB, input wallet.CreditInput) error {
	return nil
}

func (f *fakeWalletService) Debit(ctx context.Context, tx *gorm.DB, input wallet.DebitInput) error {
	return nil
}

func (f *fakeWalletService) Balance(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error) {
	return nil, nil
}

func (f *fakeWalletService) Transactions(ctx context.Context, userID uuid.UUID, role enums.WalletRole, limit int) ([]models.WalletTransaction, error) {
	return nil, nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

// fakeTxRunner restores both stores when the closure errors, matching the
// rollback the real runner performs. afterRollback lets a test model a
// concurrent transaction committing between two attempts.
type fakeTxRunner struct {
	disputes      *fakeDisputesRepo
	orders        *fakeOrdersRepo
	afterRollback func()
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	savedDisputes := map[uuid.UUID]*models.Dispute{}
	for id, d := range f.disputes.disputes {
		clone := *d
		savedDisputes[id] = &clone
	}
	savedOrders := map[uuid.UUID]*models.Order{}
	for id, o := range f.orders.orders {
		clone := *o
		savedOrders[id] = &clone
	}
	err := fn(&gorm.DB{})
	if err != nil {
		f.disputes.disputes = savedDisputes
		f.orders.orders = savedOrders
		if f.afterRollback != nil {
			f.afterRollback()
			f.afterRollback = nil
		}
	}
	return err
}

type testHarness struct {
	svc        Service
	repo       *fakeDisputesRepo
	ordersRepo *fakeOrdersRepo
	wallet     *fakeWalletService
	outbox     *fakeOutbox
	tx         *fakeTxRunner
	now        time.Time
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	repo := newFakeDisputesRepo()
	ordersRepo := newFakeOrdersRepo()
	walletSvc := &fakeWalletService{}
	outboxSvc := &fakeOutbox{}
	tx := &fakeTxRunner{disputes: repo, orders: ordersRepo}
	svc, err := NewService(repo, ordersRepo, tx, walletSvc, outboxSvc)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	now := time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }
	return &testHarness{svc: svc, repo: repo, ordersRepo: ordersRepo, wallet: walletSvc, outbox: outboxSvc, tx: tx, now: now}
}

func (h *testHarness) seedOrder(status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "LH-DISPUTE1",
		BuyerID:          uuid.New(),
		PublisherID:      uuid.New(),
		WebsiteID:        uuid.New(),
		OrderType:        enums.OrderTypeGuestPost,
		ContentSource:    enums.ContentSourcePublisher,
		Status:           status,
		PaymentStatus:    enums.PaymentStatusReserved,
		BasePriceCents:   10000,
		PlatformFeeCents: 2500,
		TotalCents:       12500,
	}
	if status == enums.OrderStatusPublished {
		protection := h.now.Add(60 * 24 * time.Hour)
		order.DisputeProtectionUntil = &protection
	}
	h.ordersRepo.orders[order.ID] = order
	return order
}

func (h *testHarness) openDispute(t *testing.T, order *models.Order) *models.Dispute {
	t.Helper()
	dispute, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonLinkRemoved,
		Description: "the article was taken down two days after publication",
	})
	if err != nil {
		t.Fatalf("open dispute: %v", err)
	}
	return dispute
}

func TestOpenBuyerDisputeParksOrder(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)

	dispute := h.openDispute(t, order)

	if dispute.Status != enums.DisputeStatusOpen {
		t.Fatalf("expected open dispute, got %s", dispute.Status)
	}
	stored := h.ordersRepo.orders[order.ID]
	if stored.Status != enums.OrderStatusDisputed {
		t.Fatalf("expected disputed order, got %s", stored.Status)
	}
	if stored.StatusBeforeDispute == nil || *stored.StatusBeforeDispute != enums.OrderStatusPublished {
		t.Fatalf("prior status not preserved: %+v", stored.StatusBeforeDispute)
	}
	if len(h.outbox.events) != 1 || h.outbox.events[0].EventType != enums.EventOrderDisputed {
		t.Fatalf("unexpected events: %+v", h.outbox.events)
	}
}

func TestOpenRejectsShortDescription(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonLinkRemoved,
		Description: "too short",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOpenRejectsSecondDispute(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	h.openDispute(t, order)

	// put the order back so only the open-dispute check can reject
	h.ordersRepo.orders[order.ID].Status = enums.OrderStatusPublished

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonContentChanged,
		Description: "the article text was silently rewritten last week",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestOpenOutsideProtectionWindow(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	expired := h.now.Add(-time.Hour)
	order.DisputeProtectionUntil = &expired

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonLinkRemoved,
		Description: "the article was taken down after the window closed",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOpenCompletedOrderRejected(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusCompleted)

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonLinkRemoved,
		Description: "the link disappeared after the order settled",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOpenPublisherOnRevisionLoop(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusRevisionNeeded)

	dispute, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.PublisherID, Role: enums.ActorRolePublisher},
		Reason:      enums.DisputeReasonTermsViolated,
		Description: "buyer keeps demanding rewrites beyond the agreed brief",
	})
	if err != nil {
		t.Fatalf("open dispute: %v", err)
	}
	if dispute.OpenedBy != enums.ActorRolePublisher {
		t.Fatalf("expected publisher dispute, got %s", dispute.OpenedBy)
	}
}

func TestOpenWrongRoleForbidden(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
		Reason:      enums.DisputeReasonOther,
		Description: "admin trying to open a dispute on behalf of a party",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestResolveFavorsBuyerRefundsInFull(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)

	resolved, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:  dispute.ID,
		Actor:      orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
		Resolution: enums.DisputeResolutionFavorsBuyer,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(h.wallet.releases) != 1 || h.wallet.releases[0].TotalCents != 12500 {
		t.Fatalf("expected full release, got %+v", h.wallet.releases)
	}
	if h.ordersRepo.orders[order.ID].Status != enums.OrderStatusRefunded {
		t.Fatalf("expected refunded order, got %s", h.ordersRepo.orders[order.ID].Status)
	}
	if resolved.Resolution == nil || *resolved.Resolution != enums.DisputeResolutionFavorsBuyer {
		t.Fatalf("resolution not recorded: %+v", resolved.Resolution)
	}
}

func TestResolveFavorsPublisherSettles(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)

	_, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:  dispute.ID,
		Actor:      orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
		Resolution: enums.DisputeResolutionFavorsPublisher,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(h.wallet.settles) != 1 {
		t.Fatalf("expected settle, got %+v", h.wallet.settles)
	}
	settle := h.wallet.settles[0]
	if settle.TotalCents != 12500 || settle.PublisherEarningsCents != 10000 {
		t.Fatalf("settle amounts wrong: %+v", settle)
	}
	if h.ordersRepo.orders[order.ID].Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed order, got %s", h.ordersRepo.orders[order.ID].Status)
	}
}

func TestResolveSplitProratesFee(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)

	resolved, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:        dispute.ID,
		Actor:            orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
		Resolution:       enums.DisputeResolutionSplit,
		BuyerRefundCents: 5000,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(h.wallet.splits) != 1 {
		t.Fatalf("expected split, got %+v", h.wallet.splits)
	}
	split := h.wallet.splits[0]
	// publisher gross 7500, prorated fee 2500*7500/12500 = 1500
	if split.BuyerRefundCents != 5000 || split.PublisherPayoutCents != 6000 || split.PlatformFeeKeptCents != 1500 {
		t.Fatalf("split amounts wrong: %+v", split)
	}
	if split.BuyerRefundCents+split.PublisherPayoutCents+split.PlatformFeeKeptCents != split.TotalCents {
		t.Fatalf("split does not conserve the total: %+v", split)
	}
	if resolved.BuyerRefundCents == nil || *resolved.BuyerRefundCents != 5000 {
		t.Fatalf("refund not recorded on dispute: %+v", resolved.BuyerRefundCents)
	}
}

func TestResolveSplitRejectsOutOfRangeRefund(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)

	_, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:        dispute.ID,
		Actor:            orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
		Resolution:       enums.DisputeResolutionSplit,
		BuyerRefundCents: 12500,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveRequiresAdmin(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)

	_, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:  dispute.ID,
		Actor:      orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Resolution: enums.DisputeResolutionFavorsBuyer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestResolveTwiceConflicts(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)
	admin := orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}

	if _, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:  dispute.ID,
		Actor:      admin,
		Resolution: enums.DisputeResolutionFavorsBuyer,
	}); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	_, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:  dispute.ID,
		Actor:      admin,
		Resolution: enums.DisputeResolutionFavorsPublisher,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestOpenRetriesStaleUpdateThenSurfacesConflict(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	h.ordersRepo.failUpdates = true

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonLinkRemoved,
		Description: "the article was taken down two days after publication",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStaleOrderState) {
		t.Fatalf("expected stale order state, got %v", err)
	}
	if h.ordersRepo.updateCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", h.ordersRepo.updateCalls)
	}
	if len(h.repo.disputes) != 0 {
		t.Fatalf("failed open must not persist a dispute, got %d", len(h.repo.disputes))
	}
}

func TestOpenReloadsWhenOrderSettlesConcurrently(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	h.ordersRepo.failUpdates = true
	h.tx.afterRollback = func() {
		h.ordersRepo.failUpdates = false
		h.ordersRepo.orders[order.ID].Status = enums.OrderStatusCompleted
	}

	_, err := h.svc.Open(context.Background(), OpenInput{
		OrderID:     order.ID,
		Actor:       orders.Actor{UserID: order.BuyerID, Role: enums.ActorRoleBuyer},
		Reason:      enums.DisputeReasonLinkRemoved,
		Description: "the article was taken down two days after publication",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected the reloaded completed-order error, got %v", err)
	}
	if h.ordersRepo.updateCalls != 1 {
		t.Fatalf("second attempt must stop before updating, got %d update calls", h.ordersRepo.updateCalls)
	}
	if len(h.repo.disputes) != 0 {
		t.Fatalf("failed open must not persist a dispute, got %d", len(h.repo.disputes))
	}
}

func TestResolveRetriesStaleUpdateThenSurfacesConflict(t *testing.T) {
	h := newTestHarness(t)
	order := h.seedOrder(enums.OrderStatusPublished)
	dispute := h.openDispute(t, order)
	h.ordersRepo.failUpdates = true
	h.ordersRepo.updateCalls = 0

	_, err := h.svc.Resolve(context.Background(), ResolveInput{
		DisputeID:  dispute.ID,
		Actor:      orders.Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin},
		Resolution: enums.DisputeResolutionFavorsBuyer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStaleOrderState) {
		t.Fatalf("expected stale order state, got %v", err)
	}
	if h.ordersRepo.updateCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", h.ordersRepo.updateCalls)
	}
	if stored := h.repo.disputes[dispute.ID]; stored.Status != enums.DisputeStatusOpen {
		t.Fatalf("failed resolve must leave the dispute open, got %s", stored.Status)
	}
	if len(h.wallet.releases) != 0 {
		t.Fatalf("failed resolve must not move funds, got %d releases", len(h.wallet.releases))
	}
}
