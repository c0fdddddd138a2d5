package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/internal/disputes"
	"github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/internal/wallet"
	pkgauth "github.com/linkhaus-dev/linkhaus-backend/pkg/auth"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/config"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/logger"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

type stubOrdersService struct {
	lastList *orders.OrderFilters
}

func (s *stubOrdersService) PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}, nil
}

func (s *stubOrdersService) Transition(ctx context.Context, input orders.TransitionInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: input.Target}, nil
}

func (s *stubOrdersService) Confirm(ctx context.Context, orderID uuid.UUID, actor orders.Actor) (*models.Order, error) {
	return &models.Order{ID: orderID, Status: enums.OrderStatusCompleted}, nil
}

func (s *stubOrdersService) AutoComplete(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

func (s *stubOrdersService) Review(ctx context.Context, input orders.ReviewInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: enums.OrderStatusCompleted}, nil
}

func (s *stubOrdersService) Get(ctx context.Context, orderID uuid.UUID, actor orders.Actor) (*models.Order, error) {
	return &models.Order{ID: orderID, Status: enums.OrderStatusPending}, nil
}

func (s *stubOrdersService) List(ctx context.Context, actor orders.Actor, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	s.lastList = &filters
	return &orders.OrderList{}, nil
}

type stubWalletService struct{}

func (stubWalletService) Reserve(context.Context, *gorm.DB, wallet.ReserveInput) error { return nil }
func (stubWalletService) Release(context.Context, *gorm.DB, wallet.ReleaseInput) error { return nil }
func (stubWalletService) Settle(context.Context, *gorm.DB, wallet.SettleInput) error   { return nil }
func (stubWalletService) RefundSplit(context.Context, *gorm.DB, wallet.RefundSplitInput) error {
	return nil
}
func (stubWalletService) Credit(context.Context, *gorm.DB, wallet.CreditInput) error { return nil }
func (stubWalletService) Debit(context.Context, *gorm.DB, wallet.DebitInput) error   { return nil }
func (stubWalletService) Balance(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID, Role: role}, nil
}
func (stubWalletService) Transactions(context.Context, uuid.UUID, enums.WalletRole, int) ([]models.WalletTransaction, error) {
	return nil, nil
}

type stubDisputesService struct{}

func (stubDisputesService) Open(ctx context.Context, input disputes.OpenInput) (*models.Dispute, error) {
	return &models.Dispute{ID: uuid.New(), OrderID: input.OrderID}, nil
}

func (stubDisputesService) Resolve(ctx context.Context, input disputes.ResolveInput) (*models.Dispute, error) {
	return &models.Dispute{ID: input.DisputeID}, nil
}

func (stubDisputesService) GetForOrder(ctx context.Context, orderID uuid.UUID, actor orders.Actor) (*models.Dispute, error) {
	return &models.Dispute{OrderID: orderID}, nil
}

func (stubDisputesService) List(ctx context.Context, actor orders.Actor, status *enums.DisputeStatus, params pagination.Params) (*disputes.DisputeList, error) {
	return &disputes.DisputeList{}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, ordersSvc orders.Service) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(testRouterConfig(), logg, nil, nil, ordersSvc, stubWalletService{}, stubDisputesService{})
}

func mintToken(t *testing.T, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testRouterConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(t, &stubOrdersService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	router := newTestRouter(t, &stubOrdersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrdersListWithToken(t *testing.T) {
	svc := &stubOrdersService{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=pending", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.ActorRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastList == nil || svc.lastList.Status == nil || *svc.lastList.Status != enums.OrderStatusPending {
		t.Fatal("expected status filter to reach the service")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	router := newTestRouter(t, &stubOrdersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/disputes", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.ActorRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminRoutesAllowAdmins(t *testing.T) {
	router := newTestRouter(t, &stubOrdersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/disputes", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
