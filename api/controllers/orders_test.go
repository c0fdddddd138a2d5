package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/api/middleware"
	internalorders "github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

type stubOrdersService struct {
	placeOrder func(ctx context.Context, input internalorders.PlaceOrderInput) (*models.Order, error)
	transition func(ctx context.Context, input internalorders.TransitionInput) (*models.Order, error)
	confirm    func(ctx context.Context, orderID uuid.UUID, actor internalorders.Actor) (*models.Order, error)
	review     func(ctx context.Context, input internalorders.ReviewInput) (*models.Order, error)
}

func (s *stubOrdersService) PlaceOrder(ctx context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
	if s.placeOrder == nil {
		panic("unexpected PlaceOrder call")
	}
	return s.placeOrder(ctx, input)
}

func (s *stubOrdersService) Transition(ctx context.Context, input internalorders.TransitionInput) (*models.Order, error) {
	if s.transition == nil {
		panic("unexpected Transition call")
	}
	return s.transition(ctx, input)
}

func (s *stubOrdersService) Confirm(ctx context.Context, orderID uuid.UUID, actor internalorders.Actor) (*models.Order, error) {
	if s.confirm == nil {
		panic("unexpected Confirm call")
	}
	return s.confirm(ctx, orderID, actor)
}

func (s *stubOrdersService) AutoComplete(ctx context.Context, orderID uuid.UUID) error {
	panic("unexpected AutoComplete call")
}

func (s *stubOrdersService) Review(ctx context.Context, input internalorders.ReviewInput) (*models.Order, error) {
	if s.review == nil {
		panic("unexpected Review call")
	}
	return s.review(ctx, input)
}

func (s *stubOrdersService) Get(ctx context.Context, orderID uuid.UUID, actor internalorders.Actor) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (s *stubOrdersService) List(ctx context.Context, actor internalorders.Actor, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func authedRequest(t *testing.T, method, target, body string, actor internalorders.Actor, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))

	ctx := middleware.WithUserID(req.Context(), actor.UserID.String())
	ctx = middleware.WithRole(ctx, string(actor.Role))

	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	return req.WithContext(ctx)
}

func buyerActor() internalorders.Actor {
	return internalorders.Actor{UserID: uuid.New(), Role: enums.ActorRoleBuyer}
}

func TestPlaceOrderMapsRequest(t *testing.T) {
	publisherID := uuid.New()
	websiteID := uuid.New()
	actor := buyerActor()

	var captured internalorders.PlaceOrderInput
	svc := &stubOrdersService{
		placeOrder: func(_ context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
			captured = input
			return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}, nil
		},
	}

	body := `{
		"publisher_id": "` + publisherID.String() + `",
		"website_id": "` + websiteID.String() + `",
		"order_type": "guest_post",
		"content_source": "publisher",
		"anchor_text": "best crm software",
		"target_url": "https://buyer.example.com/crm",
		"base_price_cents": 10000
	}`
	req := authedRequest(t, http.MethodPost, "/api/v1/orders", body, actor, nil)
	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Actor != actor {
		t.Fatalf("expected actor to pass through, got %+v", captured.Actor)
	}
	if captured.PublisherID != publisherID || captured.WebsiteID != websiteID {
		t.Fatal("expected ids to pass through")
	}
	if captured.BasePriceCents != 10000 {
		t.Fatalf("expected base price 10000 got %d", captured.BasePriceCents)
	}
	if captured.OrderType != enums.OrderTypeGuestPost {
		t.Fatalf("unexpected order type %s", captured.OrderType)
	}
}

func TestPlaceOrderRejectsUnknownFields(t *testing.T) {
	svc := &stubOrdersService{}

	body := `{"publisher_id": "` + uuid.NewString() + `", "total_cents": 99}`
	req := authedRequest(t, http.MethodPost, "/api/v1/orders", body, buyerActor(), nil)
	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestTransitionOrderBuildsPublishPayload(t *testing.T) {
	orderID := uuid.New()
	var captured internalorders.TransitionInput
	svc := &stubOrdersService{
		transition: func(_ context.Context, input internalorders.TransitionInput) (*models.Order, error) {
			captured = input
			return &models.Order{ID: input.OrderID, Status: input.Target}, nil
		},
	}

	body := `{"status": "published", "article_url": "https://blog.example.com/post"}`
	req := authedRequest(t, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", body,
		internalorders.Actor{UserID: uuid.New(), Role: enums.ActorRolePublisher},
		map[string]string{"orderId": orderID.String()})
	resp := httptest.NewRecorder()
	TransitionOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Target != enums.OrderStatusPublished {
		t.Fatalf("unexpected target %s", captured.Target)
	}
	if captured.Publish == nil || captured.Publish.ArticleURL != "https://blog.example.com/post" {
		t.Fatalf("expected publish payload, got %+v", captured.Publish)
	}
}

func TestTransitionOrderRejectsUnknownStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{}

	body := `{"status": "teleported"}`
	req := authedRequest(t, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", body,
		buyerActor(), map[string]string{"orderId": orderID.String()})
	resp := httptest.NewRecorder()
	TransitionOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestConfirmOrderRejectsBadID(t *testing.T) {
	svc := &stubOrdersService{}

	req := authedRequest(t, http.MethodPost, "/api/v1/orders/not-a-uuid/confirm", "",
		buyerActor(), map[string]string{"orderId": "not-a-uuid"})
	resp := httptest.NewRecorder()
	ConfirmOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestReviewOrderRejectsOutOfRangeRating(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{}

	body := `{"rating": 9}`
	req := authedRequest(t, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/review", body,
		buyerActor(), map[string]string{"orderId": orderID.String()})
	resp := httptest.NewRecorder()
	ReviewOrder(svc, nil)(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}
