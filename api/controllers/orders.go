package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/api/responses"
	"github.com/linkhaus-dev/linkhaus-backend/api/validators"
	internalorders "github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	pkgerrors "github.com/linkhaus-dev/linkhaus-backend/pkg/errors"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/logger"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/pagination"
)

// PlaceOrder handles buyer checkout of a single backlink placement.
func PlaceOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderType, err := enums.ParseOrderType(payload.OrderType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type"))
			return
		}
		contentSource, err := enums.ParseContentSource(payload.ContentSource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content source"))
			return
		}

		order, err := svc.PlaceOrder(r.Context(), internalorders.PlaceOrderInput{
			Actor:                  actor,
			PublisherID:            payload.PublisherID,
			WebsiteID:              payload.WebsiteID,
			OrderType:              orderType,
			ContentSource:          contentSource,
			AnchorText:             payload.AnchorText,
			TargetURL:              payload.TargetURL,
			Brief:                  payload.Brief,
			BasePriceCents:         payload.BasePriceCents,
			ContributorID:          payload.ContributorID,
			ContributorAmountCents: payload.ContributorAmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the authenticated party's orders, newest first.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns the full order after checking ownership.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// TransitionOrder moves an order to the requested lifecycle status.
func TransitionOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		input := internalorders.TransitionInput{
			OrderID:      orderID,
			Actor:        actor,
			Target:       target,
			CancelReason: payload.CancelReason,
		}
		if payload.ArticleURL != nil {
			input.Publish = &internalorders.PublishPayload{ArticleURL: *payload.ArticleURL}
		}
		if payload.RevisionReason != nil {
			input.Revision = &internalorders.RevisionPayload{Reason: *payload.RevisionReason}
		}
		if payload.Content != nil {
			input.Content = &internalorders.ContentPayload{
				Title: payload.Content.Title,
				Body:  payload.Content.Body,
			}
		}

		order, err := svc.Transition(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ConfirmOrder completes a published order and settles the escrowed funds.
func ConfirmOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ReviewOrder records the buyer's one-time rating on a completed order.
func ReviewOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Review(r.Context(), internalorders.ReviewInput{
			OrderID:    orderID,
			Actor:      actor,
			Rating:     payload.Rating,
			ReviewText: payload.ReviewText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func buildOrderFilters(r *http.Request) (internalorders.OrderFilters, error) {
	var filters internalorders.OrderFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		orderType, err := enums.ParseOrderType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		filters.OrderType = &orderType
	}

	from, err := validators.ParseQueryTime(r, "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = from

	to, err := validators.ParseQueryTime(r, "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = to

	return filters, nil
}

type placeOrderRequest struct {
	PublisherID            uuid.UUID  `json:"publisher_id" validate:"required"`
	WebsiteID              uuid.UUID  `json:"website_id" validate:"required"`
	OrderType              string     `json:"order_type" validate:"required"`
	ContentSource          string     `json:"content_source" validate:"required"`
	AnchorText             string     `json:"anchor_text" validate:"required,max=255"`
	TargetURL              string     `json:"target_url" validate:"required,url"`
	Brief                  *string    `json:"brief,omitempty"`
	BasePriceCents         int64      `json:"base_price_cents" validate:"required,min=1"`
	ContributorID          *uuid.UUID `json:"contributor_id,omitempty"`
	ContributorAmountCents int64      `json:"contributor_amount_cents,omitempty" validate:"omitempty,min=0"`
}

type transitionRequest struct {
	Status         string                    `json:"status" validate:"required"`
	ArticleURL     *string                   `json:"article_url,omitempty"`
	RevisionReason *string                   `json:"revision_reason,omitempty"`
	Content        *transitionContentPayload `json:"content,omitempty"`
	CancelReason   *string                   `json:"cancel_reason,omitempty"`
}

type transitionContentPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type reviewRequest struct {
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	ReviewText *string `json:"review_text,omitempty"`
}
