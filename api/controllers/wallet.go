package controllers

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/api/responses"
	"github.com/linkhaus-dev/linkhaus-backend/api/validators"
	internalorders "github.com/linkhaus-dev/linkhaus-backend/internal/orders"
	"github.com/linkhaus-dev/linkhaus-backend/internal/wallet"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	pkgerrors "github.com/linkhaus-dev/linkhaus-backend/pkg/errors"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/logger"
)

const walletTransactionsLimit = 50

// TxRunner is the transactional surface the wallet endpoints need.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// WalletSummary returns the caller's wallet plus recent journal entries.
func WalletSummary(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := walletRoleFor(actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor.UserID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transactions, err := svc.Transactions(r.Context(), actor.UserID, role, walletTransactionsLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, walletSummaryResponse{
			Wallet:       balance,
			Transactions: transactions,
		})
	}
}

// Deposit credits spendable funds into the caller's wallet.
func Deposit(svc wallet.Service, db TxRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || db == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := walletRoleFor(actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload walletAmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = db.WithTx(r.Context(), func(tx *gorm.DB) error {
			return svc.Credit(r.Context(), tx, wallet.CreditInput{
				UserID:      actor.UserID,
				Role:        role,
				AmountCents: payload.AmountCents,
				Description: "wallet deposit",
			})
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor.UserID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// Withdraw removes spendable funds from the caller's wallet.
func Withdraw(svc wallet.Service, db TxRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || db == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := walletRoleFor(actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload walletAmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = db.WithTx(r.Context(), func(tx *gorm.DB) error {
			return svc.Debit(r.Context(), tx, wallet.DebitInput{
				UserID:      actor.UserID,
				Role:        role,
				AmountCents: payload.AmountCents,
				Description: "wallet withdrawal",
			})
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor.UserID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

func walletRoleFor(actor internalorders.Actor) (enums.WalletRole, error) {
	switch actor.Role {
	case enums.ActorRoleBuyer:
		return enums.WalletRoleBuyer, nil
	case enums.ActorRolePublisher:
		return enums.WalletRolePublisher, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "no wallet for role")
	}
}

type walletSummaryResponse struct {
	Wallet       *models.Wallet             `json:"wallet"`
	Transactions []models.WalletTransaction `json:"transactions"`
}

type walletAmountRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,min=1"`
}
