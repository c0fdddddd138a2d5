package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
	pkgerrors "github.com/linkhaus-dev/linkhaus-backend/pkg/errors"
)

// Service moves money between buyer, publisher, and contributor wallets.
// Every mutating call runs inside the caller's transaction so order state and
// balances commit or roll back together.
type Service interface {
	Reserve(ctx context.Context, tx *gorm.DB, input ReserveInput) error
	Release(ctx context.Context, tx *gorm.DB, input ReleaseInput) error
	Settle(ctx context.Context, tx *gorm.DB, input SettleInput) error
	RefundSplit(ctx context.Context, tx *gorm.DB, input RefundSplitInput) error
	Credit(ctx context.Context, tx *gorm.DB, input CreditInput) error
	Debit(ctx context.Context, tx *gorm.DB, input DebitInput) error
	Balance(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error)
	Transactions(ctx context.Context, userID uuid.UUID, role enums.WalletRole, limit int) ([]models.WalletTransaction, error)
}

// ReserveInput moves the order total out of the buyer's spendable balance.
type ReserveInput struct {
	BuyerID    uuid.UUID
	OrderID    uuid.UUID
	TotalCents int64
}

// ReleaseInput returns the full reservation to the buyer.
type ReleaseInput struct {
	BuyerID    uuid.UUID
	OrderID    uuid.UUID
	TotalCents int64
	Reason     string
}

// SettleInput pays out an escrowed order. PublisherEarningsCents is the base
// price; when a contributor wrote the article their cut comes out of it.
type SettleInput struct {
	BuyerID                uuid.UUID
	PublisherID            uuid.UUID
	OrderID                uuid.UUID
	TotalCents             int64
	PublisherEarningsCents int64
	ContributorID          *uuid.UUID
	ContributorAmountCents int64
}

// RefundSplitInput divides an escrowed total between the buyer, the publisher,
// and the platform's retained fee. The three parts must sum to the total.
type RefundSplitInput struct {
	BuyerID              uuid.UUID
	PublisherID          uuid.UUID
	OrderID              uuid.UUID
	TotalCents           int64
	BuyerRefundCents     int64
	PublisherPayoutCents int64
	PlatformFeeKeptCents int64
}

// CreditInput adds spendable funds to a wallet.
type CreditInput struct {
	UserID      uuid.UUID
	Role        enums.WalletRole
	AmountCents int64
	Description string
}

// DebitInput removes spendable funds from a wallet.
type DebitInput struct {
	UserID      uuid.UUID
	Role        enums.WalletRole
	AmountCents int64
	Description string
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Reserve(ctx context.Context, tx *gorm.DB, input ReserveInput) error {
	if err := requireTx(tx); err != nil {
		return err
	}
	if input.TotalCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reserve amount must be positive")
	}
	repo := s.repo.WithTx(tx)

	wallet, err := repo.EnsureWallet(ctx, input.BuyerID, enums.WalletRoleBuyer)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer wallet")
	}

	ok, err := repo.AdjustBalances(ctx, wallet.ID, -input.TotalCents, input.TotalCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve funds")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "buyer balance below order total").
			WithDetails(map[string]any{"required_cents": input.TotalCents})
	}

	return s.journal(ctx, repo, wallet.ID, &input.OrderID, enums.TransactionTypePurchase,
		-input.TotalCents, -input.TotalCents, "funds reserved for order")
}

func (s *service) Release(ctx context.Context, tx *gorm.DB, input ReleaseInput) error {
	if err := requireTx(tx); err != nil {
		return err
	}
	if input.TotalCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release amount must be positive")
	}
	repo := s.repo.WithTx(tx)

	wallet, err := repo.FindByUserRole(ctx, input.BuyerID, enums.WalletRoleBuyer)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer wallet")
	}
	if wallet == nil {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "buyer wallet missing for reserved order")
	}

	ok, err := repo.AdjustBalances(ctx, wallet.ID, input.TotalCents, -input.TotalCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release funds")
	}
	if !ok {
		// Reserved balance below what this order reserved means the escrow
		// accounting has been corrupted somewhere.
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "reserved balance below order total")
	}

	desc := "reservation released"
	if input.Reason != "" {
		desc = fmt.Sprintf("reservation released: %s", input.Reason)
	}
	return s.journal(ctx, repo, wallet.ID, &input.OrderID, enums.TransactionTypeRefund,
		input.TotalCents, input.TotalCents, desc)
}

func (s *service) Settle(ctx context.Context, tx *gorm.DB, input SettleInput) error {
	if err := requireTx(tx); err != nil {
		return err
	}
	if input.TotalCents <= 0 || input.PublisherEarningsCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "settle amounts must be positive")
	}
	if input.PublisherEarningsCents > input.TotalCents {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "publisher earnings exceed order total")
	}
	if input.ContributorAmountCents < 0 || input.ContributorAmountCents > input.PublisherEarningsCents {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "contributor cut exceeds publisher earnings")
	}
	if input.ContributorAmountCents > 0 && input.ContributorID == nil {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "contributor amount without contributor")
	}
	repo := s.repo.WithTx(tx)

	buyerWallet, err := repo.FindByUserRole(ctx, input.BuyerID, enums.WalletRoleBuyer)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer wallet")
	}
	if buyerWallet == nil {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "buyer wallet missing for reserved order")
	}

	ok, err := repo.AdjustBalances(ctx, buyerWallet.ID, 0, -input.TotalCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume reservation")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "reserved balance below order total")
	}
	if err := s.journal(ctx, repo, buyerWallet.ID, &input.OrderID, enums.TransactionTypeRelease,
		-input.TotalCents, 0, "escrow settled to publisher"); err != nil {
		return err
	}

	publisherNet := input.PublisherEarningsCents - input.ContributorAmountCents
	if err := s.credit(ctx, repo, input.PublisherID, enums.WalletRolePublisher, &input.OrderID,
		enums.TransactionTypeEarning, publisherNet, "order earnings"); err != nil {
		return err
	}

	if input.ContributorID != nil && input.ContributorAmountCents > 0 {
		if err := s.credit(ctx, repo, *input.ContributorID, enums.WalletRoleContributor, &input.OrderID,
			enums.TransactionTypeContributor, input.ContributorAmountCents, "contributor payout"); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) RefundSplit(ctx context.Context, tx *gorm.DB, input RefundSplitInput) error {
	if err := requireTx(tx); err != nil {
		return err
	}
	if input.TotalCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "split total must be positive")
	}
	if input.BuyerRefundCents < 0 || input.PublisherPayoutCents < 0 || input.PlatformFeeKeptCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "split parts must be non-negative")
	}
	if input.BuyerRefundCents+input.PublisherPayoutCents+input.PlatformFeeKeptCents != input.TotalCents {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "split parts do not sum to order total").
			WithDetails(map[string]any{
				"total_cents":  input.TotalCents,
				"refund_cents": input.BuyerRefundCents,
				"payout_cents": input.PublisherPayoutCents,
				"fee_cents":    input.PlatformFeeKeptCents,
			})
	}
	repo := s.repo.WithTx(tx)

	buyerWallet, err := repo.FindByUserRole(ctx, input.BuyerID, enums.WalletRoleBuyer)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer wallet")
	}
	if buyerWallet == nil {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "buyer wallet missing for reserved order")
	}

	ok, err := repo.AdjustBalances(ctx, buyerWallet.ID, input.BuyerRefundCents, -input.TotalCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "split reservation")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "reserved balance below order total")
	}
	if err := s.journal(ctx, repo, buyerWallet.ID, &input.OrderID, enums.TransactionTypeRefund,
		input.BuyerRefundCents-input.TotalCents, input.BuyerRefundCents, "dispute split refund"); err != nil {
		return err
	}

	if input.PublisherPayoutCents > 0 {
		if err := s.credit(ctx, repo, input.PublisherID, enums.WalletRolePublisher, &input.OrderID,
			enums.TransactionTypeEarning, input.PublisherPayoutCents, "dispute split payout"); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input CreditInput) error {
	if err := requireTx(tx); err != nil {
		return err
	}
	if input.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid wallet role")
	}
	repo := s.repo.WithTx(tx)
	return s.credit(ctx, repo, input.UserID, input.Role, nil, enums.TransactionTypeDeposit,
		input.AmountCents, input.Description)
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input DebitInput) error {
	if err := requireTx(tx); err != nil {
		return err
	}
	if input.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid wallet role")
	}
	repo := s.repo.WithTx(tx)

	wallet, err := repo.EnsureWallet(ctx, input.UserID, input.Role)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	ok, err := repo.AdjustBalances(ctx, wallet.ID, -input.AmountCents, 0)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "balance below withdrawal amount")
	}
	return s.journal(ctx, repo, wallet.ID, nil, enums.TransactionTypeWithdrawal,
		-input.AmountCents, -input.AmountCents, input.Description)
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error) {
	wallet, err := s.repo.FindByUserRole(ctx, userID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	if wallet == nil {
		return &models.Wallet{UserID: userID, Role: role}, nil
	}
	return wallet, nil
}

func (s *service) Transactions(ctx context.Context, userID uuid.UUID, role enums.WalletRole, limit int) ([]models.WalletTransaction, error) {
	wallet, err := s.repo.FindByUserRole(ctx, userID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	if wallet == nil {
		return nil, nil
	}
	rows, err := s.repo.ListTransactions(ctx, wallet.ID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return rows, nil
}

func (s *service) credit(ctx context.Context, repo Repository, userID uuid.UUID, role enums.WalletRole, orderID *uuid.UUID, txnType enums.TransactionType, amount int64, description string) error {
	wallet, err := repo.EnsureWallet(ctx, userID, role)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	ok, err := repo.AdjustBalances(ctx, wallet.ID, amount, 0)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "credit rejected by balance guard")
	}
	return s.journal(ctx, repo, wallet.ID, orderID, txnType, amount, amount, description)
}

// journal re-reads the wallet after the guarded update so balance_before and
// balance_after snapshot the spendable balance around this movement. amount is
// the net change to the user's funds; availableDelta is how much of it landed
// in the spendable balance (escrow-only moves leave available untouched).
func (s *service) journal(ctx context.Context, repo Repository, walletID uuid.UUID, orderID *uuid.UUID, txnType enums.TransactionType, amount, availableDelta int64, description string) error {
	wallet, err := repo.FindByID(ctx, walletID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wallet for journal")
	}
	if wallet == nil {
		return pkgerrors.New(pkgerrors.CodeSettlementMismatch, "wallet vanished mid-transaction")
	}

	txn := &models.WalletTransaction{
		WalletID:           walletID,
		OrderID:            orderID,
		Type:               txnType,
		AmountCents:        amount,
		BalanceBeforeCents: wallet.AvailableCents - availableDelta,
		BalanceAfterCents:  wallet.AvailableCents,
		Description:        description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write wallet journal")
	}
	return nil
}

func requireTx(tx *gorm.DB) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	return nil
}
