package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/db/models"
	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// Repository manages persistence for wallets and their journal.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureWallet(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error)
	FindByUserRole(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	// AdjustBalances applies the deltas only when both balances stay
	// non-negative. Returns false when the guard rejects the update.
	AdjustBalances(ctx context.Context, walletID uuid.UUID, availableDelta, reservedDelta int64) (bool, error)
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) EnsureWallet(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error) {
	existing, err := r.FindByUserRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created := &models.Wallet{UserID: userID, Role: role}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// Lost a creation race; the other writer's row wins.
		raced, findErr := r.FindByUserRole(ctx, userID, role)
		if findErr == nil && raced != nil {
			return raced, nil
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) FindByUserRole(ctx context.Context, userID uuid.UUID, role enums.WalletRole) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) AdjustBalances(ctx context.Context, walletID uuid.UUID, availableDelta, reservedDelta int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallets
		SET available_cents = available_cents + ?,
			reserved_cents = reserved_cents + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
			AND available_cents + ? >= 0
			AND reserved_cents + ? >= 0
	`, availableDelta, reservedDelta, walletID, availableDelta, reservedDelta)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
