package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// Wallet holds a user's balance split between spendable and escrowed funds.
// AvailableCents plus ReservedCents is the total the user owns.
type Wallet struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_wallets_user_role"`
	Role           enums.WalletRole `gorm:"column:role;type:wallet_role;not null;uniqueIndex:idx_wallets_user_role"`
	AvailableCents int64            `gorm:"column:available_cents;not null;default:0"`
	ReservedCents  int64            `gorm:"column:reserved_cents;not null;default:0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
