package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/linkhaus-dev/linkhaus-backend/pkg/enums"
)

// WalletTransaction is an immutable journal row recorded for every balance
// movement. BalanceBefore/BalanceAfter snapshot available_cents around the
// movement so the journal can be audited without replaying it.
type WalletTransaction struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID           uuid.UUID             `gorm:"column:wallet_id;type:uuid;not null"`
	OrderID            *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	Type               enums.TransactionType `gorm:"column:type;type:transaction_type;not null"`
	AmountCents        int64                 `gorm:"column:amount_cents;not null"`
	BalanceBeforeCents int64                 `gorm:"column:balance_before_cents;not null"`
	BalanceAfterCents  int64                 `gorm:"column:balance_after_cents;not null"`
	Description        string                `gorm:"column:description;not null"`
	Metadata           json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
}
